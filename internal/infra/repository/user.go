package repository

import (
	"context"
	"strings"
	"sync"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		return nil, classify("find user", "user", 0, err)
	}
	return &user, nil
}

func (r *UserGormRepository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Branch").First(&user, id).Error; err != nil {
		return nil, classify("get user", "user", id, err)
	}
	return &user, nil
}

// --------------------------------------------------
// Memory
// --------------------------------------------------

type UserMemoryRepository struct {
	mu     sync.RWMutex
	users  map[uint]models.User
	nextID uint
}

func NewUserMemoryRepository() *UserMemoryRepository {
	return &UserMemoryRepository{users: map[uint]models.User{}}
}

func (r *UserMemoryRepository) AddUser(u models.User) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	u.ID = r.nextID
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	r.users[u.ID] = u
	return u
}

func (r *UserMemoryRepository) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, &domain.NotFoundError{Entity: "user"}
}

func (r *UserMemoryRepository) GetUser(_ context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "user", ID: id}
	}
	return &u, nil
}
