package repository

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

// DemoPassword is shared by every seeded user.
const DemoPassword = "dental123"

var demoSlots = [][2]string{
	{"09:00", "09:30"},
	{"09:30", "10:00"},
	{"10:00", "10:30"},
	{"10:30", "11:00"},
	{"14:00", "14:30"},
	{"14:30", "15:00"},
}

// SeedDemo fills the memory stores with one branch, its slots, a doctor,
// a patient, some stock and one user per role.
func SeedDemo(appts *AppointmentMemoryRepository, users *UserMemoryRepository) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	branch := appts.AddBranch(models.Branch{
		Name:     "Centro",
		Phone:    "+55 11 3000-0000",
		Address:  "Av. Paulista, 1000",
		Timezone: "America/Sao_Paulo",
	})

	for _, s := range demoSlots {
		appts.AddTimeSlot(models.TimeSlot{BranchID: branch.ID, StartTime: s[0], EndTime: s[1]})
	}

	appts.AddService(models.Service{
		Name:        "Cleaning",
		DurationMin: 30,
		Price:       decimal.RequireFromString("150.00"),
		Active:      true,
	})
	appts.AddService(models.Service{
		Name:        "Filling",
		DurationMin: 30,
		Price:       decimal.RequireFromString("280.00"),
		Active:      true,
	})

	appts.AddPatient(models.Patient{Name: "Maria Souza", Phone: "+55 11 99999-0000", Email: "maria@example.com"})

	doctor := appts.AddDoctor(models.Doctor{Name: "Dr. Ana Lima", Specialty: "General", BranchID: &branch.ID})

	appts.AddInventoryItem(models.InventoryItem{
		BranchID:  branch.ID,
		Name:      "Gauze",
		Quantity:  200,
		UnitPrice: decimal.RequireFromString("0.50"),
	})
	appts.AddInventoryItem(models.InventoryItem{
		BranchID:  branch.ID,
		Name:      "Anesthetic cartridge",
		Quantity:  50,
		UnitPrice: decimal.RequireFromString("4.20"),
	})

	for _, u := range []models.User{
		{Name: "Admin", Email: "admin@dental.local", Role: models.RoleAdmin},
		{Name: "Reception", Email: "staff@dental.local", Role: models.RoleStaff, BranchID: &branch.ID},
		{Name: doctor.Name, Email: "doctor@dental.local", Role: models.RoleDoctor, BranchID: &branch.ID},
	} {
		u.PasswordHash = string(hash)
		users.AddUser(u)
	}

	return nil
}
