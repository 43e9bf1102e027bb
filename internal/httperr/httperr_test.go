package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type detailedErr struct{ item uint }

func (e detailedErr) Error() string           { return fmt.Sprintf("item %d short", e.item) }
func (e detailedErr) Unwrap() error           { return ErrBusiness("insufficient_inventory") }
func (e detailedErr) Details() map[string]any { return map[string]any{"item_id": e.item} }

func TestIsBusinessThroughWrapping(t *testing.T) {
	err := fmt.Errorf("complete: %w", detailedErr{item: 4})

	assert.True(t, IsBusiness(err, "insufficient_inventory"))
	assert.False(t, IsBusiness(err, "not_found"))
	assert.Equal(t, "insufficient_inventory", CodeOf(err))
	assert.Equal(t, "", CodeOf(errors.New("boom")))
}

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"detailed conflict", detailedErr{item: 9}, http.StatusConflict, "insufficient_inventory"},
		{"not found", ErrBusiness("not_found"), http.StatusNotFound, "not_found"},
		{"store", ErrBusiness("store_unavailable"), http.StatusServiceUnavailable, "store_unavailable"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			FromError(c, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body HTTPError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestFromErrorIncludesDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	FromError(c, detailedErr{item: 12})

	var body HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(12), body.Details["item_id"])
	assert.Equal(t, "item 12 short", body.Message)
}
