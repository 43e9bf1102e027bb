package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocationFallsBack(t *testing.T) {
	assert.Equal(t, "UTC", Location("").String())
	assert.Equal(t, "UTC", Location("Mars/Olympus").String())
	assert.Equal(t, "America/Sao_Paulo", Location("America/Sao_Paulo").String())
}

func TestCalendarDay(t *testing.T) {
	// 01:30 UTC on May 2nd is still May 1st in São Paulo (UTC-3)
	instant := time.Date(2024, 5, 2, 1, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), CalendarDay(instant, "America/Sao_Paulo"))
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), CalendarDay(instant, "UTC"))
}
