package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodKeyUsesLocation(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 2024-01-31 20:00 UTC is already February in Jakarta (UTC+7).
	instant := time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01", PeriodKey(instant, time.UTC))
	assert.Equal(t, "2024-02", PeriodKey(instant, jakarta))
}

func TestLocalDateTruncatesInLocation(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	instant := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
	d := LocalDate(instant, jakarta)
	assert.Equal(t, "2024-03-16", d.Format(DateLayout))
	assert.Equal(t, 0, d.Hour())
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "January 2024", PeriodLabel("2024-01"))
	assert.Equal(t, "December 2023", PeriodLabel("2023-12"))
	assert.Equal(t, "garbage", PeriodLabel("garbage"))
}

func TestParsePeriodKeyRejectsOtherFormats(t *testing.T) {
	_, err := ParsePeriodKey("2024-1")
	assert.Error(t, err)
	_, err = ParsePeriodKey("2024/01")
	assert.Error(t, err)
	_, err = ParsePeriodKey("2024-01")
	assert.NoError(t, err)
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	c := FixedClock(at)
	assert.True(t, c().Equal(at))
	assert.True(t, c().Equal(at))
}
