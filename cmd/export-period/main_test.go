package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPreviousPeriod(t *testing.T) {
	assert.Equal(t, "2024-02", previousPeriod(time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC), time.UTC))
	assert.Equal(t, "2023-12", previousPeriod(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.UTC))
	// 31 Mar 20:00 UTC is already April in UTC+7
	assert.Equal(t, "2024-03", previousPeriod(time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC), time.FixedZone("WIB", 7*3600)))
}
