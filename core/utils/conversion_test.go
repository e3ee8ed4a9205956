package utils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int
		wantErr bool
	}{
		{"int", 12345, 12345, false},
		{"float", float64(10000), 10000, false},
		{"fractional float", 1.5, 0, true},
		{"json number", json.Number("446"), 446, false},
		{"string", "789", 789, false},
		{"garbage", "foobar", 0, true},
		{"null", nil, 0, true},
		{"bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToInt(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool("True"))
	assert.True(t, ToBool(json.Number("1")))
	assert.False(t, ToBool(nil))
	assert.False(t, ToBool("no"))
}

func TestToTime(t *testing.T) {
	got, err := ToTime("2019-08-24T14:15:22Z")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2019, 8, 24, 14, 15, 22, 0, time.UTC), got)

	got, err = ToTime("2019-01-01")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ToTime("abc")
	assert.Error(t, err)

	_, err = ToTime(12)
	assert.Error(t, err)
}

func TestMonthArithmetic(t *testing.T) {
	ts := time.Date(2024, 3, 17, 10, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(ts))
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), EndOfMonth(ts))
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), EndOfPreviousMonth(ts))
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), Day(ts))

	m, err := ParseMonth("2024-02")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), m)
	_, err = ParseMonth("February")
	assert.Error(t, err)
}
