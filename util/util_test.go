package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDateLayouts(t *testing.T) {
	expected := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	for _, value := range []string{
		"2024-01-15",
		"2024-01-15 13:45:10",
		"2024-01-15T13:45:10Z",
		"2024/01/15",
		"01/15/2024",
	} {
		parsed, err := ParseDate(value)
		assert.Nil(t, err, value)
		assert.Equal(t, expected, parsed, value)
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, value := range []string{"", "yesterday", "2024-13-40"} {
		_, err := ParseDate(value)
		assert.NotNil(t, err, value)
	}
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2024, 3, 9, 18, 4, 5, 0, time.UTC)
	assert.Equal(t, "2024-03-09", DateOnly(ts))
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), BeginningOfDay(ts))
}

func TestContainsStringInArray(t *testing.T) {
	array := []string{"google_ads", "facebook_ads"}
	assert.True(t, ContainsStringInArray(array, "google_ads"))
	assert.False(t, ContainsStringInArray(array, "email"))
}
