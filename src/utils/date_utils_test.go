package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionDate(t *testing.T) {
	want := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2025-01-05",
		"01/05/2025",
		"1/5/2025",
		"05-01-2025",
		"Jan 5, 2025",
		"01/05/25",
	} {
		got, err := ParseTransactionDate(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseTransactionDate("not a date")
	assert.Error(t, err)
	_, err = ParseTransactionDate("")
	assert.Error(t, err)
}

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  netflix   com ", "NETFLIX COM"},
		{"NETFLIX COM", "NETFLIX COM"},
		{"\tcoffee\nshop", "COFFEE SHOP"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDescription(tt.in), "input %q", tt.in)
	}
}
