package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLimit(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"", DefaultPageLimit},
		{"abc", DefaultPageLimit},
		{"-3", DefaultPageLimit},
		{"0", DefaultPageLimit},
		{"25", 25},
		{"1000", MaxPageLimit},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLimit(tc.raw, DefaultPageLimit, MaxPageLimit))
		})
	}
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool("true"))
	assert.True(t, ParseBool("1"))
	assert.False(t, ParseBool(""))
	assert.False(t, ParseBool("yes"))
}
