// Package service provides business logic implementations.
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestClampLimit covers the fallback and passthrough cases for history
// page sizes.
func TestClampLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero falls back to default", limit: 0, want: 10},
		{name: "negative falls back to default", limit: -5, want: 10},
		{name: "too large falls back to default", limit: 21, want: 10},
		{name: "minimum kept", limit: 1, want: 1},
		{name: "maximum kept", limit: 20, want: 20},
		{name: "in range kept", limit: 7, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampLimit(tt.limit))
		})
	}
}

// TestClampLimitProperty checks that every result lands in the valid range
// and that valid inputs pass through unchanged.
func TestClampLimitProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(-100, 100).Draw(t, "limit")
		got := clampLimit(limit)

		if got < 1 || got > 20 {
			t.Fatalf("clampLimit(%d) = %d, outside [1, 20]", limit, got)
		}
		if limit >= 1 && limit <= 20 && got != limit {
			t.Fatalf("clampLimit(%d) = %d, expected passthrough", limit, got)
		}
	})
}
