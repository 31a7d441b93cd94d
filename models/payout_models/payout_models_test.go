package payout_models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapProviderStatus(t *testing.T) {
	cases := map[string]Status{
		"success":   StatusCompleted,
		"COMPLETED": StatusCompleted,
		"failed":    StatusFailed,
		"reversed":  StatusFailed,
		"pending":   StatusProcessing,
		"queued":    StatusProcessing,
		"":          StatusProcessing,
	}
	for in, want := range cases {
		assert.Equal(t, want, MapProviderStatus(in), "provider status %q", in)
	}
}
