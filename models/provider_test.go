package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── MetaFor ──────────────────────────────────────────────────────────────────

func TestMetaFor_KnownProvider(t *testing.T) {
	meta := MetaFor(ProviderDeepSeek)

	assert.Equal(t, "DeepSeek", meta.DisplayName)
	assert.Equal(t, "[DS]", meta.Icon)
	assert.Equal(t, 16384, meta.ContextWindow)
}

func TestMetaFor_UnknownProvider_FallsBackToGenericDisplay(t *testing.T) {
	meta := MetaFor(ProviderID("glm"))

	assert.Equal(t, ProviderID("glm"), meta.ID)
	assert.Equal(t, "glm", meta.DisplayName)
	assert.Equal(t, "[?]", meta.Icon)
	assert.Equal(t, 4096, meta.ContextWindow)
}

func TestMetaFor_EmptyID_StillTotal(t *testing.T) {
	meta := MetaFor("")

	assert.Equal(t, "[?]", meta.Icon)
	assert.Positive(t, meta.ContextWindow)
}

func TestKnownProviders_ReturnsCopy(t *testing.T) {
	first := KnownProviders()
	require.Len(t, first, 4)

	first[0].DisplayName = "mutated"
	assert.Equal(t, "DeepSeek", KnownProviders()[0].DisplayName)
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown(ProviderQwen))
	assert.False(t, IsKnown(ProviderID("claude")))
}

// ── UsagePercentage ──────────────────────────────────────────────────────────

func TestUsagePercentage_Basic(t *testing.T) {
	assert.InDelta(t, 80.0, UsagePercentage(8000, 10000), 0.0001)
}

func TestUsagePercentage_OverrunNotClamped(t *testing.T) {
	got := UsagePercentage(12000, 10000)
	assert.InDelta(t, 120.0, got, 0.0001)
}

func TestUsagePercentage_ZeroWindow(t *testing.T) {
	assert.Zero(t, UsagePercentage(5000, 0))
	assert.Zero(t, UsagePercentage(5000, -1))
}
