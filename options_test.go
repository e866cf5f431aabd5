package serialqueue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveOptions_Defaults(t *testing.T) {
	cfg := resolveOptions(DefaultFeatures, nil)
	require.Equal(t, "", cfg.name)
	require.Equal(t, DefaultFeatures, cfg.features)
	require.NotNil(t, cfg.logger)
}

func TestResolveOptions_AppliesInOrderAndIgnoresNil(t *testing.T) {
	logger := &recordingLogger{}
	cfg := resolveOptions(DefaultFeatures, []Option{
		WithName("accounts"),
		nil,
		WithFeatures(0),
		WithLogger(logger),
	})

	require.Equal(t, "accounts", cfg.name)
	require.Equal(t, FeatureFlags(0), cfg.features)
	require.Same(t, logger, cfg.logger)
}

func TestFeatureFlags_Has(t *testing.T) {
	f := CooperativeContinuations
	require.True(t, f.Has(CooperativeContinuations))
	require.False(t, FeatureFlags(0).Has(CooperativeContinuations))
}

type recordingLogger struct {
	events []LogEvent
}

func (r *recordingLogger) Log(e LogEvent) {
	r.events = append(r.events, e)
}
