package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/storefront/analytics/internal/infrastructure/telemetry"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{ServerAddress: "http://localhost:4040"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     telemetry.ProfilerConfig
		wantErr string
	}{
		{
			name:    "missing server",
			cfg:     telemetry.ProfilerConfig{Enabled: true, ApplicationName: "analytics"},
			wantErr: "server address is required",
		},
		{
			name:    "missing application",
			cfg:     telemetry.ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"},
			wantErr: "application name is required",
		},
		{
			name: "unknown profile type",
			cfg: telemetry.ProfilerConfig{
				Enabled:         true,
				ServerAddress:   "http://localhost:4040",
				ApplicationName: "analytics",
				ProfileTypes:    []string{"cpu", "heapz"},
			},
			wantErr: `unknown profile type "heapz"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := telemetry.NewProfiler(tt.cfg, zaptest.NewLogger(t))
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWithProfilingLabels(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	called := false
	telemetry.WithProfilingLabels(ctx, map[string]string{telemetry.ProfilingLabelRoute: "/api/analytics/sales"}, func(inner context.Context) {
		called = true
		assert.Equal(t, "v", inner.Value(key{}))
	})
	assert.True(t, called)

	called = false
	telemetry.WithProfilingLabels(ctx, nil, func(context.Context) { called = true })
	assert.True(t, called)
}
