package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/cv-job-matcher/internal/config"
)

func TestSetupTracing_Disabled(t *testing.T) {
	shutdown, err := SetupTracing(config.Config{OTLPEndpoint: ""})
	require.NoError(t, err)
	assert.Nil(t, shutdown)
}

func TestSetupTracing_WithEndpoint(t *testing.T) {
	cfg := config.Config{
		AppEnv:          "prod",
		OTLPEndpoint:    "localhost:4317",
		OTELServiceName: "cv-job-matcher-test",
	}

	// The gRPC exporter connects lazily, so construction succeeds without a collector.
	shutdown, err := SetupTracing(cfg)
	if err != nil {
		assert.Nil(t, shutdown)
		return
	}
	require.NotNil(t, shutdown)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
