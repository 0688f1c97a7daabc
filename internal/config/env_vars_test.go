package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/appsuite/login-service/internal/config"
)

func TestEnvVars(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := config.New()
		require.Equal(t, ":80", c.GetPort())
		require.Equal(t, "DEV", c.GetEnv())
		require.False(t, c.IsProduction())
		require.False(t, c.UseProductionServices())
		require.Equal(t, "2", c.GetSessionVersion())
	})

	t.Run("port gains a leading colon", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		require.Equal(t, ":8080", config.New().GetPort())

		t.Setenv("PORT", ":9090")
		require.Equal(t, ":9090", config.New().GetPort())
	})

	t.Run("production enables production services", func(t *testing.T) {
		t.Setenv("ENV", "production")
		c := config.New()
		require.True(t, c.IsProduction())
		require.True(t, c.UseProductionServices())
	})

	t.Run("production can still opt into local services", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("USE_LOCAL_SERVICES", "true")
		c := config.New()
		require.True(t, c.IsProduction())
		require.False(t, c.UseProductionServices())
	})

	t.Run("client credentials come from the environment", func(t *testing.T) {
		t.Setenv("PUBLISH_CLIENT_ID", "pub-id")
		t.Setenv("ANALYZE_CLIENT_SECRET", "an-secret")
		c := config.New()
		require.Equal(t, "pub-id", c.GetPublishClientID())
		require.Equal(t, "an-secret", c.GetAnalyzeClientSecret())
	})
}
