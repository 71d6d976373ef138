package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should apply defaults and fail required-field validation with no env set", func(t *testing.T) {
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("Should load settings from SEDDY_ environment variables over defaults", func(t *testing.T) {
		t.Setenv("SEDDY_DOMAIN", "my-domain")
		t.Setenv("SEDDY_TASK_LIST", "default")
		t.Setenv("SEDDY_REGION", "us-east-1")
		t.Setenv("SEDDY_POLL_TIMEOUT", "90s")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "my-domain", cfg.Domain)
		assert.Equal(t, "default", cfg.TaskList)
		assert.Equal(t, "us-east-1", cfg.Region)
		assert.Equal(t, 90*time.Second, cfg.PollTimeout)
		assert.Equal(t, ":9090", cfg.MetricsAddr) // untouched default
	})

	t.Run("Should reject a poll timeout under the one-second floor", func(t *testing.T) {
		t.Setenv("SEDDY_DOMAIN", "my-domain")
		t.Setenv("SEDDY_TASK_LIST", "default")
		t.Setenv("SEDDY_REGION", "us-east-1")
		t.Setenv("SEDDY_POLL_TIMEOUT", "100ms")

		_, err := Load()
		require.Error(t, err)
	})
}
