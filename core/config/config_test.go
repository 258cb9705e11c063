package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/frontauth/core/config"
)

// Each test uses its own struct type: the cache is keyed by type, so
// shared types would leak state between tests.

func TestLoad_ParsesEnvironment(t *testing.T) {
	type testCfg struct {
		Name    string        `env:"CONFIG_TEST_NAME"`
		Timeout time.Duration `env:"CONFIG_TEST_TIMEOUT" envDefault:"5s"`
		Tags    []string      `env:"CONFIG_TEST_TAGS" envSeparator:","`
	}
	t.Setenv("CONFIG_TEST_NAME", "frontauth")
	t.Setenv("CONFIG_TEST_TAGS", "a,b,c")

	var cfg testCfg
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "frontauth", cfg.Name)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Tags)
}

func TestLoad_CachesFirstResult(t *testing.T) {
	type cachedCfg struct {
		Value string `env:"CONFIG_TEST_CACHED"`
	}
	t.Setenv("CONFIG_TEST_CACHED", "first")

	var first cachedCfg
	require.NoError(t, config.Load(&first))
	assert.Equal(t, "first", first.Value)

	t.Setenv("CONFIG_TEST_CACHED", "second")

	var again cachedCfg
	require.NoError(t, config.Load(&again))
	assert.Equal(t, "first", again.Value, "second load must come from the cache")
}

func TestLoad_RequiredMissing(t *testing.T) {
	type requiredCfg struct {
		Secret string `env:"CONFIG_TEST_REQUIRED_MISSING,required"`
	}

	var cfg requiredCfg
	err := config.Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config:")
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	type mustCfg struct {
		Secret string `env:"CONFIG_TEST_MUST_MISSING,required"`
	}

	assert.Panics(t, func() {
		var cfg mustCfg
		config.MustLoad(&cfg)
	})
}
