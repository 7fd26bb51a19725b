package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/storefront/internal/config"
)

func TestOptions_Overrides(t *testing.T) {
	opts, err := Options(config.RedisConfig{URL: "redis://:urlpw@cache:6380/1", Password: "envpw", DB: 3})
	require.NoError(t, err)

	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "envpw", opts.Password)
	assert.Equal(t, 3, opts.DB)
}

func TestOptions_KeepsURLValues(t *testing.T) {
	opts, err := Options(config.RedisConfig{URL: "redis://:urlpw@cache:6380/1"})
	require.NoError(t, err)

	assert.Equal(t, "urlpw", opts.Password)
	assert.Equal(t, 1, opts.DB)
}

func TestOptions_InvalidURL(t *testing.T) {
	_, err := Options(config.RedisConfig{URL: "http://cache"})
	assert.Error(t, err)
}
