package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livraria/internal/config"
)

func TestNewContainer_InMemory(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.RateLimit.RPS = 5

	c, err := NewContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(c.Cleanup)

	assert.Nil(t, c.DB)
	assert.Nil(t, c.Redis)
	assert.Nil(t, c.Cache)
	assert.NotNil(t, c.Limits)
	assert.NotNil(t, c.BookHandler)
	assert.NotNil(t, c.ActivityHandler)
	assert.Empty(t, c.HealthCheck(context.Background()))
}
