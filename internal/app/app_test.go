package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radruga/pkg/config"
	"radruga/pkg/models"
)

func TestOpen_Memory(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "memory"
	cfg.JWT.Secret = "test"

	a, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Services)
	res, err := a.Services.Users.Register(context.Background(), models.RegisterRequest{ID: "u1", NickName: "nick"})
	require.NoError(t, err)
	assert.True(t, res.IsSuccess())
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "sqlite"

	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}
