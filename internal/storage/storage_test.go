package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/catalog/internal/config"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

func TestOpen_Memory(t *testing.T) {
	st, err := Open(context.Background(), config.Storage{Driver: config.DriverMemory}, sl.Discard())
	require.NoError(t, err)
	defer func() { require.NoError(t, st.Close(context.Background())) }()

	assert.Equal(t, config.DriverMemory, st.Driver)
	u, err := st.Users.Create(context.Background(), models.User{Username: "u", Email: "u@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
}

func TestOpen_UnknownDriver(t *testing.T) {
	st, err := Open(context.Background(), config.Storage{Driver: "sqlite"}, sl.Discard())
	require.Error(t, err)
	assert.Nil(t, st)
}
