//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xenking/bookstore/internal/storage"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "bookstore",
				"POSTGRES_PASSWORD": "bookstore",
				"POSTGRES_DB":       "bookstore",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	return fmt.Sprintf("postgres://bookstore:bookstore@%s/bookstore?sslmode=disable", endpoint)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	s, err := Connect(ctx, startPostgres(t))
	require.NoError(t, err)
	defer s.Close()

	// Schema is idempotent.
	require.NoError(t, Migrate(ctx, s.pool))

	_, err = s.Load(ctx, "bookstore-cart:missing")
	require.ErrorIs(t, err, storage.ErrSnapshotNotFound)

	require.NoError(t, s.Save(ctx, "bookstore-cart:a", []byte(`{"items":[],"total":"10.5"}`)))
	require.NoError(t, s.Save(ctx, "bookstore-cart:a", []byte(`{"items":[],"total":"12.25"}`)))
	require.NoError(t, s.Save(ctx, "bookstore-cart:b", []byte(`{"items":[],"total":"0"}`)))

	got, err := s.Load(ctx, "bookstore-cart:a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"total":"12.25"}`, string(got))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Carts)
	assert.Equal(t, "12.25", st.Value.String())

	require.NoError(t, s.Ping(ctx))
}
