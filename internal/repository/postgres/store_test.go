package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/granaevo?sslmode=disable", "pgx5://u:p@localhost:5432/granaevo?sslmode=disable"},
		{"postgresql://u@db/granaevo", "pgx5://u@db/granaevo"},
		{"pgx5://already", "pgx5://already"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, migrateURL(tt.in))
	}
}

// Runs against a real database when TEST_DATABASE_URL is set
func TestStore_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	require.NoError(t, RunMigrations(url))
	store, err := NewStore(ctx, url)
	require.NoError(t, err)
	defer store.Close()

	accountID := uuid.New()

	doc, err := store.LoadState(ctx, accountID)
	require.NoError(t, err)
	assert.Nil(t, doc)

	require.NoError(t, store.SaveState(ctx, accountID, []byte(`{"nextGoalId": 1}`)))
	require.NoError(t, store.SaveState(ctx, accountID, []byte(`{"nextGoalId": 2}`)))
	doc, err = store.LoadState(ctx, accountID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nextGoalId": 2}`, string(doc))

	doc, err = store.LoadProfileDocument(ctx, accountID, 1)
	require.NoError(t, err)
	assert.Nil(t, doc)

	require.NoError(t, store.SaveProfileDocument(ctx, accountID, 1, []byte(`{"transactions": []}`)))
	doc, err = store.LoadProfileDocument(ctx, accountID, 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"transactions": []}`, string(doc))

	doc, err = store.LoadProfileDocument(ctx, accountID, 2)
	require.NoError(t, err)
	assert.Nil(t, doc)
}
