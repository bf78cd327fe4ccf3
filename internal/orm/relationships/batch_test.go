package relationships

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongoose-kitchen/mongoose/internal/orm/dialect"
)

func TestLoadMany(t *testing.T) {
	loader, mock := setupTestDB(t, dialect.MySQL)

	columns := append(append([]string{}, foodColumns...), "__owner_id")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT t.*, j.recipe_id AS __owner_id FROM food t INNER JOIN ingredients j ON t.food_id = j.food_id WHERE j.recipe_id IN (?, ?, ?)").
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(int64(10), true, "rice", nil, int64(1)).
			AddRow(int64(11), true, "beans", nil, int64(1)).
			AddRow(int64(10), true, "rice", nil, []byte("2")))
	mock.ExpectCommit()

	grouped, err := loader.LoadMany(context.Background(), ingredients(), []interface{}{int64(1), int64(2), int64(3)})
	require.NoError(t, err)

	assert.Len(t, grouped["1"], 2)
	assert.Len(t, grouped["2"], 1)
	assert.NotNil(t, grouped["3"])
	assert.Empty(t, grouped["3"])

	_, hasAlias := grouped["1"][0]["__owner_id"]
	assert.False(t, hasAlias, "join artifact must be removed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadMany_NoOwners(t *testing.T) {
	loader, mock := setupTestDB(t, dialect.MySQL)

	grouped, err := loader.LoadMany(context.Background(), ingredients(), nil)
	require.NoError(t, err)
	assert.Empty(t, grouped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIDToString(t *testing.T) {
	tests := []struct {
		in       interface{}
		expected string
	}{
		{"abc", "abc"},
		{7, "7"},
		{int64(8), "8"},
		{int32(9), "9"},
		{uint(10), "10"},
		{uint64(11), "11"},
		{[]byte("12"), "12"},
		{1.5, "1.5"},
	}

	for _, tt := range tests {
		got, err := idToString(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}

	_, err := idToString(nil)
	assert.Error(t, err)
	assert.Equal(t, "", IDString(nil))
	assert.Equal(t, "5", IDString(int64(5)))
}
