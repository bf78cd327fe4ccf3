package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mongoose-kitchen/mongoose/internal/entity"
	"github.com/mongoose-kitchen/mongoose/internal/orm/dialect"
	"github.com/mongoose-kitchen/mongoose/internal/orm/transaction"
)

func newCheckSession(t *testing.T) (*transaction.Session, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return transaction.NewManager(db).Session(), mock
}

func TestCheckSchema(t *testing.T) {
	s, mock := newCheckSession(t)

	for _, table := range entity.Catalog().List() {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT * FROM " + table.Name + " LIMIT 1").
			WillReturnRows(sqlmock.NewRows(table.ColumnNames()))
		mock.ExpectCommit()
	}

	var buf bytes.Buffer
	failed := checkSchema(context.Background(), s, dialect.MySQL, zap.NewNop(), &buf, true)

	assert.Zero(t, failed)
	output := buf.String()
	assert.Contains(t, output, "Schema check (mysql)")
	for _, name := range []string{"food", "ingredients", "menu", "nutritional_fact", "recipes", "serves"} {
		assert.Contains(t, output, name)
	}
	assert.NotContains(t, output, "FAIL")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckSchemaReportsFailures(t *testing.T) {
	s, mock := newCheckSession(t)

	for _, table := range entity.Catalog().List() {
		mock.ExpectBegin()
		switch table.Name {
		case "menu":
			mock.ExpectQuery("SELECT * FROM menu LIMIT 1").
				WillReturnRows(sqlmock.NewRows([]string{"id", "date"}))
			mock.ExpectRollback()
		case "serves":
			mock.ExpectQuery("SELECT * FROM serves LIMIT 1").
				WillReturnError(errors.New("Table 'mongoose.serves' doesn't exist"))
			mock.ExpectRollback()
		default:
			mock.ExpectQuery("SELECT * FROM " + table.Name + " LIMIT 1").
				WillReturnRows(sqlmock.NewRows(table.ColumnNames()))
			mock.ExpectCommit()
		}
	}

	var buf bytes.Buffer
	failed := checkSchema(context.Background(), s, dialect.MySQL, zap.NewNop(), &buf, true)

	assert.Equal(t, 2, failed)
	output := buf.String()
	assert.Equal(t, 2, strings.Count(output, "FAIL"))
	assert.Contains(t, output, "has no column time_of_day")
	assert.Contains(t, output, "doesn't exist")
	assert.NoError(t, mock.ExpectationsWereMet())
}
