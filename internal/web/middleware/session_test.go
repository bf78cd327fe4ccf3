package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mongoose-kitchen/mongoose/internal/orm/transaction"
)

func TestSession_RollsBackUncommittedWork(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM food WHERE food_id = ?").
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	var seen *transaction.Session
	handler := Session(transaction.NewManager(db))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := transaction.FromContext(r.Context())
		if !ok {
			t.Error("Expected a session in the request context")
			return
		}
		seen = s
		if _, err := seen.ExecContext(r.Context(), "DELETE FROM food WHERE food_id = ?", 1); err != nil {
			t.Errorf("exec failed: %v", err)
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/food/1/del/", nil))

	if seen == nil {
		t.Fatal("Expected a session in the request context")
	}
	if _, err := seen.ExecContext(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "SELECT 1"); err != transaction.ErrSessionClosed {
		t.Errorf("Expected the session to be closed after the request, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSession_NewSessionPerRequest(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var sessions []*transaction.Session
	handler := Session(transaction.NewManager(db))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := transaction.FromContext(r.Context())
		if !ok {
			t.Error("Expected a session in the request context")
		}
		sessions = append(sessions, s)
	}))

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fridge/", nil))
	}
	if len(sessions) != 2 || sessions[0] == sessions[1] {
		t.Error("Expected a distinct session for every request")
	}
}
