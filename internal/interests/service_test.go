package interests

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestAdd(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	mock.ExpectExec(`INSERT INTO user_interests`).
		WithArgs("user-1", "history").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := svc.Add(context.Background(), "user-1", "history"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddUnknownTag(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	err := svc.Add(context.Background(), "user-1", "astrology")
	if !errors.Is(err, ErrUnknownInterest) {
		t.Fatalf("expected ErrUnknownInterest, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestRemove(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	mock.ExpectExec(`DELETE FROM user_interests`).
		WithArgs("user-1", "legends").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := svc.Remove(context.Background(), "user-1", "legends"); err != nil {
		t.Fatalf("remove: %v", err)
	}
}

func TestList(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	mock.ExpectQuery(`SELECT interest FROM user_interests`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"interest"}).
			AddRow("architecture").
			AddRow("history"))

	tags, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tags) != 2 || tags[0] != "architecture" {
		t.Fatalf("unexpected tags: %v", tags)
	}
}

func TestPersonalize(t *testing.T) {
	cases := []struct {
		name string
		tags []string
		want string
	}{
		{"no tags", nil, "A quiet lane."},
		{"untagged interest", []string{"nature"}, "A quiet lane."},
		{"single glyph", []string{"history"}, "📜 A quiet lane."},
		{"stable order", []string{"legends", "history"}, "📜 🔮 A quiet lane."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Personalize("A quiet lane.", tc.tags)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
