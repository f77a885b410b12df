package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

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

func TestGetPOI(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, name, lat, lon, description, created_at`).
		WithArgs("poi-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "lat", "lon", "description", "created_at"}).
			AddRow("poi-1", "Gostiny Dvor", 59.7161, 30.3953, "Trading rows from 1785.", created))

	poi, err := svc.GetPOI(context.Background(), "poi-1")
	if err != nil {
		t.Fatalf("get poi: %v", err)
	}
	if poi.Name != "Gostiny Dvor" || poi.Lat != 59.7161 {
		t.Fatalf("unexpected poi: %+v", poi)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetPOINotFound(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	mock.ExpectQuery(`SELECT id, name, lat, lon, description, created_at`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "lat", "lon", "description", "created_at"}))

	_, err := svc.GetPOI(context.Background(), "missing")
	if !errors.Is(err, ErrPOINotFound) {
		t.Fatalf("expected ErrPOINotFound, got %v", err)
	}
}

func TestListPOIs(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	created := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, name, lat, lon, description, created_at`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "lat", "lon", "description", "created_at"}).
			AddRow("a", "Arsenal", 59.71, 30.39, "", created).
			AddRow("b", "Boulevard", 59.72, 30.40, "", created))

	pois, err := svc.ListPOIs(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pois) != 2 || pois[0].Name != "Arsenal" {
		t.Fatalf("unexpected result: %+v", pois)
	}
}

func TestCountPOIs(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM pois`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := svc.CountPOIs(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7, got %d", n)
	}
}

func TestImportCSV(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	data := strings.Join([]string{
		"Name;Text;Coords",
		`Cavalier Houses;Baroque houses;"59.71618,30.39530"`,
		`Gostiny Dvor;Trading rows;"59.7161,30.3953"`,
		`Broken Row;no coordinates here`,
		`Bad Coords;text;"91.0,30.0"`,
	}, "\n")

	mock.ExpectExec(`INSERT INTO pois`).
		WithArgs(pgxmock.AnyArg(), "Cavalier Houses", 59.71618, 30.39530, "Baroque houses").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO pois`).
		WithArgs(pgxmock.AnyArg(), "Gostiny Dvor", 59.7161, 30.3953, "Trading rows").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	sum, err := svc.ImportCSV(context.Background(), strings.NewReader(data))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if sum.Processed != 4 || sum.Inserted != 1 || sum.Skipped != 1 || sum.Malformed != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestImportCSVEmptyBody(t *testing.T) {
	mock := newMock(t)
	svc := NewService(mock)

	if _, err := svc.ImportCSV(context.Background(), strings.NewReader("")); err == nil {
		t.Fatalf("expected error for missing header")
	}
}

func TestParseCoords(t *testing.T) {
	cases := []struct {
		in      string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"59.7161,30.3953", 59.7161, 30.3953, false},
		{" 59.7161 , 30.3953 ", 59.7161, 30.3953, false},
		{"59.7161", 0, 0, true},
		{"abc,30.0", 0, 0, true},
		{"59.0,xyz", 0, 0, true},
		{"90.5,30.0", 0, 0, true},
		{"59.0,181.0", 0, 0, true},
	}
	for _, tc := range cases {
		lat, lon, err := parseCoords(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if lat != tc.lat || lon != tc.lon {
			t.Fatalf("%q: got (%v,%v)", tc.in, lat, lon)
		}
	}
}
