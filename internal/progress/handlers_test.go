package progress

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func stubAuth(c *fiber.Ctx) error {
	c.Locals("user_id", "user-1")
	return c.Next()
}

func TestStatsHandler(t *testing.T) {
	mock := newMock(t)
	app := fiber.New()
	RegisterRoutes(app.Group("/stats"), newTestService(mock), stubAuth)

	mock.ExpectQuery(`SELECT COUNT\(DISTINCT poi_id\) FROM visits`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM pois`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(10))

	resp, err := app.Test(httptest.NewRequest("GET", "/stats/", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var st Stats
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.DistinctVisited != 1 || st.TotalPOIs != 10 || st.Title != "🌱 Pathfinder" {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestDetailedStatsHandler(t *testing.T) {
	mock := newMock(t)
	app := fiber.New()
	RegisterRoutes(app.Group("/stats"), newTestService(mock), stubAuth)

	expectEnsure(mock)
	mock.ExpectQuery(`SELECT user_id, total_distance_km, first_visit, last_visit`).
		WithArgs("user-1").
		WillReturnRows(progressRow(nil, 0, 0, ""))
	mock.ExpectQuery(`SELECT COUNT\(DISTINCT poi_id\) FROM visits`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM visits`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	resp, err := app.Test(httptest.NewRequest("GET", "/stats/detailed", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var ds DetailedStats
	if err := json.NewDecoder(resp.Body).Decode(&ds); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ds.Title != GuestTitle || ds.NextTitle != "🌱 Pathfinder" || ds.RemainingToNext != 1 {
		t.Fatalf("unexpected detailed stats: %+v", ds)
	}
}
