package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"

	"backend-cityguide/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrPOINotFound covers dangling references too: a navigation target or
// favorite can point at a POI removed by a catalog reload.
var ErrPOINotFound = errors.New("poi not found")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// WithTx returns a copy of the service bound to tx.
func (s *Service) WithTx(tx db.Querier) *Service {
	return &Service{db: tx}
}

func (s *Service) GetPOI(ctx context.Context, id string) (POI, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, lat, lon, description, created_at
		FROM pois WHERE id=$1
	`, id)
	var p POI
	if err := row.Scan(&p.ID, &p.Name, &p.Lat, &p.Lon, &p.Description, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return POI{}, ErrPOINotFound
		}
		return POI{}, err
	}
	return p, nil
}

func (s *Service) ListPOIs(ctx context.Context) ([]POI, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, lat, lon, description, created_at
		FROM pois ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pois []POI
	for rows.Next() {
		var p POI
		if err := rows.Scan(&p.ID, &p.Name, &p.Lat, &p.Lon, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		pois = append(pois, p)
	}
	return pois, nil
}

func (s *Service) CountPOIs(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM pois`).Scan(&n)
	return n, err
}

// ImportCSV ingests semicolon-separated rows of the form
// name;description;"lat,lon" (first row is the header). Rows duplicating an
// existing (name, lat, lon) triple are skipped, malformed rows are logged and
// counted but never abort the import.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (ImportSummary, error) {
	rd := csv.NewReader(r)
	rd.Comma = ';'
	rd.FieldsPerRecord = -1

	if _, err := rd.Read(); err != nil {
		return ImportSummary{}, err
	}

	var sum ImportSummary
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, err
		}
		sum.Processed++

		if len(rec) < 3 {
			sum.Malformed++
			log.Printf("csv import: row %d has %d fields, want 3", sum.Processed, len(rec))
			continue
		}
		lat, lon, err := parseCoords(rec[2])
		if err != nil {
			sum.Malformed++
			log.Printf("csv import: row %d: %v", sum.Processed, err)
			continue
		}

		tag, err := s.db.Exec(ctx, `
			INSERT INTO pois (id, name, lat, lon, description)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (name, lat, lon) DO NOTHING
		`, uuid.NewString(), strings.TrimSpace(rec[0]), lat, lon, strings.TrimSpace(rec[1]))
		if err != nil {
			return sum, err
		}
		if tag.RowsAffected() > 0 {
			sum.Inserted++
		} else {
			sum.Skipped++
		}
	}
	return sum, nil
}

func parseCoords(field string) (float64, float64, error) {
	parts := strings.Split(field, ",")
	if len(parts) != 2 {
		return 0, 0, errors.New("coordinates must be lat,lon")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, errors.New("coordinates out of range")
	}
	return lat, lon, nil
}
