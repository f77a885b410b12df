package proximity

import (
	"context"
	"sort"
	"time"

	"backend-cityguide/internal/catalog"
	"backend-cityguide/internal/db"
	"backend-cityguide/internal/shared/geo"
)

// Candidate pairs a POI with its straight-line distance from the reported
// position.
type Candidate struct {
	POI       catalog.POI `json:"poi"`
	DistanceM float64     `json:"distance_m"`
}

type Service struct {
	db      db.Querier
	window  time.Duration
	radiusM float64
	now     func() time.Time
}

func NewService(db db.Querier, window time.Duration, radiusM float64) *Service {
	return &Service{db: db, window: window, radiusM: radiusM, now: time.Now}
}

// NearestUnvisited returns up to limit POIs without a visit inside the revisit
// window, ascending by haversine distance. Read-only.
func (s *Service) NearestUnvisited(ctx context.Context, userID string, lat, lon float64, limit int) ([]Candidate, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.name, p.lat, p.lon, p.description, p.created_at
		FROM pois p
		WHERE NOT EXISTS (
			SELECT 1 FROM visits v
			WHERE v.user_id=$1 AND v.poi_id=p.id AND v.visited_at > $2
		)
	`, userID, s.now().Add(-s.window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var p catalog.POI
		if err := rows.Scan(&p.ID, &p.Name, &p.Lat, &p.Lon, &p.Description, &p.CreatedAt); err != nil {
			return nil, err
		}
		candidates = append(candidates, Candidate{
			POI:       p,
			DistanceM: geo.Haversine(lat, lon, p.Lat, p.Lon),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].DistanceM < candidates[j].DistanceM
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// AutoSurface returns the single nearest eligible POI within the surface
// radius, if any.
func (s *Service) AutoSurface(ctx context.Context, userID string, lat, lon float64) (Candidate, bool, error) {
	candidates, err := s.NearestUnvisited(ctx, userID, lat, lon, 1)
	if err != nil {
		return Candidate{}, false, err
	}
	if len(candidates) == 0 || candidates[0].DistanceM > s.radiusM {
		return Candidate{}, false, nil
	}
	return candidates[0], true, nil
}
