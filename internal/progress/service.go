package progress

import (
	"context"
	"errors"
	"time"

	"backend-cityguide/internal/catalog"
	"backend-cityguide/internal/db"
	"backend-cityguide/internal/visits"
)

// noiseFloorM is the minimum position delta that counts as walking. Smaller
// jitter is dropped entirely, not accumulated.
const noiseFloorM = 5.0

type Service struct {
	db      db.Querier
	visits  *visits.Service
	catalog *catalog.Service
	now     func() time.Time
}

func NewService(db db.Querier, visitSvc *visits.Service, catalogSvc *catalog.Service) *Service {
	return &Service{db: db, visits: visitSvc, catalog: catalogSvc, now: time.Now}
}

// WithTx returns a copy of the service, and its collaborators, bound to tx.
func (s *Service) WithTx(tx db.Querier) *Service {
	cp := *s
	cp.db = tx
	cp.visits = s.visits.WithTx(tx)
	cp.catalog = s.catalog.WithTx(tx)
	return &cp
}

func (s *Service) ensure(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_progress (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (s *Service) Get(ctx context.Context, userID string) (Progress, error) {
	if err := s.ensure(ctx, userID); err != nil {
		return Progress{}, err
	}

	row := s.db.QueryRow(ctx, `
		SELECT user_id, total_distance_km, first_visit, last_visit,
		       current_streak, max_streak, COALESCE(favorite_poi_id::text, '')
		FROM user_progress WHERE user_id=$1
	`, userID)
	var p Progress
	if err := row.Scan(&p.UserID, &p.TotalDistanceKm, &p.FirstVisit, &p.LastVisit,
		&p.CurrentStreak, &p.MaxStreak, &p.FavoritePOIID); err != nil {
		return Progress{}, err
	}
	return p, nil
}

// AccumulateDistance adds a position delta to the walked total unless it is
// within the noise floor.
func (s *Service) AccumulateDistance(ctx context.Context, userID string, meters float64) error {
	if meters <= noiseFloorM {
		return nil
	}
	if err := s.ensure(ctx, userID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		UPDATE user_progress
		SET total_distance_km = total_distance_km + $2
		WHERE user_id=$1
	`, userID, meters/1000)
	return err
}

// OnVisit refreshes visit dates, the daily streak and the favorite POI. It
// must run after the visit record is written so the recount sees it.
func (s *Service) OnVisit(ctx context.Context, userID, poiID string) error {
	cur, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	today := dateOnly(s.now())
	streak := cur.CurrentStreak
	switch {
	case cur.LastVisit == nil:
		streak = 1
	case dateOnly(*cur.LastVisit).Equal(today):
		if streak == 0 {
			streak = 1
		}
	case dateOnly(*cur.LastVisit).Equal(today.AddDate(0, 0, -1)):
		streak++
	default:
		streak = 1
	}
	maxStreak := cur.MaxStreak
	if streak > maxStreak {
		maxStreak = streak
	}

	fav, err := s.recomputeFavorite(ctx, userID, cur.FavoritePOIID)
	if err != nil {
		return err
	}

	var favArg any
	if fav != "" {
		favArg = fav
	}
	_, err = s.db.Exec(ctx, `
		UPDATE user_progress
		SET first_visit = COALESCE(first_visit, $2),
		    last_visit = $2,
		    current_streak = $3,
		    max_streak = $4,
		    favorite_poi_id = $5
		WHERE user_id=$1
	`, userID, today, streak, maxStreak, favArg)
	return err
}

// recomputeFavorite picks the POI with the highest visit count. On a tie the
// previous favorite survives if it is among the tied maxima, otherwise the
// lowest POI id wins (the histogram is ordered cnt DESC, poi_id ASC).
func (s *Service) recomputeFavorite(ctx context.Context, userID, current string) (string, error) {
	counts, err := s.visits.CountsByPOI(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(counts) == 0 {
		return current, nil
	}
	for _, c := range counts {
		if c.Count != counts[0].Count {
			break
		}
		if c.POIID == current {
			return current, nil
		}
	}
	return counts[0].POIID, nil
}

func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	distinct, err := s.visits.DistinctCount(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	total, err := s.catalog.CountPOIs(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		DistinctVisited: distinct,
		TotalPOIs:       total,
		Title:           TitleFor(distinct),
	}, nil
}

func (s *Service) DetailedStats(ctx context.Context, userID string) (DetailedStats, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return DetailedStats{}, err
	}
	distinct, err := s.visits.DistinctCount(ctx, userID)
	if err != nil {
		return DetailedStats{}, err
	}
	total, err := s.visits.TotalCount(ctx, userID)
	if err != nil {
		return DetailedStats{}, err
	}

	ds := DetailedStats{
		Progress:        p,
		DistinctVisited: distinct,
		TotalVisits:     total,
		Title:           TitleFor(distinct),
	}
	if remaining, next, ok := NextLevel(distinct); ok {
		ds.RemainingToNext = remaining
		ds.NextTitle = next
	}
	if p.FavoritePOIID != "" {
		poi, err := s.catalog.GetPOI(ctx, p.FavoritePOIID)
		switch {
		case err == nil:
			ds.FavoritePOIName = poi.Name
		case errors.Is(err, catalog.ErrPOINotFound):
			// favorite removed by a catalog reload; report without a name
		default:
			return DetailedStats{}, err
		}
	}
	return ds, nil
}

// Reset zeroes the walked distance and streak state. Interests and the
// catalog are untouched.
func (s *Service) Reset(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE user_progress
		SET total_distance_km = 0,
		    first_visit = NULL,
		    last_visit = NULL,
		    current_streak = 0,
		    max_streak = 0,
		    favorite_poi_id = NULL
		WHERE user_id=$1
	`, userID)
	return err
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
