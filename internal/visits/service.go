package visits

import (
	"context"
	"time"

	"backend-cityguide/internal/db"

	"github.com/google/uuid"
)

// POICount is one row of the per-POI visit histogram for a user, ordered by
// count descending then POI id ascending.
type POICount struct {
	POIID string `json:"poi_id"`
	Count int    `json:"count"`
}

// Service is the append-only visit ledger. Records are never updated and only
// removed wholesale by Reset.
type Service struct {
	db     db.Querier
	window time.Duration
	now    func() time.Time
}

func NewService(db db.Querier, window time.Duration) *Service {
	return &Service{db: db, window: window, now: time.Now}
}

// WithTx returns a copy of the service bound to tx.
func (s *Service) WithTx(tx db.Querier) *Service {
	cp := *s
	cp.db = tx
	return &cp
}

// Record appends a visit fact and returns its timestamp.
func (s *Service) Record(ctx context.Context, userID, poiID string) (time.Time, error) {
	visitedAt := s.now()
	_, err := s.db.Exec(ctx, `
		INSERT INTO visits (id, user_id, poi_id, visited_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), userID, poiID, visitedAt)
	return visitedAt, err
}

// IsVisited reports whether the POI was visited within the revisit window
// preceding asOf.
func (s *Service) IsVisited(ctx context.Context, userID, poiID string, asOf time.Time) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM visits
			WHERE user_id=$1 AND poi_id=$2 AND visited_at > $3
		)
	`, userID, poiID, asOf.Add(-s.window)).Scan(&ok)
	return ok, err
}

func (s *Service) Count(ctx context.Context, userID, poiID string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM visits WHERE user_id=$1 AND poi_id=$2
	`, userID, poiID).Scan(&n)
	return n, err
}

// DistinctCount ignores the revisit window: leveling is cumulative and never
// regresses when a window expires.
func (s *Service) DistinctCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT poi_id) FROM visits WHERE user_id=$1
	`, userID).Scan(&n)
	return n, err
}

func (s *Service) TotalCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM visits WHERE user_id=$1
	`, userID).Scan(&n)
	return n, err
}

func (s *Service) CountsByPOI(ctx context.Context, userID string) ([]POICount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT poi_id, COUNT(*) AS cnt
		FROM visits WHERE user_id=$1
		GROUP BY poi_id
		ORDER BY cnt DESC, poi_id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []POICount
	for rows.Next() {
		var c POICount
		if err := rows.Scan(&c.POIID, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, nil
}

// Reset purges all visit records for the user.
func (s *Service) Reset(ctx context.Context, userID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM visits WHERE user_id=$1`, userID)
	return err
}
