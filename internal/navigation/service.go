package navigation

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"backend-cityguide/internal/catalog"
	"backend-cityguide/internal/db"
	"backend-cityguide/internal/progress"
	"backend-cityguide/internal/proximity"
	"backend-cityguide/internal/shared/geo"
	"backend-cityguide/internal/stream"
	"backend-cityguide/internal/visits"

	"github.com/jackc/pgx/v5"
)

var ErrInvalidCoordinates = errors.New("coordinates out of range")

// chooseCandidates is how many POIs a live report without a target offers.
const chooseCandidates = 3

// Service is the proximity/navigation engine. It owns the per-user session
// state machine and composes catalog, proximity, visit and progress state
// into a single outcome per position report.
type Service struct {
	db        db.Querier
	catalog   *catalog.Service
	proximity *proximity.Service
	visits    *visits.Service
	progress  *progress.Service
	hub       *stream.Hub
	radiusM   float64
	nearM     float64
	now       func() time.Time

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func NewService(db db.Querier, catalogSvc *catalog.Service, proximitySvc *proximity.Service,
	visitSvc *visits.Service, progressSvc *progress.Service, hub *stream.Hub,
	radiusM, nearM float64) *Service {
	return &Service{
		db:        db,
		catalog:   catalogSvc,
		proximity: proximitySvc,
		visits:    visitSvc,
		progress:  progressSvc,
		hub:       hub,
		radiusM:   radiusM,
		nearM:     nearM,
		now:       time.Now,
		userLocks: map[string]*sync.Mutex{},
	}
}

// userLock serializes units of work for one user. Reports for different users
// run concurrently.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	return l
}

func (s *Service) GetSession(ctx context.Context, userID string) (Session, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, last_lat, last_lon, last_update,
		       COALESCE(target_poi_id::text, ''), notified_near, notified_arrived
		FROM nav_sessions WHERE user_id=$1
	`, userID)
	var sess Session
	err := row.Scan(&sess.UserID, &sess.LastLat, &sess.LastLon, &sess.LastUpdate,
		&sess.TargetPOIID, &sess.NotifiedNear, &sess.NotifiedArrived)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{UserID: userID}, nil
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// SetTarget points the user's live session at a POI. Both one-shot flags reset
// so near/arrived can fire again for the new assignment.
func (s *Service) SetTarget(ctx context.Context, userID, poiID string) (catalog.POI, error) {
	poi, err := s.catalog.GetPOI(ctx, poiID)
	if err != nil {
		return catalog.POI{}, err
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	_, err = s.db.Exec(ctx, `
		INSERT INTO nav_sessions (user_id, target_poi_id, notified_near, notified_arrived)
		VALUES ($1,$2,FALSE,FALSE)
		ON CONFLICT (user_id) DO UPDATE
		SET target_poi_id=EXCLUDED.target_poi_id, notified_near=FALSE, notified_arrived=FALSE
	`, userID, poiID)
	if err != nil {
		return catalog.POI{}, err
	}
	return poi, nil
}

func (s *Service) ClearTarget(ctx context.Context, userID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	_, err := s.db.Exec(ctx, `
		UPDATE nav_sessions
		SET target_poi_id=NULL, notified_near=FALSE, notified_arrived=FALSE
		WHERE user_id=$1
	`, userID)
	return err
}

// ReportPosition handles one position report and returns exactly one outcome.
// Live reports with a target drive the near/arrived state machine, live
// reports without one offer candidates, one-shot reports auto-surface.
func (s *Service) ReportPosition(ctx context.Context, userID string, lat, lon float64, live bool) (Outcome, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Outcome{}, ErrInvalidCoordinates
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.GetSession(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}

	// Store the new position first so every distance below is computed from
	// the just-stored fix.
	_, err = s.db.Exec(ctx, `
		INSERT INTO nav_sessions (user_id, last_lat, last_lon, last_update)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id) DO UPDATE
		SET last_lat=EXCLUDED.last_lat, last_lon=EXCLUDED.last_lon, last_update=EXCLUDED.last_update
	`, userID, lat, lon, s.now())
	if err != nil {
		return Outcome{}, err
	}

	if session.LastLat != nil && session.LastLon != nil {
		delta := geo.Haversine(*session.LastLat, *session.LastLon, lat, lon)
		if err := s.progress.AccumulateDistance(ctx, userID, delta); err != nil {
			return Outcome{}, err
		}
	}

	var out Outcome
	switch {
	case live && session.TargetPOIID != "":
		out, err = s.trackTarget(ctx, userID, session, lat, lon)
	case live:
		out, err = s.chooseTarget(ctx, userID, lat, lon)
	default:
		out, err = s.surfaceNearest(ctx, userID, lat, lon)
	}
	if err != nil {
		return Outcome{}, err
	}

	if live {
		s.broadcast(userID, out)
	}
	return out, nil
}

func (s *Service) trackTarget(ctx context.Context, userID string, session Session, lat, lon float64) (Outcome, error) {
	poi, err := s.catalog.GetPOI(ctx, session.TargetPOIID)
	if err != nil {
		// includes a target removed by catalog reload
		return Outcome{}, err
	}

	d := geo.Haversine(lat, lon, poi.Lat, poi.Lon)
	glyph := geo.Glyph(lat, lon, poi.Lat, poi.Lon)

	switch {
	case d <= s.radiusM && !session.NotifiedArrived:
		// Flag and visit commit together: a store failure mid-arrival rolls
		// both back, so the next report can emit the arrival again.
		var newTitle string
		err := s.inTx(ctx, func(tx db.Querier) error {
			if _, err := tx.Exec(ctx, `
				UPDATE nav_sessions SET notified_arrived=TRUE WHERE user_id=$1
			`, userID); err != nil {
				return err
			}
			title, err := s.recordVisitIn(ctx, tx, userID, poi.ID)
			if err != nil {
				return err
			}
			newTitle = title
			return nil
		})
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeNavArrived, POI: &poi, DistanceM: d, NewTitle: newTitle}, nil

	case d > s.radiusM && d <= s.nearM && !session.NotifiedNear:
		if _, err := s.db.Exec(ctx, `
			UPDATE nav_sessions SET notified_near=TRUE WHERE user_id=$1
		`, userID); err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeNavNear, POI: &poi, DistanceM: d, Glyph: glyph}, nil

	default:
		return Outcome{Kind: OutcomeNavProgress, POI: &poi, DistanceM: d, Glyph: glyph}, nil
	}
}

func (s *Service) chooseTarget(ctx context.Context, userID string, lat, lon float64) (Outcome, error) {
	candidates, err := s.proximity.NearestUnvisited(ctx, userID, lat, lon, chooseCandidates)
	if err != nil {
		return Outcome{}, err
	}
	if len(candidates) == 0 {
		return Outcome{Kind: OutcomeNoNearbyPOI}, nil
	}
	return Outcome{Kind: OutcomeChooseTarget, Candidates: candidates}, nil
}

func (s *Service) surfaceNearest(ctx context.Context, userID string, lat, lon float64) (Outcome, error) {
	candidate, ok, err := s.proximity.AutoSurface(ctx, userID, lat, lon)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{Kind: OutcomeNoNearbyPOI}, nil
	}

	newTitle, err := s.recordVisit(ctx, userID, candidate.POI.ID)
	if err != nil {
		return Outcome{}, err
	}
	poi := candidate.POI
	return Outcome{Kind: OutcomeSurfacePOI, POI: &poi, DistanceM: candidate.DistanceM, NewTitle: newTitle}, nil
}

// RecordVisit marks an explicit visit. Returns the new title when the visit
// unlocked a level.
func (s *Service) RecordVisit(ctx context.Context, userID, poiID string) (string, error) {
	if _, err := s.catalog.GetPOI(ctx, poiID); err != nil {
		return "", err
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return s.recordVisit(ctx, userID, poiID)
}

// recordVisit runs the ledger-then-progress chain in its own transaction.
// Callers hold the user lock.
func (s *Service) recordVisit(ctx context.Context, userID, poiID string) (string, error) {
	var title string
	err := s.inTx(ctx, func(tx db.Querier) error {
		t, err := s.recordVisitIn(ctx, tx, userID, poiID)
		if err != nil {
			return err
		}
		title = t
		return nil
	})
	return title, err
}

// recordVisitIn appends the ledger record before recomputing progress so the
// recompute observes it. All statements run on tx, so a failure anywhere
// leaves no partial state.
func (s *Service) recordVisitIn(ctx context.Context, tx db.Querier, userID, poiID string) (string, error) {
	visitsTx := s.visits.WithTx(tx)
	progressTx := s.progress.WithTx(tx)

	before, err := visitsTx.DistinctCount(ctx, userID)
	if err != nil {
		return "", err
	}
	if _, err := visitsTx.Record(ctx, userID, poiID); err != nil {
		return "", err
	}
	if err := progressTx.OnVisit(ctx, userID, poiID); err != nil {
		return "", err
	}
	after, err := visitsTx.DistinctCount(ctx, userID)
	if err != nil {
		return "", err
	}

	if title := progress.TitleFor(after); title != progress.TitleFor(before) {
		return title, nil
	}
	return "", nil
}

// inTx runs fn inside a transaction, rolling back when fn fails.
func (s *Service) inTx(ctx context.Context, fn func(tx db.Querier) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// ResetUser purges visit history and the navigation session and zeroes the
// walked distance. The catalog and the interest set stay.
func (s *Service) ResetUser(ctx context.Context, userID string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return s.inTx(ctx, func(tx db.Querier) error {
		if err := s.visits.WithTx(tx).Reset(ctx, userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM nav_sessions WHERE user_id=$1`, userID); err != nil {
			return err
		}
		return s.progress.WithTx(tx).Reset(ctx, userID)
	})
}

func (s *Service) broadcast(userID string, out Outcome) {
	if s.hub == nil {
		return
	}
	payload, _ := json.Marshal(out)
	s.hub.Broadcast(userID, payload)
}
