package navigation

import (
	"time"

	"backend-cityguide/internal/catalog"
	"backend-cityguide/internal/proximity"
)

// OutcomeKind closes the set of results a position report can produce.
type OutcomeKind string

const (
	OutcomeNoNearbyPOI  OutcomeKind = "no_nearby_poi"
	OutcomeSurfacePOI   OutcomeKind = "surface_poi"
	OutcomeNavProgress  OutcomeKind = "nav_progress"
	OutcomeNavNear      OutcomeKind = "nav_near"
	OutcomeNavArrived   OutcomeKind = "nav_arrived"
	OutcomeChooseTarget OutcomeKind = "choose_target"
)

type Outcome struct {
	Kind       OutcomeKind           `json:"kind"`
	POI        *catalog.POI          `json:"poi,omitempty"`
	DistanceM  float64               `json:"distance_m,omitempty"`
	Glyph      string                `json:"glyph,omitempty"`
	Candidates []proximity.Candidate `json:"candidates,omitempty"`
	// NewTitle is set when the visit bundled into this outcome unlocked an
	// achievement level.
	NewTitle string `json:"new_title,omitempty"`
}

// Session is the single per-user navigation row. The notified flags are
// meaningful only while a target is set and reset on every retarget or clear.
type Session struct {
	UserID          string     `json:"user_id"`
	LastLat         *float64   `json:"last_lat,omitempty"`
	LastLon         *float64   `json:"last_lon,omitempty"`
	LastUpdate      *time.Time `json:"last_update,omitempty"`
	TargetPOIID     string     `json:"target_poi_id,omitempty"`
	NotifiedNear    bool       `json:"notified_near"`
	NotifiedArrived bool       `json:"notified_arrived"`
}

type PositionReport struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Live bool    `json:"live"`
}

type TargetRequest struct {
	POIID string `json:"poi_id"`
}
