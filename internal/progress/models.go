package progress

import "time"

type Progress struct {
	UserID          string     `json:"user_id"`
	TotalDistanceKm float64    `json:"total_distance_km"`
	FirstVisit      *time.Time `json:"first_visit,omitempty"`
	LastVisit       *time.Time `json:"last_visit,omitempty"`
	CurrentStreak   int        `json:"current_streak"`
	MaxStreak       int        `json:"max_streak"`
	FavoritePOIID   string     `json:"favorite_poi_id,omitempty"`
}

type Stats struct {
	DistinctVisited int    `json:"distinct_visited"`
	TotalPOIs       int    `json:"total_pois"`
	Title           string `json:"title"`
}

type DetailedStats struct {
	Progress
	DistinctVisited int    `json:"distinct_visited"`
	TotalVisits     int    `json:"total_visits"`
	FavoritePOIName string `json:"favorite_poi_name,omitempty"`
	Title           string `json:"title"`
	NextTitle       string `json:"next_title,omitempty"`
	RemainingToNext int    `json:"remaining_to_next,omitempty"`
}
