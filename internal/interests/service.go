package interests

import (
	"context"
	"errors"
	"strings"

	"backend-cityguide/internal/db"
)

var ErrUnknownInterest = errors.New("unknown interest")

// Catalog is the fixed set of interest tags a visitor can pick.
var Catalog = map[string]string{
	"history":      "📜 History",
	"architecture": "🏛️ Architecture",
	"legends":      "🔮 Legends",
	"people":       "👤 Notable People",
	"nature":       "🌳 Nature & Parks",
}

// tagGlyphs lists the tags that get a glyph hint prepended to descriptions,
// in a stable order.
var tagGlyphs = []struct{ tag, glyph string }{
	{"history", "📜"},
	{"architecture", "🏛️"},
	{"legends", "🔮"},
}

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Add(ctx context.Context, userID, tag string) error {
	if _, ok := Catalog[tag]; !ok {
		return ErrUnknownInterest
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_interests (user_id, interest)
		VALUES ($1,$2)
		ON CONFLICT (user_id, interest) DO NOTHING
	`, userID, tag)
	return err
}

func (s *Service) Remove(ctx context.Context, userID, tag string) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM user_interests WHERE user_id=$1 AND interest=$2
	`, userID, tag)
	return err
}

func (s *Service) List(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT interest FROM user_interests WHERE user_id=$1 ORDER BY interest
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// Personalize prepends glyph hints for the visitor's interest tags. Purely
// cosmetic, never a ranking input.
func Personalize(description string, tags []string) string {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}

	var hints []string
	for _, tg := range tagGlyphs {
		if _, ok := set[tg.tag]; ok {
			hints = append(hints, tg.glyph)
		}
	}
	if len(hints) == 0 {
		return description
	}
	return strings.Join(hints, " ") + " " + description
}
