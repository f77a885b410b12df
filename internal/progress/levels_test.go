package progress

import "testing"

func TestTitleFor(t *testing.T) {
	cases := []struct {
		distinct int
		want     string
	}{
		{0, GuestTitle},
		{1, "🌱 Pathfinder"},
		{2, "🌱 Pathfinder"},
		{3, "🚶 Curious Wanderer"},
		{4, "🚶 Curious Wanderer"},
		{5, "🔍 Explorer"},
		{9, "🔍 Explorer"},
		{10, "🏛️ City Connoisseur"},
		{15, "🎭 Town Chronicler"},
		{19, "🎭 Town Chronicler"},
		{20, "👑 Keeper of History"},
		{100, "👑 Keeper of History"},
	}
	for _, tc := range cases {
		if got := TitleFor(tc.distinct); got != tc.want {
			t.Fatalf("TitleFor(%d) = %q, want %q", tc.distinct, got, tc.want)
		}
	}
}

func TestNextLevel(t *testing.T) {
	remaining, title, ok := NextLevel(0)
	if !ok || remaining != 1 || title != "🌱 Pathfinder" {
		t.Fatalf("NextLevel(0) = %d %q %v", remaining, title, ok)
	}

	remaining, title, ok = NextLevel(7)
	if !ok || remaining != 3 || title != "🏛️ City Connoisseur" {
		t.Fatalf("NextLevel(7) = %d %q %v", remaining, title, ok)
	}

	if _, _, ok := NextLevel(20); ok {
		t.Fatalf("expected top of the ladder at 20")
	}
}
