package progress

// Level is one rung of the achievement ladder, keyed by distinct POIs ever
// visited.
type Level struct {
	Threshold int    `json:"threshold"`
	Title     string `json:"title"`
}

// Levels is ordered by ascending threshold.
var Levels = []Level{
	{1, "🌱 Pathfinder"},
	{3, "🚶 Curious Wanderer"},
	{5, "🔍 Explorer"},
	{10, "🏛️ City Connoisseur"},
	{15, "🎭 Town Chronicler"},
	{20, "👑 Keeper of History"},
}

// GuestTitle applies below the lowest threshold.
const GuestTitle = "💫 Guest"

// TitleFor returns the highest title whose threshold the count meets.
func TitleFor(distinct int) string {
	title := GuestTitle
	for _, l := range Levels {
		if distinct >= l.Threshold {
			title = l.Title
		}
	}
	return title
}

// NextLevel returns how many more distinct POIs unlock the next title. ok is
// false at the top of the ladder.
func NextLevel(distinct int) (remaining int, title string, ok bool) {
	for _, l := range Levels {
		if distinct < l.Threshold {
			return l.Threshold - distinct, l.Title, true
		}
	}
	return 0, "", false
}
