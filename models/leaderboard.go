package models

// TimeFrame selects which window slot a leaderboard ranks by.
type TimeFrame string

const (
	TimeFrameDaily  TimeFrame = "daily"
	TimeFrameWeekly TimeFrame = "weekly"
)

// Scope selects the population a ranking is computed over.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopePrivate Scope = "private"
)

// RankSlotKey keys User.RankSlots. The four slots (daily/weekly ×
// global/private) are independent and must never cross-contaminate.
func RankSlotKey(tf TimeFrame, scope Scope) string {
	return string(tf) + ":" + string(scope)
}
