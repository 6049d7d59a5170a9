package models

import (
	"time"
)

// DailyScoresLen is the size of the rolling score window: seven weekday
// slots (Monday = 0) plus the running weekly total at index 7.
const DailyScoresLen = 8

// WeeklyTotalIndex is the slot holding the sum of the weekday slots
// elapsed so far this week.
const WeeklyTotalIndex = 7

// ActivityRecord is a user's best-ever quantity for one activity kind,
// stamped with the local start of the day it was last improved.
type ActivityRecord struct {
	Quantity  float64   `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// User is the document stored under users/{id}.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`

	Birthday *time.Time `json:"birthday,omitempty"`
	Sex      string     `json:"sex,omitempty"`
	Height   *float64   `json:"height,omitempty"`
	Weight   *float64   `json:"weight,omitempty"`
	Picture  string     `json:"picture,omitempty"`

	// Best-ever quantity per activity kind.
	Records map[ActivityKind]ActivityRecord `json:"records,omitempty"`

	// Raw quantity logged today per activity kind.
	ActualScores map[ActivityKind]float64 `json:"actual_scores,omitempty"`

	// Rolling window: [0..6] per-weekday points, [7] weekly total.
	DailyScores []int `json:"daily_scores"`

	// Last observed leaderboard position per (time frame, scope) slot,
	// keyed by RankSlotKey. Used only to detect rank improvement.
	RankSlots map[string]int `json:"rank_slots,omitempty"`
}

// NewUser returns a user document with a zeroed score window.
func NewUser(id, email string) *User {
	return &User{
		ID:           id,
		Email:        email,
		Records:      map[ActivityKind]ActivityRecord{},
		ActualScores: map[ActivityKind]float64{},
		DailyScores:  make([]int, DailyScoresLen),
		RankSlots:    map[string]int{},
	}
}

// EnsureWindow normalizes DailyScores to exactly 8 slots. Documents
// written before the window existed may carry a short or missing array.
func (u *User) EnsureWindow() {
	if len(u.DailyScores) == DailyScoresLen {
		return
	}
	w := make([]int, DailyScoresLen)
	copy(w, u.DailyScores)
	u.DailyScores = w
}
