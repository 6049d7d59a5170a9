package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"habitstracker/models"
	"habitstracker/store"
)

func dayStartLocal(t time.Time) time.Time {
	loc := time.Local
	tt := t.In(loc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, loc)
}

// TodayIndex maps a timestamp to its slot in the rolling window:
// Monday = 0 through Sunday = 6.
func TodayIndex(t time.Time) int {
	return (int(t.In(time.Local).Weekday()) + 6) % 7
}

// PointsForActivity converts a raw daily quantity into points using the
// activity catalog. A nil quantity means no data today and yields 0;
// that is a valid state, not a fault.
func PointsForActivity(kind models.ActivityKind, quantity *float64) int {
	if quantity == nil {
		return 0
	}
	def, ok := models.ActivityCatalog[kind]
	if !ok {
		return 0
	}
	return int(math.Round(*quantity * def.PointValue))
}

// DailyTotal sums per-activity points. Absent kinds contribute 0.
func DailyTotal(points map[models.ActivityKind]int) int {
	total := 0
	for _, p := range points {
		total += p
	}
	return total
}

// UpdateRecord replaces a best-ever record when today's quantity
// strictly exceeds it. Equal values never count as an improvement.
func UpdateRecord(rec models.ActivityRecord, todayQuantity float64, now time.Time) (models.ActivityRecord, bool) {
	if todayQuantity > rec.Quantity {
		return models.ActivityRecord{
			Quantity:  todayQuantity,
			Timestamp: dayStartLocal(now),
		}, true
	}
	return rec, false
}

// ScoreService maintains each user's rolling 8-slot score window.
// Window writes are read-modify-write over the whole array, so they are
// serialized per user: two activity updates landing together must not
// overwrite each other's slots.
type ScoreService struct {
	store store.Store
	locks *lockTable

	now func() time.Time
}

func NewScoreService(st store.Store) *ScoreService {
	return &ScoreService{
		store: st,
		locks: newLockTable(),
		now:   time.Now,
	}
}

func (s *ScoreService) userLock(uid string) *sync.Mutex {
	return s.locks.get(uid)
}

// WriteTodayScore sets today's slot to newScore and recomputes the
// weekly total as the sum of slots 0 through today, then persists the
// window as a single field update computed from a fresh read.
func (s *ScoreService) WriteTodayScore(ctx context.Context, uid string, newScore int) error {
	l := s.userLock(uid)
	l.Lock()
	defer l.Unlock()

	user, err := s.loadUser(ctx, uid)
	if err != nil {
		return err
	}

	idx := TodayIndex(s.now())
	user.DailyScores[idx] = newScore
	total := 0
	for i := 0; i <= idx; i++ {
		total += user.DailyScores[i]
	}
	user.DailyScores[models.WeeklyTotalIndex] = total

	return s.store.BatchWrite(ctx, []store.WriteOp{{
		Kind: store.OpUpdate,
		Path: store.UserPath(uid),
		Data: map[string]any{"daily_scores": user.DailyScores},
	}})
}

// UpdateDailyScores is the exposed mutation entry point for callers.
func (s *ScoreService) UpdateDailyScores(ctx context.Context, uid string, newScore int) error {
	return s.WriteTodayScore(ctx, uid, newScore)
}

// LogActivity records a raw quantity for one activity kind: it stores
// today's quantity, refreshes the best-ever record, recomputes today's
// total points from every kind logged so far, and persists everything
// in one atomic batch. Reports whether a new record was set.
func (s *ScoreService) LogActivity(ctx context.Context, uid string, kind models.ActivityKind, quantity float64) (bool, error) {
	if _, ok := models.ActivityCatalog[kind]; !ok {
		return false, fmt.Errorf("unknown activity kind %q", kind)
	}

	l := s.userLock(uid)
	l.Lock()
	defer l.Unlock()

	user, err := s.loadUser(ctx, uid)
	if err != nil {
		return false, err
	}

	if user.ActualScores == nil {
		user.ActualScores = map[models.ActivityKind]float64{}
	}
	if user.Records == nil {
		user.Records = map[models.ActivityKind]models.ActivityRecord{}
	}
	user.ActualScores[kind] = quantity

	rec, improved := UpdateRecord(user.Records[kind], quantity, s.now())
	if improved {
		user.Records[kind] = rec
	}

	points := make(map[models.ActivityKind]int, len(user.ActualScores))
	for k, q := range user.ActualScores {
		qty := q
		points[k] = PointsForActivity(k, &qty)
	}

	idx := TodayIndex(s.now())
	user.DailyScores[idx] = DailyTotal(points)
	total := 0
	for i := 0; i <= idx; i++ {
		total += user.DailyScores[i]
	}
	user.DailyScores[models.WeeklyTotalIndex] = total

	err = s.store.BatchWrite(ctx, []store.WriteOp{{
		Kind: store.OpUpdate,
		Path: store.UserPath(uid),
		Data: map[string]any{
			"actual_scores": user.ActualScores,
			"records":       user.Records,
			"daily_scores":  user.DailyScores,
		},
	}})
	if err != nil {
		return false, err
	}
	return improved, nil
}

// RolloverWeek zeroes the 8-slot window and today's raw quantities.
// The scheduler invokes it at the start of each new week.
func (s *ScoreService) RolloverWeek(ctx context.Context, uid string) error {
	l := s.userLock(uid)
	l.Lock()
	defer l.Unlock()

	return s.store.BatchWrite(ctx, []store.WriteOp{{
		Kind: store.OpUpdate,
		Path: store.UserPath(uid),
		Data: map[string]any{
			"daily_scores":  make([]int, models.DailyScoresLen),
			"actual_scores": map[models.ActivityKind]float64{},
		},
	}})
}

func (s *ScoreService) loadUser(ctx context.Context, uid string) (*models.User, error) {
	doc, err := s.store.Get(ctx, store.UserPath(uid))
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := store.Decode(doc, &user); err != nil {
		return nil, err
	}
	user.EnsureWindow()
	return &user, nil
}
