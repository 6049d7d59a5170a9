package services

import (
	"context"
	"sort"
	"time"

	"habitstracker/models"
	"habitstracker/store"
)

// RankNotifier delivers the rank-improved signal. Fire-and-forget: the
// service never consumes a result from it.
type RankNotifier interface {
	NotifyRankImproved(user models.User)
}

// LeaderboardService ranks users by their rolling-window scores and
// detects rank improvements worth a notification.
type LeaderboardService struct {
	store    store.Store
	notifier RankNotifier

	now func() time.Time
}

func NewLeaderboardService(st store.Store, notifier RankNotifier) *LeaderboardService {
	return &LeaderboardService{store: st, notifier: notifier, now: time.Now}
}

func (l *LeaderboardService) scoreFor(u *models.User, tf models.TimeFrame) int {
	u.EnsureWindow()
	if tf == models.TimeFrameWeekly {
		return u.DailyScores[models.WeeklyTotalIndex]
	}
	return u.DailyScores[TodayIndex(l.now())]
}

// SortUsers orders users descending by the selected time frame's score.
// The sort is stable: equal scores keep their original relative order,
// so repeated sorts are deterministic and UI diffs stay quiet.
func (l *LeaderboardService) SortUsers(users []models.User, tf models.TimeFrame) []models.User {
	sorted := make([]models.User, len(users))
	copy(sorted, users)
	sort.SliceStable(sorted, func(i, j int) bool {
		return l.scoreFor(&sorted[i], tf) > l.scoreFor(&sorted[j], tf)
	})
	return sorted
}

// Position returns uid's 1-based rank in an already sorted board, or 0
// when uid is not on it.
func Position(sorted []models.User, uid string) int {
	for i := range sorted {
		if sorted[i].ID == uid {
			return i + 1
		}
	}
	return 0
}

// DetectRankChange compares newPosition against the stored position for
// the (timeFrame, scope) slot. A strictly lower number is a better rank
// and fires the rank-improved signal. The new position is persisted
// either way, so the slot always reflects the last observed rank. The
// four slots are independent of one another.
func (l *LeaderboardService) DetectRankChange(ctx context.Context, user *models.User, newPosition int, tf models.TimeFrame, scope models.Scope) (bool, error) {
	key := models.RankSlotKey(tf, scope)
	old, had := user.RankSlots[key]
	improved := had && newPosition < old

	if user.RankSlots == nil {
		user.RankSlots = map[string]int{}
	}
	user.RankSlots[key] = newPosition

	err := l.store.BatchWrite(ctx, []store.WriteOp{{
		Kind: store.OpUpdate,
		Path: store.UserPath(user.ID),
		Data: map[string]any{"rank_slots": user.RankSlots},
	}})
	if err != nil {
		return false, err
	}

	if improved && l.notifier != nil {
		l.notifier.NotifyRankImproved(*user)
	}
	return improved, nil
}

// Board assembles the ranked user list for one (timeFrame, scope) and
// runs rank-change detection for the viewer. For the private scope,
// memberIds is the viewer's confirmed friend set; the viewer is always
// included. Global boards span every user.
func (l *LeaderboardService) Board(ctx context.Context, viewerID string, memberIds []string, tf models.TimeFrame, scope models.Scope) ([]models.User, int, error) {
	var users []models.User

	if scope == models.ScopeGlobal {
		docs, err := l.store.List(ctx, store.UsersCollection)
		if err != nil {
			return nil, 0, err
		}
		for _, doc := range docs {
			var u models.User
			if err := store.Decode(doc, &u); err != nil {
				return nil, 0, err
			}
			users = append(users, u)
		}
	} else {
		ids := append([]string{viewerID}, memberIds...)
		for _, id := range ids {
			doc, err := l.store.Get(ctx, store.UserPath(id))
			if err != nil {
				return nil, 0, err
			}
			var u models.User
			if err := store.Decode(doc, &u); err != nil {
				return nil, 0, err
			}
			users = append(users, u)
		}
	}

	sorted := l.SortUsers(users, tf)
	pos := Position(sorted, viewerID)
	if pos == 0 {
		return sorted, 0, nil
	}

	for i := range sorted {
		if sorted[i].ID == viewerID {
			if _, err := l.DetectRankChange(ctx, &sorted[i], pos, tf, scope); err != nil {
				return nil, 0, err
			}
			break
		}
	}
	return sorted, pos, nil
}
