package services

import (
	"context"
	"time"

	"habitstracker/logger"
	"habitstracker/store"

	"github.com/go-co-op/gocron/v2"
)

// StartRolloverScheduler zeroes every user's rolling score window at
// the start of each week. The window invariant (slot 7 = sum of slots
// elapsed so far) holds after every write regardless of when this runs;
// the job only prevents last week's slots from bleeding into this one.
func (s *ScoreService) StartRolloverScheduler() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.Local))
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.WeeklyJob(1,
			gocron.NewWeekdays(time.Monday),
			gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0)),
		),
		gocron.NewTask(func() {
			ctx := context.Background()
			docs, err := s.store.List(ctx, store.UsersCollection)
			if err != nil {
				logger.Error("rollover: list users: %v", err)
				return
			}
			for _, doc := range docs {
				uid := store.DocID(doc.Path)
				if err := s.RolloverWeek(ctx, uid); err != nil {
					logger.Error("rollover: reset %s: %v", uid, err)
				}
			}
			logger.Success("rollover: reset %d score windows", len(docs))
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
