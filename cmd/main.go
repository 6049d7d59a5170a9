package main

import (
	"habitstracker/config"
	"habitstracker/controllers"
	"habitstracker/logger"
	"habitstracker/routes"
	"habitstracker/services"
	"habitstracker/store"
	"habitstracker/utils"
)

func main() {
	config.InitDB()
	utils.InitS3()

	st := store.NewGormStore(config.DB)

	push, err := services.NewPushService(config.DB)
	if err != nil {
		logger.Warning("push service disabled: %v", err)
		push = nil
	}

	hub := services.NewRealtimeHub()
	friends := services.NewFriendService(st)
	sessions := services.NewSessionManager(st, friends, hub)
	scores := services.NewScoreService(st)
	users := services.NewUserService(st, config.DB)
	auth := services.NewAuthService(st, config.DB)

	var notifier services.RankNotifier
	if push != nil {
		notifier = push
	}
	boards := services.NewLeaderboardService(st, notifier)

	if _, err := scores.StartRolloverScheduler(); err != nil {
		logger.Warning("rollover scheduler not started: %v", err)
	}

	ctl := controllers.NewController(sessions, scores, boards, users, auth, push, hub)
	r := routes.SetupRouter(ctl)

	logger.Info("listening on :8080")
	r.Run(":8080")
}
