package controllers

import (
	"habitstracker/services"
)

// Controller bundles the service handles the HTTP layer binds to.
type Controller struct {
	Sessions *services.SessionManager
	Scores   *services.ScoreService
	Boards   *services.LeaderboardService
	Users    *services.UserService
	Auth     *services.AuthService
	Push     *services.PushService
	Hub      *services.RealtimeHub
}

func NewController(
	sessions *services.SessionManager,
	scores *services.ScoreService,
	boards *services.LeaderboardService,
	users *services.UserService,
	auth *services.AuthService,
	push *services.PushService,
	hub *services.RealtimeHub,
) *Controller {
	return &Controller{
		Sessions: sessions,
		Scores:   scores,
		Boards:   boards,
		Users:    users,
		Auth:     auth,
		Push:     push,
		Hub:      hub,
	}
}
