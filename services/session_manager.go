package services

import (
	"sync"

	"habitstracker/models"
	"habitstracker/store"
)

// Session is one authenticated user's view of the engine: a coordinator
// holding their live subscriptions plus a friend-service view bound to
// that cached state.
type Session struct {
	UID         string
	Coordinator *SubscriptionCoordinator
	Friends     *FriendService
}

// SessionManager creates a session per user on demand and tears it down
// on sign-out or disconnect. Sessions are the unit of cancellation:
// dropping one cancels its subscriptions as a group without rolling
// back anything already committed.
type SessionManager struct {
	store   store.Store
	friends *FriendService
	hub     *RealtimeHub

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager(st store.Store, friends *FriendService, hub *RealtimeHub) *SessionManager {
	return &SessionManager{
		store:    st,
		friends:  friends,
		hub:      hub,
		sessions: make(map[string]*Session),
	}
}

// Get returns uid's session, attaching one if none is live. Attaching
// subscribes to the user document and friends subcollection and relays
// every snapshot to the user's websocket clients.
func (m *SessionManager) Get(uid string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[uid]; ok {
		return s, nil
	}

	coord := NewSubscriptionCoordinator(m.store, uid)
	s := &Session{
		UID:         uid,
		Coordinator: coord,
		Friends:     m.friends.WithCache(coord),
	}

	err := coord.AddListenerForCurrentUser(func(u models.User) {
		if m.hub != nil {
			m.hub.Broadcast(uid, "user.updated", u)
		}
	})
	if err != nil {
		return nil, err
	}
	err = coord.AddListenerForFriendsSubcollection(func(friends []models.Friend) {
		if m.hub != nil {
			m.hub.Broadcast(uid, "friends.updated", friends)
		}
	})
	if err != nil {
		coord.Close()
		return nil, err
	}

	m.sessions[uid] = s
	return s, nil
}

// Drop cancels uid's subscriptions and forgets the session. Idempotent.
func (m *SessionManager) Drop(uid string) {
	m.mu.Lock()
	s := m.sessions[uid]
	delete(m.sessions, uid)
	m.mu.Unlock()
	if s != nil {
		s.Coordinator.Close()
	}
}
