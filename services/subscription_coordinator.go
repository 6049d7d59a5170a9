package services

import (
	"sort"
	"sync"

	"habitstracker/models"
	"habitstracker/store"
)

const (
	resourceUser    = "user"
	resourceFriends = "friends"
)

type UserCallback func(models.User)
type FriendsCallback func([]models.Friend)

// SubscriptionCoordinator owns the live store subscriptions of one
// session: the current user's document and their friends subcollection.
// At most one subscription per resource is active; registering again
// replaces the previous one without leaking its reader, and removal is
// idempotent. Each subscription is drained by a single reader goroutine
// that refreshes the local cache before invoking the callback, so the
// synchronous reads always reflect the last delivered snapshot.
type SubscriptionCoordinator struct {
	store store.Store
	uid   string

	mu   sync.Mutex
	subs map[string]*store.Subscription

	cacheMu sync.RWMutex
	user    *models.User
	friends []models.Friend
}

func NewSubscriptionCoordinator(st store.Store, uid string) *SubscriptionCoordinator {
	return &SubscriptionCoordinator{
		store: st,
		uid:   uid,
		subs:  make(map[string]*store.Subscription),
	}
}

// UID returns the session's user id.
func (c *SubscriptionCoordinator) UID() string { return c.uid }

// AddListenerForCurrentUser watches the user document. The callback
// fires once immediately with current state and again on every change,
// until removed.
func (c *SubscriptionCoordinator) AddListenerForCurrentUser(cb UserCallback) error {
	sub, err := c.store.Subscribe(store.UserPath(c.uid))
	if err != nil {
		return err
	}
	c.replace(resourceUser, sub)

	go func() {
		for snap := range sub.C {
			if !snap.Exists {
				continue
			}
			var u models.User
			if err := store.Decode(snap.Docs[0], &u); err != nil {
				continue
			}
			u.EnsureWindow()
			c.cacheMu.Lock()
			c.user = &u
			c.cacheMu.Unlock()
			if cb != nil {
				cb(u)
			}
		}
	}()
	return nil
}

func (c *SubscriptionCoordinator) RemoveListenerForCurrentUser() {
	c.remove(resourceUser)
}

// AddListenerForFriendsSubcollection watches the friends subcollection.
func (c *SubscriptionCoordinator) AddListenerForFriendsSubcollection(cb FriendsCallback) error {
	sub, err := c.store.Subscribe(store.FriendsPath(c.uid))
	if err != nil {
		return err
	}
	c.replace(resourceFriends, sub)

	go func() {
		for snap := range sub.C {
			friends := make([]models.Friend, 0, len(snap.Docs))
			for _, doc := range snap.Docs {
				var rec models.Friend
				if err := store.Decode(doc, &rec); err != nil {
					continue
				}
				friends = append(friends, rec)
			}
			sort.Slice(friends, func(i, j int) bool { return friends[i].ID < friends[j].ID })
			c.cacheMu.Lock()
			c.friends = friends
			c.cacheMu.Unlock()
			if cb != nil {
				cb(friends)
			}
		}
	}()
	return nil
}

func (c *SubscriptionCoordinator) RemoveListenerForFriendsSubcollection() {
	c.remove(resourceFriends)
}

// Close tears down every live subscription. Safe to call repeatedly.
func (c *SubscriptionCoordinator) Close() {
	c.RemoveListenerForCurrentUser()
	c.RemoveListenerForFriendsSubcollection()
}

// CurrentUser returns the last delivered user snapshot, if any.
func (c *SubscriptionCoordinator) CurrentUser() *models.User {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Friends implements FriendCache over the last delivered snapshot.
func (c *SubscriptionCoordinator) Friends() []models.Friend {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	out := make([]models.Friend, len(c.friends))
	copy(out, c.friends)
	return out
}

func (c *SubscriptionCoordinator) replace(resource string, sub *store.Subscription) {
	c.mu.Lock()
	old := c.subs[resource]
	c.subs[resource] = sub
	c.mu.Unlock()
	if old != nil {
		old.Cancel()
	}
}

func (c *SubscriptionCoordinator) remove(resource string) {
	c.mu.Lock()
	sub := c.subs[resource]
	delete(c.subs, resource)
	c.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}
