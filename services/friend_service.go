package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"habitstracker/models"
	"habitstracker/store"
)

// FriendCache is the locally cached relationship state maintained by
// the subscription coordinator. Synchronous reads answer from it
// without touching the store.
type FriendCache interface {
	Friends() []models.Friend
}

// FriendService owns the two-sided friend state machine. A relationship
// is a pair of records, one under each participant keyed by the other's
// id, and every transition writes both records in one atomic batch so
// the pair can never be observed half-updated.
type FriendService struct {
	store store.Store
	cache FriendCache
	pairs *lockTable
}

func NewFriendService(st store.Store) *FriendService {
	return &FriendService{store: st, pairs: newLockTable()}
}

// WithCache returns a view of the service bound to one session's cached
// subscription state. The pair-lock table stays shared, so transitions
// issued through different sessions still serialize per pair.
func (f *FriendService) WithCache(cache FriendCache) *FriendService {
	return &FriendService{store: f.store, cache: cache, pairs: f.pairs}
}

// pairLock serializes transitions on one unordered pair, so concurrent
// retries of the same operation cannot interleave their read and write.
func (f *FriendService) pairLock(a, b string) *sync.Mutex {
	key := a + "|" + b
	if b < a {
		key = b + "|" + a
	}
	return f.pairs.get(key)
}

func (f *FriendService) sideStatus(ctx context.Context, uid, friendID string) (models.FriendStatus, bool, error) {
	doc, err := f.store.Get(ctx, store.FriendPath(uid, friendID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	var rec models.Friend
	if err := store.Decode(doc, &rec); err != nil {
		return "", false, err
	}
	return rec.Status, true, nil
}

// AddRequest sends a friend request from uid to friendID: uid's side
// becomes Waiting, the mirror becomes Request. Re-issuing against an
// already pending pair is a no-op success so retries are safe.
func (f *FriendService) AddRequest(ctx context.Context, uid, friendID string) error {
	if uid == friendID {
		return fmt.Errorf("%w: cannot befriend yourself", ErrPreconditionFailed)
	}
	l := f.pairLock(uid, friendID)
	l.Lock()
	defer l.Unlock()

	status, exists, err := f.sideStatus(ctx, uid, friendID)
	if err != nil {
		return err
	}
	if exists {
		switch status {
		case models.StatusWaiting, models.StatusRequest:
			return nil // pending already, idempotent retry
		default:
			return fmt.Errorf("%w: already friends with %s", ErrPreconditionFailed, friendID)
		}
	}

	mine, err := store.Encode(models.Friend{ID: friendID, Status: models.StatusWaiting})
	if err != nil {
		return err
	}
	theirs, err := store.Encode(models.Friend{ID: uid, Status: models.StatusRequest})
	if err != nil {
		return err
	}
	return f.store.BatchWrite(ctx, []store.WriteOp{
		{Kind: store.OpSet, Path: store.FriendPath(uid, friendID), Data: mine},
		{Kind: store.OpSet, Path: store.FriendPath(friendID, uid), Data: theirs},
	})
}

// ConfirmFriend accepts a pending request. It is only valid when uid's
// side is Request (friendID had requested); anything else is an
// inconsistency surfaced to the caller, never silently papered over.
func (f *FriendService) ConfirmFriend(ctx context.Context, uid, friendID string) error {
	l := f.pairLock(uid, friendID)
	l.Lock()
	defer l.Unlock()

	status, exists, err := f.sideStatus(ctx, uid, friendID)
	if err != nil {
		return err
	}
	if !exists || status != models.StatusRequest {
		return fmt.Errorf("%w: no pending request from %s", ErrPreconditionFailed, friendID)
	}

	mine, err := store.Encode(models.Friend{ID: friendID, Status: models.StatusConfirmed})
	if err != nil {
		return err
	}
	theirs, err := store.Encode(models.Friend{ID: uid, Status: models.StatusConfirmed})
	if err != nil {
		return err
	}
	return f.store.BatchWrite(ctx, []store.WriteOp{
		{Kind: store.OpSet, Path: store.FriendPath(uid, friendID), Data: mine},
		{Kind: store.OpSet, Path: store.FriendPath(friendID, uid), Data: theirs},
	})
}

// RemoveFriend deletes both sides of the relationship. Valid from every
// state: it cancels a pending request and unfriends alike, and removing
// a relationship that does not exist is a no-op.
func (f *FriendService) RemoveFriend(ctx context.Context, uid, friendID string) error {
	l := f.pairLock(uid, friendID)
	l.Lock()
	defer l.Unlock()

	return f.store.BatchWrite(ctx, []store.WriteOp{
		{Kind: store.OpDelete, Path: store.FriendPath(uid, friendID)},
		{Kind: store.OpDelete, Path: store.FriendPath(friendID, uid)},
	})
}

// GetFriendsIdsWithStatus answers from the cached subscription state.
func (f *FriendService) GetFriendsIdsWithStatus(status models.FriendStatus) []string {
	if f.cache == nil {
		return nil
	}
	var ids []string
	for _, rec := range f.cache.Friends() {
		if rec.Status == status {
			ids = append(ids, rec.ID)
		}
	}
	return ids
}

// GetFriendStatus answers from the cached subscription state; the
// second return is false when no relationship record exists.
func (f *FriendService) GetFriendStatus(friendID string) (models.FriendStatus, bool) {
	if f.cache == nil {
		return "", false
	}
	for _, rec := range f.cache.Friends() {
		if rec.ID == friendID {
			return rec.Status, true
		}
	}
	return "", false
}

// GetRequests resolves pending requester ids to full user profiles with
// one batched lookup. An empty id set returns immediately without a
// store round-trip. Ids whose user document is gone are omitted from
// the result; any other failure aborts with a single aggregate error
// rather than partial results.
func (f *FriendService) GetRequests(ctx context.Context, pendingIds []string) ([]models.User, error) {
	if len(pendingIds) == 0 {
		return []models.User{}, nil
	}

	type slot struct {
		user *models.User
		err  error
	}
	slots := make([]slot, len(pendingIds))
	var wg sync.WaitGroup
	for i, id := range pendingIds {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			doc, err := f.store.Get(ctx, store.UserPath(id))
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return // document gone, omit from result
				}
				slots[i].err = err
				return
			}
			var u models.User
			if err := store.Decode(doc, &u); err != nil {
				slots[i].err = err
				return
			}
			slots[i].user = &u
		}(i, id)
	}
	wg.Wait()

	var errs []error
	users := make([]models.User, 0, len(pendingIds))
	for _, s := range slots {
		if s.err != nil {
			errs = append(errs, s.err)
			continue
		}
		if s.user != nil {
			users = append(users, *s.user)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return users, nil
}
