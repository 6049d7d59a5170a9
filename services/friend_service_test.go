package services

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"habitstracker/models"
	"habitstracker/store"
)

func sideOf(t *testing.T, st store.Store, uid, friendID string) (models.FriendStatus, bool) {
	t.Helper()
	doc, err := st.Get(context.Background(), store.FriendPath(uid, friendID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", false
		}
		t.Fatal(err)
	}
	var rec models.Friend
	if err := store.Decode(doc, &rec); err != nil {
		t.Fatal(err)
	}
	return rec.Status, true
}

func TestAddRequestCreatesBothSides(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewFriendService(st)
	ctx := context.Background()

	if err := svc.AddRequest(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}

	if s, ok := sideOf(t, st, "alice", "bob"); !ok || s != models.StatusWaiting {
		t.Errorf("alice's side = %v/%v, want waiting", s, ok)
	}
	if s, ok := sideOf(t, st, "bob", "alice"); !ok || s != models.StatusRequest {
		t.Errorf("bob's side = %v/%v, want request", s, ok)
	}
}

func TestRequestThenConfirmBecomesMutual(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewFriendService(st)
	ctx := context.Background()

	if err := svc.AddRequest(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	// Bob, who holds the Request side, confirms.
	if err := svc.ConfirmFriend(ctx, "bob", "alice"); err != nil {
		t.Fatal(err)
	}

	if s, _ := sideOf(t, st, "alice", "bob"); s != models.StatusConfirmed {
		t.Errorf("alice's side = %v, want confirmed", s)
	}
	if s, _ := sideOf(t, st, "bob", "alice"); s != models.StatusConfirmed {
		t.Errorf("bob's side = %v, want confirmed", s)
	}
}

func TestConfirmWithoutRequestFails(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewFriendService(st)
	ctx := context.Background()

	// No relationship at all.
	if err := svc.ConfirmFriend(ctx, "alice", "bob"); !errors.Is(err, ErrPreconditionFailed) {
		t.Errorf("confirm from None: %v, want ErrPreconditionFailed", err)
	}

	// The requester cannot confirm their own pending request.
	if err := svc.AddRequest(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	if err := svc.ConfirmFriend(ctx, "alice", "bob"); !errors.Is(err, ErrPreconditionFailed) {
		t.Errorf("confirm from Waiting: %v, want ErrPreconditionFailed", err)
	}
}

func TestAddRequestIsIdempotentWhilePending(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewFriendService(st)
	ctx := context.Background()

	if err := svc.AddRequest(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("retry must be a no-op success, got %v", err)
	}
	if s, _ := sideOf(t, st, "alice", "bob"); s != models.StatusWaiting {
		t.Errorf("retry corrupted alice's side: %v", s)
	}

	// Once confirmed, a fresh AddRequest is a real precondition failure.
	if err := svc.ConfirmFriend(ctx, "bob", "alice"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddRequest(ctx, "alice", "bob"); !errors.Is(err, ErrPreconditionFailed) {
		t.Errorf("add over confirmed: %v, want ErrPreconditionFailed", err)
	}
}

func TestAddRequestToSelfFails(t *testing.T) {
	svc := NewFriendService(store.NewMemoryStore())
	if err := svc.AddRequest(context.Background(), "alice", "alice"); !errors.Is(err, ErrPreconditionFailed) {
		t.Errorf("self request: %v, want ErrPreconditionFailed", err)
	}
}

func TestConcurrentAddRequestsYieldOnePair(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewFriendService(st)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.AddRequest(ctx, "alice", "bob"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if s, ok := sideOf(t, st, "alice", "bob"); !ok || s != models.StatusWaiting {
		t.Errorf("alice's side = %v/%v, want waiting", s, ok)
	}
	if s, ok := sideOf(t, st, "bob", "alice"); !ok || s != models.StatusRequest {
		t.Errorf("bob's side = %v/%v, want request", s, ok)
	}
}

func TestRemoveFriendWorksFromEveryState(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewFriendService(st)
	ctx := context.Background()

	// From None: no-op.
	if err := svc.RemoveFriend(ctx, "alice", "bob"); err != nil {
		t.Fatalf("remove from None: %v", err)
	}

	// From pending: cancels the request on both sides.
	_ = svc.AddRequest(ctx, "alice", "bob")
	if err := svc.RemoveFriend(ctx, "bob", "alice"); err != nil {
		t.Fatal(err)
	}
	if _, ok := sideOf(t, st, "alice", "bob"); ok {
		t.Error("alice's side survived removal")
	}
	if _, ok := sideOf(t, st, "bob", "alice"); ok {
		t.Error("bob's side survived removal")
	}

	// From confirmed: unfriends.
	_ = svc.AddRequest(ctx, "alice", "bob")
	_ = svc.ConfirmFriend(ctx, "bob", "alice")
	if err := svc.RemoveFriend(ctx, "alice", "bob"); err != nil {
		t.Fatal(err)
	}
	if _, ok := sideOf(t, st, "alice", "bob"); ok {
		t.Error("confirmed friendship survived removal")
	}
}

// pairConsistent checks the two sides form one of the legal
// combinations: None/None, Waiting/Request (either way) or
// Confirmed/Confirmed.
func pairConsistent(t *testing.T, st store.Store, a, b string) bool {
	t.Helper()
	sa, oka := sideOf(t, st, a, b)
	sb, okb := sideOf(t, st, b, a)
	switch {
	case !oka && !okb:
		return true
	case oka != okb:
		return false
	case sa == models.StatusWaiting && sb == models.StatusRequest:
		return true
	case sa == models.StatusRequest && sb == models.StatusWaiting:
		return true
	case sa == models.StatusConfirmed && sb == models.StatusConfirmed:
		return true
	default:
		return false
	}
}

func TestPairInvariantUnderRandomTransitionSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 50; run++ {
		st := store.NewMemoryStore()
		svc := NewFriendService(st)
		ctx := context.Background()

		for step := 0; step < 30; step++ {
			from, to := "alice", "bob"
			if rng.Intn(2) == 0 {
				from, to = to, from
			}
			switch rng.Intn(3) {
			case 0:
				_ = svc.AddRequest(ctx, from, to) // may fail, fine
			case 1:
				_ = svc.ConfirmFriend(ctx, from, to) // may fail, fine
			case 2:
				_ = svc.RemoveFriend(ctx, from, to)
			}
			if !pairConsistent(t, st, "alice", "bob") {
				sa, _ := sideOf(t, st, "alice", "bob")
				sb, _ := sideOf(t, st, "bob", "alice")
				t.Fatalf("run %d step %d: inconsistent pair %v/%v", run, step, sa, sb)
			}
		}
	}
}

func TestGetRequestsEmptySkipsStore(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewFriendService(st)

	before := st.ReadCount()
	users, err := svc.GetRequests(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 0 {
		t.Fatalf("expected empty result, got %v", users)
	}
	if st.ReadCount() != before {
		t.Error("empty id set must not hit the store")
	}
}

func TestGetRequestsResolvesProfilesAndOmitsMissing(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewFriendService(st)

	seedUser(t, st, models.NewUser("bob", "bob@x.io"))
	seedUser(t, st, models.NewUser("carol", "carol@x.io"))

	users, err := svc.GetRequests(context.Background(), []string{"bob", "ghost", "carol"})
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2 (missing id omitted)", len(users))
	}
}

func TestGetRequestsAggregatesStoreFailures(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewFriendService(st)
	st.FailWith(store.ErrUnavailable)

	_, err := svc.GetRequests(context.Background(), []string{"bob", "carol"})
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected aggregate ErrUnavailable, got %v", err)
	}
}

func TestCacheReadsWithoutCache(t *testing.T) {
	svc := NewFriendService(store.NewMemoryStore())
	if ids := svc.GetFriendsIdsWithStatus(models.StatusConfirmed); len(ids) != 0 {
		t.Errorf("no cache: got %v", ids)
	}
	if _, ok := svc.GetFriendStatus("bob"); ok {
		t.Error("no cache: status must not exist")
	}
}
