package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGetMissingReturnsNotFound(t *testing.T) {
	m := NewMemoryStore()
	_, err := m.Get(context.Background(), UserPath("nobody"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBatchWriteSetAndGet(t *testing.T) {
	m := NewMemoryStore()
	err := m.BatchWrite(context.Background(), []WriteOp{
		{Kind: OpSet, Path: UserPath("u1"), Data: map[string]any{"id": "u1", "email": "a@b.c"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	doc, err := m.Get(context.Background(), UserPath("u1"))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Data["email"] != "a@b.c" {
		t.Fatalf("unexpected data: %v", doc.Data)
	}
}

func TestBatchWithUpdateOnMissingDocChangesNothing(t *testing.T) {
	m := NewMemoryStore()
	err := m.BatchWrite(context.Background(), []WriteOp{
		{Kind: OpSet, Path: UserPath("u1"), Data: map[string]any{"id": "u1"}},
		{Kind: OpUpdate, Path: UserPath("ghost"), Data: map[string]any{"x": 1}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// The set in the failed batch must not have applied.
	if _, err := m.Get(context.Background(), UserPath("u1")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("failed batch leaked a write: %v", err)
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	m := NewMemoryStore()
	err := m.BatchWrite(context.Background(), []WriteOp{
		{Kind: OpDelete, Path: UserPath("nobody")},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestQueryWhere(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	_ = m.BatchWrite(ctx, []WriteOp{
		{Kind: OpSet, Path: UserPath("u1"), Data: map[string]any{"id": "u1", "username": "ada"}},
		{Kind: OpSet, Path: UserPath("u2"), Data: map[string]any{"id": "u2", "username": "grace"}},
	})
	docs, err := m.QueryWhere(ctx, UsersCollection, "username", "ada")
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Data["id"] != "u1" {
		t.Fatalf("unexpected result: %v", docs)
	}
}

func TestSubscribeDocumentDeliversInitialAndChange(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	_ = m.BatchWrite(ctx, []WriteOp{
		{Kind: OpSet, Path: UserPath("u1"), Data: map[string]any{"id": "u1", "n": 1}},
	})

	sub, err := m.Subscribe(UserPath("u1"))
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Cancel()

	snap := recvSnapshot(t, sub)
	if !snap.Exists || snap.Docs[0].Data["n"] != float64(1) {
		t.Fatalf("bad initial snapshot: %+v", snap)
	}

	_ = m.BatchWrite(ctx, []WriteOp{
		{Kind: OpUpdate, Path: UserPath("u1"), Data: map[string]any{"n": 2}},
	})
	snap = recvSnapshot(t, sub)
	if snap.Docs[0].Data["n"] != float64(2) {
		t.Fatalf("change not delivered: %+v", snap)
	}
}

func TestSubscribeCollectionSeesMemberWrites(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	sub, err := m.Subscribe(FriendsPath("u1"))
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Cancel()

	snap := recvSnapshot(t, sub)
	if snap.Exists {
		t.Fatalf("expected empty initial snapshot, got %+v", snap)
	}

	_ = m.BatchWrite(ctx, []WriteOp{
		{Kind: OpSet, Path: FriendPath("u1", "u2"), Data: map[string]any{"id": "u2", "status": "waiting"}},
	})
	snap = recvSnapshot(t, sub)
	if len(snap.Docs) != 1 || snap.Docs[0].Data["status"] != "waiting" {
		t.Fatalf("collection change not delivered: %+v", snap)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	m := NewMemoryStore()
	sub, err := m.Subscribe(UserPath("u1"))
	if err != nil {
		t.Fatal(err)
	}
	sub.Cancel()
	sub.Cancel() // must not panic
}

func TestFailWithSurfacesEverywhere(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	m.FailWith(ErrUnavailable)

	if _, err := m.Get(ctx, UserPath("u1")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Get: %v", err)
	}
	err := m.BatchWrite(ctx, []WriteOp{{Kind: OpSet, Path: UserPath("u1"), Data: map[string]any{}}})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("BatchWrite: %v", err)
	}
}

func TestPathHelpers(t *testing.T) {
	if !IsCollection("users") || !IsCollection("users/u1/friends") {
		t.Fatal("collection paths misclassified")
	}
	if IsCollection("users/u1") || IsCollection("users/u1/friends/u2") {
		t.Fatal("document paths misclassified")
	}
	if Collection("users/u1/friends/u2") != "users/u1/friends" {
		t.Fatal("Collection broken")
	}
	if DocID("users/u1/friends/u2") != "u2" {
		t.Fatal("DocID broken")
	}
}

func recvSnapshot(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap := <-sub.C:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}
