package services

import (
	"context"
	"errors"
	"testing"

	"habitstracker/models"
	"habitstracker/store"
)

func TestModifyUserField(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewUserService(st, nil)
	seedUser(t, st, models.NewUser("u1", "u1@x.io"))

	if err := svc.ModifyUserField(context.Background(), "u1", "sex", "f"); err != nil {
		t.Fatal(err)
	}
	u, err := svc.GetUser(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if u.Sex != "f" {
		t.Errorf("sex = %q, want f", u.Sex)
	}
}

func TestModifyUserFieldMissingUser(t *testing.T) {
	svc := NewUserService(store.NewMemoryStore(), nil)
	err := svc.ModifyUserField(context.Background(), "ghost", "sex", "m")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetUsernameEnforcesUniqueness(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewUserService(st, nil)
	ctx := context.Background()

	seedUser(t, st, models.NewUser("u1", "u1@x.io"))
	seedUser(t, st, models.NewUser("u2", "u2@x.io"))

	if err := svc.SetUsername(ctx, "u1", "runner"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetUsername(ctx, "u2", "runner"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("duplicate username: %v, want ErrPreconditionFailed", err)
	}
	// Re-claiming your own username is fine.
	if err := svc.SetUsername(ctx, "u1", "runner"); err != nil {
		t.Fatal(err)
	}
}

func TestFindUserByEmail(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewUserService(st, nil)
	seedUser(t, st, models.NewUser("u1", "u1@x.io"))

	u, err := svc.FindUserByEmail(context.Background(), "u1@x.io")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != "u1" {
		t.Errorf("found %s", u.ID)
	}
	if _, err := svc.FindUserByEmail(context.Background(), "none@x.io"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAccountCascadesRelationships(t *testing.T) {
	st := store.NewMemoryStore()
	users := NewUserService(st, nil)
	friends := NewFriendService(st)
	ctx := context.Background()

	seedUser(t, st, models.NewUser("u1", "u1@x.io"))
	seedUser(t, st, models.NewUser("bob", "bob@x.io"))
	seedUser(t, st, models.NewUser("carol", "carol@x.io"))

	// One confirmed friend, one pending request.
	_ = friends.AddRequest(ctx, "u1", "bob")
	_ = friends.ConfirmFriend(ctx, "bob", "u1")
	_ = friends.AddRequest(ctx, "carol", "u1")

	if err := users.DeleteAccount(ctx, "u1"); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Get(ctx, store.UserPath("u1")); !errors.Is(err, store.ErrNotFound) {
		t.Error("user document survived deletion")
	}
	// Both sides of every relationship are gone, including the mirrors
	// stored under the other participants.
	for _, path := range []string{
		store.FriendPath("u1", "bob"),
		store.FriendPath("bob", "u1"),
		store.FriendPath("u1", "carol"),
		store.FriendPath("carol", "u1"),
	} {
		if _, err := st.Get(ctx, path); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("%s survived deletion", path)
		}
	}
	// Unrelated users untouched.
	if _, err := st.Get(ctx, store.UserPath("bob")); err != nil {
		t.Error("bystander document removed")
	}
}
