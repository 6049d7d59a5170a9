package services

import (
	"context"
	"errors"
	"fmt"

	"habitstracker/models"
	"habitstracker/store"
	"habitstracker/utils"

	"gorm.io/gorm"
)

// UserService reads and mutates user documents and runs the account
// deletion cascade.
type UserService struct {
	store store.Store
	db    *gorm.DB
}

func NewUserService(st store.Store, db *gorm.DB) *UserService {
	return &UserService{store: st, db: db}
}

func (u *UserService) GetUser(ctx context.Context, uid string) (*models.User, error) {
	doc, err := u.store.Get(ctx, store.UserPath(uid))
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := store.Decode(doc, &user); err != nil {
		return nil, err
	}
	user.EnsureWindow()
	return &user, nil
}

func (u *UserService) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := u.store.QueryWhere(ctx, store.UsersCollection, "email", email)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: email %s", store.ErrNotFound, email)
	}
	var user models.User
	if err := store.Decode(docs[0], &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ModifyUserField updates a single named field on the user document.
func (u *UserService) ModifyUserField(ctx context.Context, uid, field string, value any) error {
	return u.store.BatchWrite(ctx, []store.WriteOp{{
		Kind: store.OpUpdate,
		Path: store.UserPath(uid),
		Data: map[string]any{field: value},
	}})
}

// SetUsername claims a display username. Usernames are unique across
// all users once set.
func (u *UserService) SetUsername(ctx context.Context, uid, username string) error {
	docs, err := u.store.QueryWhere(ctx, store.UsersCollection, "username", username)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if store.DocID(doc.Path) != uid {
			return fmt.Errorf("%w: username %q already taken", ErrPreconditionFailed, username)
		}
	}
	return u.ModifyUserField(ctx, uid, "username", username)
}

// SetProfilePicture uploads the image and stores its URL on the user.
func (u *UserService) SetProfilePicture(ctx context.Context, uid, base64Image string) (string, error) {
	url, err := utils.UploadBase64ImageToS3(base64Image, uid)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if err := u.ModifyUserField(ctx, uid, "picture", url); err != nil {
		return "", err
	}
	return url, nil
}

// DeleteAccount removes the user document, both sides of every
// relationship record, and the credential and device rows. One logical
// operation: the document batch is atomic, the relational cleanup and
// identity removal follow it and are retried by the caller on failure.
func (u *UserService) DeleteAccount(ctx context.Context, uid string) error {
	friends, err := u.store.List(ctx, store.FriendsPath(uid))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	ops := []store.WriteOp{{Kind: store.OpDelete, Path: store.UserPath(uid)}}
	for _, doc := range friends {
		fid := store.DocID(doc.Path)
		ops = append(ops,
			store.WriteOp{Kind: store.OpDelete, Path: store.FriendPath(uid, fid)},
			store.WriteOp{Kind: store.OpDelete, Path: store.FriendPath(fid, uid)},
		)
	}
	if err := u.store.BatchWrite(ctx, ops); err != nil {
		return err
	}

	if u.db != nil {
		if err := u.db.Where("user_id = ?", uid).Delete(&models.Credential{}).Error; err != nil {
			return err
		}
		if err := u.db.Where("user_id = ?", uid).Delete(&models.UserDevice{}).Error; err != nil {
			return err
		}
	}
	return nil
}
