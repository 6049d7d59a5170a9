package services

import (
	"context"
	"errors"
	"fmt"

	"habitstracker/models"
	"habitstracker/store"
	"habitstracker/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService is the local identity provider: it creates accounts and
// issues tokens. The engine itself only ever sees the resulting user id.
type AuthService struct {
	store store.Store
	db    *gorm.DB
}

func NewAuthService(st store.Store, db *gorm.DB) *AuthService {
	return &AuthService{store: st, db: db}
}

// Register creates the credential row and the user document with a
// zeroed score window.
func (a *AuthService) Register(ctx context.Context, email, password string) (string, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return "", err
	}

	uid := uuid.NewString()
	cred := models.Credential{UserID: uid, Email: email, Password: hashed}
	if err := a.db.Create(&cred).Error; err != nil {
		return "", fmt.Errorf("email already registered or unavailable: %w", err)
	}

	data, err := store.Encode(models.NewUser(uid, email))
	if err != nil {
		return "", err
	}
	err = a.store.BatchWrite(ctx, []store.WriteOp{{
		Kind: store.OpSet,
		Path: store.UserPath(uid),
		Data: data,
	}})
	if err != nil {
		// Unwind the credential so a retry can succeed.
		_ = a.db.Delete(&cred).Error
		return "", err
	}
	return uid, nil
}

// Authenticate checks credentials and returns a signed token.
func (a *AuthService) Authenticate(email, password string) (string, error) {
	var cred models.Credential
	result := a.db.Where("email = ? AND disabled = ?", email, false).First(&cred)
	if result.Error != nil {
		return "", errors.New("user not found or disabled")
	}
	if !utils.CheckPasswordHash(password, cred.Password) {
		return "", errors.New("incorrect password")
	}
	return utils.GenerateJWT(cred.UserID, cred.Email)
}
