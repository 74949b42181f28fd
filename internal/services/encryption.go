package services

import (
	"strings"

	"stresslens/internal/crypto"
	"stresslens/internal/models"
)

// UserVault seals user emails before they are stored. Without keys it stores
// emails as-is and uses the normalized email itself as the lookup index.
type UserVault struct {
	sealer *crypto.Sealer
}

// NewUserVault returns a pass-through vault when both keys are empty.
func NewUserVault(encryptionKey, blindIndexKey []byte) (*UserVault, error) {
	if len(encryptionKey) == 0 && len(blindIndexKey) == 0 {
		return &UserVault{}, nil
	}
	sealer, err := crypto.NewSealer(encryptionKey, blindIndexKey)
	if err != nil {
		return nil, err
	}
	return &UserVault{sealer: sealer}, nil
}

func (v *UserVault) Sealing() bool { return v.sealer != nil }

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailIndex is the value stored in email_blind_index for lookups.
func (v *UserVault) EmailIndex(email string) string {
	email = NormalizeEmail(email)
	if v.sealer == nil {
		return email
	}
	return v.sealer.BlindIndex(email)
}

// SealUser encrypts sensitive user fields in place before storing in DB.
func (v *UserVault) SealUser(u *models.User) error {
	u.Email = NormalizeEmail(u.Email)
	u.EmailBlindIndex = v.EmailIndex(u.Email)
	if v.sealer == nil {
		return nil
	}
	sealed, err := v.sealer.Seal(u.Email)
	if err != nil {
		return err
	}
	u.Email = sealed
	return nil
}

// OpenUser decrypts sensitive user fields in place after reading from DB.
func (v *UserVault) OpenUser(u *models.User) error {
	if v.sealer == nil {
		return nil
	}
	plain, err := v.sealer.Open(u.Email)
	if err != nil {
		return err
	}
	u.Email = plain
	return nil
}
