package license

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/nacl/secretbox"
)

var (
	ErrUnknownUser    = errors.New("unknown user")
	ErrUserExists     = errors.New("user already exists")
	ErrBadPassword    = errors.New("bad password")
	ErrLicenseExpired = errors.New("license expired")
	ErrNotAdmin       = errors.New("admin license required")
)

const (
	keyFileName   = "vault.key"
	vaultFileName = "credentials.enc"

	LicenseAdmin    = "admin"
	LicensePremium  = "premium"
	LicenseStandard = "standard"

	defaultLicenseDays = 90
)

type userRecord struct {
	PasswordHash []byte    `json:"password_hash"`
	LicenseType  string    `json:"license_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

type vaultData struct {
	Users map[string]*userRecord `json:"users"`
}

// Status is the outcome of a successful license check.
type Status struct {
	User        string
	LicenseType string
	ExpiresAt   time.Time
	DaysLeft    int
}

// Vault stores user credentials and license expiry in an encrypted
// file next to the database. The key lives in a separate 0600 file so
// copying the vault alone is useless.
type Vault struct {
	dir string
	key [32]byte
}

func OpenVault(dir string) (*Vault, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	v := &Vault{dir: dir}
	keyPath := filepath.Join(dir, keyFileName)
	raw, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		if len(raw) != 32 {
			return nil, fmt.Errorf("vault key corrupted: got %d bytes", len(raw))
		}
		copy(v.key[:], raw)
	case os.IsNotExist(err):
		if _, err := rand.Read(v.key[:]); err != nil {
			return nil, err
		}
		if err := os.WriteFile(keyPath, v.key[:], 0o600); err != nil {
			return nil, fmt.Errorf("write vault key: %w", err)
		}
	default:
		return nil, err
	}
	return v, nil
}

// Bootstrap creates the admin user on first run. When password is
// empty a random one is generated and returned; otherwise the returned
// string is empty. Existing installs are left untouched.
func (v *Vault) Bootstrap(password string) (string, error) {
	data, err := v.load()
	if err != nil {
		return "", err
	}
	if _, ok := data.Users["admin"]; ok {
		return "", nil
	}
	generated := ""
	if password == "" {
		buf := make([]byte, 9)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		generated = fmt.Sprintf("%x", buf)
		password = generated
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	data.Users["admin"] = &userRecord{
		PasswordHash: hash,
		LicenseType:  LicenseAdmin,
		ExpiresAt:    now.AddDate(0, 0, defaultLicenseDays),
		CreatedAt:    now,
	}
	if err := v.save(data); err != nil {
		return "", err
	}
	return generated, nil
}

// AddUser creates a user with the given license tier. Only admin
// accounts may create users.
func (v *Vault) AddUser(actor, user, password, licenseType string, days int) (*Status, error) {
	switch licenseType {
	case LicenseAdmin, LicensePremium, LicenseStandard:
	default:
		return nil, fmt.Errorf("unknown license type %q", licenseType)
	}
	if days <= 0 {
		days = defaultLicenseDays
	}
	data, err := v.load()
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(data, actor); err != nil {
		return nil, err
	}
	if _, ok := data.Users[user]; ok {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rec := &userRecord{
		PasswordHash: hash,
		LicenseType:  licenseType,
		ExpiresAt:    now.AddDate(0, 0, days),
		CreatedAt:    now,
	}
	data.Users[user] = rec
	if err := v.save(data); err != nil {
		return nil, err
	}
	return statusFor(user, rec, now), nil
}

// Check verifies credentials and license validity.
func (v *Vault) Check(user, password string) (*Status, error) {
	data, err := v.load()
	if err != nil {
		return nil, err
	}
	rec, ok := data.Users[user]
	if !ok {
		return nil, ErrUnknownUser
	}
	if err := bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)); err != nil {
		return nil, ErrBadPassword
	}
	now := time.Now().UTC()
	if now.After(rec.ExpiresAt) {
		return nil, ErrLicenseExpired
	}
	return statusFor(user, rec, now), nil
}

// Extend pushes the user's expiry forward, keeping the license tier.
// Only admin accounts may extend licenses.
func (v *Vault) Extend(actor, user string, days int) (*Status, error) {
	data, err := v.load()
	if err != nil {
		return nil, err
	}
	if err := requireAdmin(data, actor); err != nil {
		return nil, err
	}
	rec, ok := data.Users[user]
	if !ok {
		return nil, ErrUnknownUser
	}
	now := time.Now().UTC()
	base := rec.ExpiresAt
	if base.Before(now) {
		base = now
	}
	rec.ExpiresAt = base.AddDate(0, 0, days)
	if err := v.save(data); err != nil {
		return nil, err
	}
	return statusFor(user, rec, now), nil
}

func requireAdmin(data *vaultData, actor string) error {
	act, ok := data.Users[actor]
	if !ok {
		return ErrUnknownUser
	}
	if act.LicenseType != LicenseAdmin {
		return ErrNotAdmin
	}
	return nil
}

func statusFor(user string, rec *userRecord, now time.Time) *Status {
	return &Status{
		User:        user,
		LicenseType: rec.LicenseType,
		ExpiresAt:   rec.ExpiresAt,
		DaysLeft:    int(rec.ExpiresAt.Sub(now).Hours() / 24),
	}
}

// SetPassword replaces a user's password.
func (v *Vault) SetPassword(user, password string) error {
	data, err := v.load()
	if err != nil {
		return err
	}
	rec, ok := data.Users[user]
	if !ok {
		return ErrUnknownUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	rec.PasswordHash = hash
	return v.save(data)
}

func (v *Vault) load() (*vaultData, error) {
	raw, err := os.ReadFile(filepath.Join(v.dir, vaultFileName))
	if os.IsNotExist(err) {
		return &vaultData{Users: map[string]*userRecord{}}, nil
	}
	if err != nil {
		return nil, err
	}
	plain, err := open(v.key, raw)
	if err != nil {
		return nil, fmt.Errorf("decrypt vault: %w", err)
	}
	var data vaultData
	if err := json.Unmarshal(plain, &data); err != nil {
		return nil, fmt.Errorf("decode vault: %w", err)
	}
	if data.Users == nil {
		data.Users = map[string]*userRecord{}
	}
	return &data, nil
}

func (v *Vault) save(data *vaultData) error {
	plain, err := json.Marshal(data)
	if err != nil {
		return err
	}
	sealed, err := seal(v.key, plain)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(v.dir, vaultFileName), sealed, 0o600)
}

func seal(key [32]byte, plain []byte) ([]byte, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	return secretbox.Seal(nonce[:], plain, &nonce, &key), nil
}

func open(key [32]byte, sealed []byte) ([]byte, error) {
	if len(sealed) < 24 {
		return nil, errors.New("ciphertext too short")
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plain, ok := secretbox.Open(nil, sealed[24:], &nonce, &key)
	if !ok {
		return nil, errors.New("authentication failed")
	}
	return plain, nil
}
