package license

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/denisbrodbeck/machineid"
)

var (
	ErrNotActivated   = errors.New("installation not activated")
	ErrMachineChanged = errors.New("activation bound to a different machine")
	ErrBadCode        = errors.New("invalid activation code")
)

const (
	lockFileName = "machine.lock"
	appID        = "translationmdexe"
)

type lockData struct {
	MachineID   string    `json:"machine_id"`
	Code        string    `json:"code"`
	ActivatedAt time.Time `json:"activated_at"`
}

// MachineLock binds an activation to the host it was performed on.
// The lock file is sealed with the vault key, so moving the data
// directory to another machine invalidates it twice over.
type MachineLock struct {
	dir   string
	key   [32]byte
	codes map[string]bool
}

func NewMachineLock(v *Vault, codes []string) *MachineLock {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return &MachineLock{dir: v.dir, key: v.key, codes: set}
}

func machineID() (string, error) {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		return "", fmt.Errorf("read machine id: %w", err)
	}
	return id, nil
}

// Activate consumes a configured one-time code and writes the lock.
func (m *MachineLock) Activate(code string) error {
	if !m.codes[code] {
		return ErrBadCode
	}
	id, err := machineID()
	if err != nil {
		return err
	}
	plain, err := json.Marshal(lockData{
		MachineID:   id,
		Code:        code,
		ActivatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	sealed, err := seal(m.key, plain)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(m.dir, lockFileName), sealed, 0o600)
}

// Check verifies the lock exists and matches this machine.
func (m *MachineLock) Check() error {
	raw, err := os.ReadFile(filepath.Join(m.dir, lockFileName))
	if os.IsNotExist(err) {
		return ErrNotActivated
	}
	if err != nil {
		return err
	}
	plain, err := open(m.key, raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotActivated, err)
	}
	var data lockData
	if err := json.Unmarshal(plain, &data); err != nil {
		return fmt.Errorf("%w: %v", ErrNotActivated, err)
	}
	id, err := machineID()
	if err != nil {
		return err
	}
	if data.MachineID != id {
		return ErrMachineChanged
	}
	return nil
}
