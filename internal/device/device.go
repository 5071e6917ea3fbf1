// Package device resolves the identifier this terminal reports to the
// approval backend.
package device

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

const settingsKey = "device_id"

// Store persists a generated ID so it survives restarts.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Identity names the device in backend requests.
type Identity struct {
	ID   string
	Name string
}

// Manager handles device ID lookup and generation
type Manager struct {
	store          Store
	machineIDPaths []string
	hostname       func() (string, error)
}

func NewManager(store Store) *Manager {
	return &Manager{
		store:          store,
		machineIDPaths: []string{"/etc/machine-id", "/var/lib/dbus/machine-id"},
		hostname:       os.Hostname,
	}
}

// Resolve picks the configured ID, then a previously stored one, then the
// host machine-id, and finally generates a UUID and stores it. The name
// defaults to the hostname.
func (m *Manager) Resolve(ctx context.Context, configID, configName string) (Identity, error) {
	id, err := m.resolveID(ctx, strings.TrimSpace(configID))
	if err != nil {
		return Identity{}, err
	}

	name := strings.TrimSpace(configName)
	if name == "" {
		if host, err := m.hostname(); err == nil && host != "" {
			name = host
		} else {
			name = id
		}
	}
	return Identity{ID: id, Name: name}, nil
}

func (m *Manager) resolveID(ctx context.Context, configID string) (string, error) {
	if configID != "" {
		return configID, nil
	}

	stored, ok, err := m.store.Get(ctx, settingsKey)
	if err != nil {
		return "", fmt.Errorf("read stored device id: %w", err)
	}
	if ok && stored != "" {
		return stored, nil
	}

	id := m.machineID()
	if id == "" {
		id = uuid.New().String()
	}
	if err := m.store.Set(ctx, settingsKey, id); err != nil {
		return "", fmt.Errorf("store device id: %w", err)
	}
	return id, nil
}

func (m *Manager) machineID() string {
	for _, path := range m.machineIDPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	return ""
}
