// Package secrets resolves credentials from Vault with an environment
// fallback.
package secrets

import (
	"context"
	"errors"
	"sync/atomic"

	"customer-feedback-hub/backend/pkg/logger"
)

// Keys looked up by the service
const (
	KeyDBPassword    = "db_password"
	KeyRedisPassword = "redis_password"
)

// ErrManagerNotInitialized is returned by GetSecret before Init
var ErrManagerNotInitialized = errors.New("secrets manager not initialized")

// Manager resolves named secrets
type Manager interface {
	GetSecret(ctx context.Context, key string) (string, error)
	GetSecretWithDefault(ctx context.Context, key, defaultValue string) string
}

type managerHolder struct{ Manager }

var current atomic.Pointer[managerHolder]

// Init installs a VaultManager built from cfg as the package default
func Init(cfg VaultConfig, log *logger.Logger) error {
	manager, err := NewVaultManager(cfg, log)
	if err != nil {
		return err
	}
	SetManager(manager)
	return nil
}

// SetManager replaces the package default; nil clears it
func SetManager(manager Manager) {
	if manager == nil {
		current.Store(nil)
		return
	}
	current.Store(&managerHolder{manager})
}

// GetSecret resolves key through the package default
func GetSecret(ctx context.Context, key string) (string, error) {
	h := current.Load()
	if h == nil {
		return "", ErrManagerNotInitialized
	}
	return h.GetSecret(ctx, key)
}

// GetSecretWithDefault resolves key, returning defaultValue when it is
// missing or no manager is installed
func GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	h := current.Load()
	if h == nil {
		return defaultValue
	}
	return h.GetSecretWithDefault(ctx, key, defaultValue)
}
