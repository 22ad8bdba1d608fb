package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name in the OS keychain
	KeyringService = "colleagues"

	// KeyringAPITokenItem is the key for the analytics API token
	KeyringAPITokenItem = "api-token"
)

// KeyringManager handles secure credential storage in OS keychain
type KeyringManager struct {
	logger *logrus.Entry
}

// NewKeyringManager creates a new keyring manager
func NewKeyringManager(logger *logrus.Logger) *KeyringManager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &KeyringManager{
		logger: logger.WithField("component", "keyring"),
	}
}

// SetAPIToken stores the analytics API token in the OS keychain
func (km *KeyringManager) SetAPIToken(token string) error {
	if token == "" {
		return fmt.Errorf("api token cannot be empty")
	}

	if err := keyring.Set(KeyringService, KeyringAPITokenItem, token); err != nil {
		km.logger.WithError(err).Error("failed to save API token to keychain")
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}

	km.logger.WithField("service", KeyringService).Info("api token saved to keychain")
	return nil
}

// GetAPIToken retrieves the API token from OS keychain
func (km *KeyringManager) GetAPIToken() (string, error) {
	token, err := keyring.Get(KeyringService, KeyringAPITokenItem)
	if err == keyring.ErrNotFound {
		// Not an error - just not set yet
		return "", nil
	}
	if err != nil {
		km.logger.WithError(err).Error("failed to get API token from keychain")
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}

	km.logger.Debug("api token retrieved from keychain")
	return token, nil
}

// DeleteAPIToken removes the API token from OS keychain
func (km *KeyringManager) DeleteAPIToken() error {
	err := keyring.Delete(KeyringService, KeyringAPITokenItem)
	if err == keyring.ErrNotFound {
		// Already deleted, not an error
		return nil
	}
	if err != nil {
		km.logger.WithError(err).Error("failed to delete API token from keychain")
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}

	km.logger.Info("api token deleted from keychain")
	return nil
}

// IsAvailable checks if OS keychain is available
// Returns false on headless systems (CI/CD) where keychain isn't available
func (km *KeyringManager) IsAvailable() bool {
	_, err := keyring.Get(KeyringService, "test-availability")
	if err == nil || err == keyring.ErrNotFound {
		return true
	}
	km.logger.WithError(err).Debug("keychain not available")
	return false
}

// ResolveAPIToken picks the HTTP sink token: environment, then config file,
// then keychain.
func (km *KeyringManager) ResolveAPIToken(cfg *Config) (token, source string) {
	if t := os.Getenv("COLLEAGUES_API_TOKEN"); t != "" {
		return t, "env"
	}
	if cfg.Sink.HTTP.Token != "" {
		return cfg.Sink.HTTP.Token, "config"
	}
	if km.IsAvailable() {
		if t, err := km.GetAPIToken(); err == nil && t != "" {
			return t, "keychain"
		}
	}
	return "", "none"
}

// MaskToken masks a secret for display
func MaskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) < 12 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", token[:4], token[len(token)-4:])
}
