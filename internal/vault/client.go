// Package vault loads the tracker's application secrets from HashiCorp
// Vault, with a config-file fallback for development setups.
package vault

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/vault/api"

	"arbitrage-shift-tracker/config"
	"arbitrage-shift-tracker/internal/logging"
)

// AppSecrets holds the secrets the tracker needs at startup
type AppSecrets struct {
	JWTSecret   string `json:"jwt_secret"`
	AdminSecret string `json:"admin_secret"`
}

// Client wraps the HashiCorp Vault client
type Client struct {
	client *api.Client
	config config.VaultConfig
	log    *logging.Logger

	mu     sync.RWMutex
	cached *AppSecrets
}

// NewClient creates a new Vault client. When Vault is disabled the client
// serves secrets straight from the local configuration.
func NewClient(cfg config.VaultConfig) (*Client, error) {
	c := &Client{
		config: cfg,
		log:    logging.WithComponent("vault"),
	}
	if !cfg.Enabled {
		return c, nil
	}

	vaultConfig := api.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSEnabled && cfg.CACert != "" {
		tlsConfig := &api.TLSConfig{CACert: cfg.CACert}
		if err := vaultConfig.ConfigureTLS(tlsConfig); err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	c.client = client
	return c, nil
}

// LoadAppSecrets reads the tracker secrets. fallback carries the values from
// the local configuration, used when Vault is disabled or a field is absent
// from the stored secret.
func (c *Client) LoadAppSecrets(ctx context.Context, fallback AppSecrets) (*AppSecrets, error) {
	if !c.config.Enabled {
		return &fallback, nil
	}

	c.mu.RLock()
	if c.cached != nil {
		cached := *c.cached
		c.mu.RUnlock()
		return &cached, nil
	}
	c.mu.RUnlock()

	path := fmt.Sprintf("%s/data/%s", c.config.MountPath, c.config.SecretPath)
	secret, err := c.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets from vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no secret at vault path %s", path)
	}

	// KV v2 nests the payload under "data"
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected secret format at vault path %s", path)
	}

	secrets := fallback
	if v, ok := data["jwt_secret"].(string); ok && v != "" {
		secrets.JWTSecret = v
	}
	if v, ok := data["admin_secret"].(string); ok && v != "" {
		secrets.AdminSecret = v
	}

	c.mu.Lock()
	c.cached = &secrets
	c.mu.Unlock()

	c.log.Info("application secrets loaded from Vault", "path", path)
	return &secrets, nil
}

// StoreAppSecrets writes the tracker secrets, used by provisioning tooling
func (c *Client) StoreAppSecrets(ctx context.Context, secrets AppSecrets) error {
	if !c.config.Enabled {
		return fmt.Errorf("vault is not enabled")
	}

	path := fmt.Sprintf("%s/data/%s", c.config.MountPath, c.config.SecretPath)
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"jwt_secret":   secrets.JWTSecret,
			"admin_secret": secrets.AdminSecret,
		},
	}

	if _, err := c.client.Logical().WriteWithContext(ctx, path, payload); err != nil {
		return fmt.Errorf("failed to store secrets in vault: %w", err)
	}

	c.mu.Lock()
	c.cached = &secrets
	c.mu.Unlock()
	return nil
}
