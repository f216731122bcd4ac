package config

import "fmt"

// APIConfig configures the HTTP query API started by the serve command.
type APIConfig struct {
	ListenAddr string `json:"listen_addr"`
	// Token, when set, must be sent as "Authorization: Bearer <token>".
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
}

// Validate checks mandatory fields.
func (c APIConfig) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	return nil
}
