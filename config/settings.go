package config

import (
	"fmt"
	"strconv"
)

// Settings is the typed view of the resolved configuration.
type Settings struct {
	// DataDir is the base directory for session storage.
	DataDir string

	// Store selects the storage backend: "file" or "sqlite".
	Store string

	// AvatarSeed seeds avatar assignment. Zero means time-based.
	AvatarSeed int64

	// DefaultTitle is used for sessions created without a title.
	DefaultTitle string

	// WebhookURL, when set, receives store event notifications.
	WebhookURL string

	// ShareIssuer is the issuer claim for share tokens.
	ShareIssuer string
}

// Settings converts the resolved configuration into a Settings struct.
func (c *Resolved) Settings() (Settings, error) {
	s := Settings{
		DataDir:      c.Get(KeyDataDir),
		Store:        c.Get(KeyStore),
		DefaultTitle: c.Get(KeyDefaultTitle),
		WebhookURL:   c.Get(KeyWebhookURL),
		ShareIssuer:  c.Get(KeyShareIssuer),
	}

	if raw := c.Get(KeyAvatarSeed); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid %s %q: %w", KeyAvatarSeed, raw, err)
		}
		s.AvatarSeed = seed
	}

	switch s.Store {
	case "", "file", "sqlite":
	default:
		return Settings{}, fmt.Errorf("unknown %s %q (want \"file\" or \"sqlite\")", KeyStore, s.Store)
	}

	return s, nil
}
