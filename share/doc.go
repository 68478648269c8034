// Package share issues and validates signed read-only session links.
//
// Core types:
//   - Config: Signing secret, issuer, and token lifetime
//   - Claims: Share-token claims; Subject is the shared session ID
//
// Example usage:
//
//	cfg := share.Config{Secret: secret, Issuer: "voxlog"}
//	token, err := share.NewToken(cfg, sessionID)
//	link, err := share.Link("https://example.com/s", token)
//
//	// On the receiving side:
//	sessionID, err := share.Validate(cfg, token)
package share
