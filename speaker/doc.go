// Package speaker binds raw speaker labels to stable display identities.
//
// Core types:
//   - Profile: The (display name, avatar symbol, palette index) triple
//     bound to one raw speaker key
//   - Resolver: Per-session first-seen-permanent profile assignment
//
// Example usage:
//
//	r := speaker.NewResolver(42)
//	p, isNew := r.Resolve("Speaker A")
//	// Every later Resolve("Speaker A") returns the same profile.
package speaker
