package speaker

import "math/rand"

// PaletteSize is the number of distinct avatar colors the presentation
// layer provides. Palette indices wrap modulo this value.
const PaletteSize = 8

// avatarSymbols is the fixed pool the resolver picks from. Symbols may
// repeat across speakers; only the (symbol, palette) pair varies.
var avatarSymbols = []string{
	"bear", "fox", "owl", "wolf", "hare",
	"lynx", "otter", "raven", "seal", "wren",
}

// Profile is the stable display identity bound to one raw speaker key
// for the lifetime of a session.
type Profile struct {
	DisplayName  string `json:"displayName"`
	AvatarSymbol string `json:"avatarSymbol"`
	PaletteIndex int    `json:"paletteIndex"`
}

// Resolver assigns avatar profiles to raw speaker keys within a single
// session. The first sighting of a key binds a profile permanently;
// every later sighting returns the same profile. Keys are never merged.
//
// Resolver is not safe for concurrent use; the owning store serializes
// access per session.
type Resolver struct {
	rng      *rand.Rand
	profiles map[string]Profile
	ordinal  int // monotonic per new speaker, never wraps
}

// NewResolver creates a resolver with a seeded random source so avatar
// selection is reproducible.
func NewResolver(seed int64) *Resolver {
	return NewResolverWithRand(rand.New(rand.NewSource(seed)))
}

// NewResolverWithRand creates a resolver using the given random source.
func NewResolverWithRand(rng *rand.Rand) *Resolver {
	return &Resolver{
		rng:      rng,
		profiles: make(map[string]Profile),
	}
}

// Restore rebuilds a resolver from previously persisted bindings, so a
// reloaded session keeps its assignments and continues the palette
// sequence where it left off.
func Restore(seed int64, profiles map[string]Profile) *Resolver {
	r := NewResolver(seed)
	for key, p := range profiles {
		r.profiles[key] = p
	}
	r.ordinal = len(profiles)
	return r
}

// Lookup returns the profile bound to key, if any.
func (r *Resolver) Lookup(key string) (Profile, bool) {
	p, ok := r.profiles[key]
	return p, ok
}

// Assign binds a new profile to key and returns it. The caller must
// ensure key is unbound; an existing binding is returned unchanged.
func (r *Resolver) Assign(key string) Profile {
	if p, ok := r.profiles[key]; ok {
		return p
	}

	p := Profile{
		DisplayName:  key,
		AvatarSymbol: avatarSymbols[r.rng.Intn(len(avatarSymbols))],
		PaletteIndex: r.ordinal % PaletteSize,
	}
	r.profiles[key] = p
	r.ordinal++
	return p
}

// Resolve returns the profile for key, assigning one on first sight.
// The second return reports whether a new binding was created.
func (r *Resolver) Resolve(key string) (Profile, bool) {
	if p, ok := r.profiles[key]; ok {
		return p, false
	}
	return r.Assign(key), true
}

// Remove unbinds key. Used by the store to roll back an assignment when
// the durable write of the triggering row fails.
func (r *Resolver) Remove(key string) {
	if _, ok := r.profiles[key]; !ok {
		return
	}
	delete(r.profiles, key)
	r.ordinal--
}

// Profiles returns a copy of all current bindings.
func (r *Resolver) Profiles() map[string]Profile {
	out := make(map[string]Profile, len(r.profiles))
	for k, v := range r.profiles {
		out[k] = v
	}
	return out
}

// Len returns the number of bound speakers.
func (r *Resolver) Len() int {
	return len(r.profiles)
}
