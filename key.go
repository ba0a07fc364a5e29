package ramclfus

import "github.com/avbelov/go-ramclfus/internal/key"

// Key is the 128-bit fingerprint objects are stored under.
type Key = key.Key

// KeyFromBytes derives a Key from arbitrary seed material, for callers
// that don't already compute their own 128-bit fingerprint.
func KeyFromBytes(data []byte) Key { return key.FromBytes(data) }
