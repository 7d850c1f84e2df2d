package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys. Keys embed a hash of every input that changes
// the cached bytes, so a change of input never returns stale output.
type Keyer interface {
	// LayoutKey identifies the JSON layout computed from a script.
	LayoutKey(scriptHash string) string
	// ArtifactKey identifies an artifact rendered from a DOT source.
	ArtifactKey(dotHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the options that affect a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces "layout:<sha>" and "artifact:<sha>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(scriptHash string) string {
	return hashKey("layout", scriptHash)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(dotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", dotHash, opts)
}

// hashKey returns prefix followed by ':' and the SHA-256 of the parts,
// each written as one line of JSON. The prefix is hashed too, so keys of
// different kinds never share a digest even when their parts agree.
//
// Parts are plain strings and option structs; neither can fail to encode.
func hashKey(prefix string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(prefix)
	for _, p := range parts {
		_ = enc.Encode(p)
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the SHA-256 of data as 64 hex characters. The pipeline
// hashes scripts and DOT sources with it before building keys.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
