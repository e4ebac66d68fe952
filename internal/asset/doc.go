// Package asset implements the content-addressed audio cache behind card
// sound references.
//
// An asset is named by the SHA-256 of its text, language code and voice
// gender, so identical requests share one artifact. Artifacts are never owned
// by a single card: Release deletes one only when no card lists its reference
// anymore. Every operation on a given hash is serialized by a per-hash lock,
// which closes the window where a concurrent Bind could rely on an artifact a
// concurrent Release is about to delete.
package asset
