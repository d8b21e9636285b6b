// Package ports declares the interfaces the prediction core depends on.
package ports

// ArtifactStore returns the raw bytes of a named artifact ("heart",
// "heart_features", "heart_scaler"). Implementations must be safe for
// concurrent use.
type ArtifactStore interface {
	Open(name string) ([]byte, error)
}
