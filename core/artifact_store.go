package core

// ArtifactStore persists binary artifacts (camera frames attached to a
// session) scoped by session identifier. Implementations must be safe for
// concurrent use.
type ArtifactStore interface {
	Save(sessionID, artifactID string, data []byte) error
	Get(sessionID, artifactID string) ([]byte, error)
	List(sessionID string) ([]string, error)
	Delete(sessionID, artifactID string) error
}

// ArtifactScheme prefixes artifact references stored in TaskState.ObjectImage.
const ArtifactScheme = "artifact://"

// ArtifactRef renders the reference stored in TaskState for an artifact id.
func ArtifactRef(id string) string { return ArtifactScheme + id }

// ParseArtifactRef extracts the artifact id from a reference. It reports false
// for values that are not artifact references (for example plain URLs).
func ParseArtifactRef(ref string) (string, bool) {
	if len(ref) <= len(ArtifactScheme) || ref[:len(ArtifactScheme)] != ArtifactScheme {
		return "", false
	}
	return ref[len(ArtifactScheme):], true
}
