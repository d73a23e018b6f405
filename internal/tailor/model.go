package tailor

import (
	"fmt"
	"io"
	"strings"
)

// Result is the decoded body of a successful tailor call.
type Result struct {
	MatchScore    int      `json:"match_score"`
	MissingSkills []string `json:"missing_skills"`
}

// ArtifactKind names a document the backend generated for the last tailor call.
type ArtifactKind string

const (
	ArtifactCV          ArtifactKind = "cv"
	ArtifactCoverLetter ArtifactKind = "cover_letter"
)

// Filename is the save-as name offered to the visitor.
func (k ArtifactKind) Filename() string {
	switch k {
	case ArtifactCV:
		return "tailored_cv.pdf"
	case ArtifactCoverLetter:
		return "cover_letter.pdf"
	default:
		return ""
	}
}

func (k ArtifactKind) Valid() bool {
	return k.Filename() != ""
}

// ParseArtifactKind accepts the path segment used by the download routes.
func ParseArtifactKind(raw string) (ArtifactKind, error) {
	kind := ArtifactKind(strings.ToLower(strings.TrimSpace(raw)))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownArtifact, raw)
	}
	return kind, nil
}

// Download is an artifact stream. Callers must close Body.
type Download struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	Filename      string
}
