package wizard

import "errors"

// User-facing notices. Every failure collapses into one of these.
const (
	NoticeMissingInput   = "Please upload your LinkedIn PDF and paste the job description"
	NoticeTailorFailed   = "Failed to process application. Please try again."
	NoticeDownloadFailed = "Failed to download document"
	NoticeNoProfile      = "Please select your LinkedIn PDF first"
	NoticeInFlight       = "Your application is still being processed"
	NoticeTooLarge       = "Your LinkedIn PDF is too large to upload"
)

var (
	ErrNoProfile         = errors.New("no profile selected")
	ErrProfileTooLarge   = errors.New("profile exceeds upload limit")
	ErrMissingInput      = errors.New("profile and job description are required")
	ErrRequestInFlight   = errors.New("tailor request already in flight")
	ErrTailorFailed      = errors.New("tailor request failed")
	ErrDownloadFailed    = errors.New("download failed")
	ErrUnknownArtifact   = errors.New("unknown artifact kind")
	ErrInvalidTransition = errors.New("action not available in current step")
)

// Notice maps a controller error to the message shown to the visitor.
func Notice(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingInput):
		return NoticeMissingInput
	case errors.Is(err, ErrTailorFailed):
		return NoticeTailorFailed
	case errors.Is(err, ErrDownloadFailed), errors.Is(err, ErrUnknownArtifact):
		return NoticeDownloadFailed
	case errors.Is(err, ErrNoProfile):
		return NoticeNoProfile
	case errors.Is(err, ErrRequestInFlight):
		return NoticeInFlight
	case errors.Is(err, ErrProfileTooLarge):
		return NoticeTooLarge
	default:
		return "Something went wrong. Please try again."
	}
}
