package wizard

import "tailored-cv-web/internal/tailor"

// Step is the wizard screen the visitor is on.
type Step int

const (
	StepCollectProfile Step = iota + 1
	StepCollectJobDescription
	StepShowResults
)

func (s Step) String() string {
	switch s {
	case StepCollectProfile:
		return "collect_profile"
	case StepCollectJobDescription:
		return "collect_job_description"
	case StepShowResults:
		return "show_results"
	default:
		return "unknown"
	}
}

func (s Step) Valid() bool {
	return s >= StepCollectProfile && s <= StepShowResults
}

// ProfileFile points at the selected LinkedIn export held in the object store.
type ProfileFile struct {
	FileName   string `json:"fileName"`
	StorageKey string `json:"-"`
	SizeBytes  int64  `json:"sizeBytes"`
	MimeType   string `json:"mimeType"`
	PageCount  int    `json:"pageCount,omitempty"`
}

// State is a copy of the wizard as seen by one visitor.
type State struct {
	Step           Step           `json:"step"`
	Profile        *ProfileFile   `json:"profile"`
	JobDescription string         `json:"jobDescription"`
	Results        *tailor.Result `json:"results"`
	Loading        bool           `json:"loading"`
}
