package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"tailored-cv-web/internal/pdfinfo"
	"tailored-cv-web/internal/shared/metrics"
	"tailored-cv-web/internal/shared/storage/object"
	"tailored-cv-web/internal/shared/telemetry"
	"tailored-cv-web/internal/tailor"
)

// Backend is the tailoring service as seen by the wizard.
type Backend interface {
	Tailor(ctx context.Context, fileName string, body io.Reader, jobDescription string) (tailor.Result, error)
	Download(ctx context.Context, kind tailor.ArtifactKind) (*tailor.Download, error)
}

// Inspector reports display details for a stored profile.
type Inspector func(ctx context.Context, store object.ObjectStore, storageKey string) (pdfinfo.Info, error)

// Controller owns the wizard for one session. All transitions go through its
// methods; callers only ever see copies of the state.
type Controller struct {
	sessionID string
	store     object.ObjectStore
	backend   Backend
	inspect   Inspector
	now       func() time.Time

	mu             sync.Mutex
	step           Step
	profile        *ProfileFile
	jobDescription string
	results        *tailor.Result
	loading        bool
	// calling stays set until the backend call returns, even after Restart.
	calling bool
	cancel  context.CancelFunc
	// generation changes on Restart so a reply to an abandoned request is dropped.
	generation uint64
}

func NewController(sessionID string, store object.ObjectStore, backend Backend) *Controller {
	return &Controller{
		sessionID: sessionID,
		store:     store,
		backend:   backend,
		inspect:   pdfinfo.Inspect,
		now:       time.Now,
		step:      StepCollectProfile,
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	st := State{
		Step:           c.step,
		JobDescription: c.jobDescription,
		Loading:        c.loading,
	}
	if c.profile != nil {
		p := *c.profile
		st.Profile = &p
	}
	if c.results != nil {
		r := tailor.Result{MatchScore: c.results.MatchScore}
		r.MissingSkills = append([]string{}, c.results.MissingSkills...)
		st.Results = &r
	}
	return st
}

// SelectProfileFile stores r as the visitor's profile, replacing any earlier
// selection. The file is not validated; the page count is for display only.
func (c *Controller) SelectProfileFile(ctx context.Context, fileName string, r io.Reader) (State, error) {
	c.mu.Lock()
	if c.step != StepCollectProfile {
		st := c.snapshotLocked()
		c.mu.Unlock()
		return st, ErrInvalidTransition
	}
	gen := c.generation
	c.mu.Unlock()

	key, size, mimeType, err := c.store.Save(ctx, c.sessionID, fileName, r)
	if err != nil {
		return c.Snapshot(), fmt.Errorf("store profile: %w", err)
	}
	selected := &ProfileFile{
		FileName:   fileName,
		StorageKey: key,
		SizeBytes:  size,
		MimeType:   mimeType,
	}
	if c.inspect != nil {
		if info, err := c.inspect(ctx, c.store, key); err == nil {
			selected.PageCount = info.Pages
		} else {
			telemetry.Warn("wizard.profile.inspect_failed", map[string]any{
				"session_id": c.sessionID,
				"error":      err.Error(),
			})
		}
	}

	c.mu.Lock()
	if c.step != StepCollectProfile || c.generation != gen {
		st := c.snapshotLocked()
		c.mu.Unlock()
		c.dropObject(key)
		return st, ErrInvalidTransition
	}
	previous := c.profile
	c.profile = selected
	st := c.snapshotLocked()
	c.mu.Unlock()

	if previous != nil && previous.StorageKey != key {
		c.dropObject(previous.StorageKey)
	}
	telemetry.Info("wizard.profile.selected", map[string]any{
		"session_id": c.sessionID,
		"size_bytes": size,
		"mime_type":  mimeType,
		"pages":      selected.PageCount,
	})
	return st, nil
}

// AdvanceFromProfile moves to the job description step once a profile exists.
// Without one it leaves the state untouched and reports ErrNoProfile.
func (c *Controller) AdvanceFromProfile() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step != StepCollectProfile {
		return c.snapshotLocked(), ErrInvalidTransition
	}
	if c.profile == nil {
		return c.snapshotLocked(), ErrNoProfile
	}
	c.step = StepCollectJobDescription
	return c.snapshotLocked(), nil
}

// Back returns from the job description step to the profile step. Both the
// profile and the typed description are kept.
func (c *Controller) Back() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return c.snapshotLocked(), ErrRequestInFlight
	}
	if c.step != StepCollectJobDescription {
		return c.snapshotLocked(), ErrInvalidTransition
	}
	c.step = StepCollectProfile
	return c.snapshotLocked(), nil
}

// SetJobDescription stores the raw text as typed.
func (c *Controller) SetJobDescription(text string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return c.snapshotLocked(), ErrRequestInFlight
	}
	if c.step != StepCollectJobDescription {
		return c.snapshotLocked(), ErrInvalidTransition
	}
	c.jobDescription = text
	return c.snapshotLocked(), nil
}

// SubmitTailorRequest sends the profile and job description to the backend
// exactly once. On failure the wizard stays on the job description step.
// Restart cancels the call; a new submit is refused until it has returned.
func (c *Controller) SubmitTailorRequest(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.loading || c.calling {
		st := c.snapshotLocked()
		c.mu.Unlock()
		return st, ErrRequestInFlight
	}
	if c.step != StepCollectJobDescription {
		st := c.snapshotLocked()
		c.mu.Unlock()
		return st, ErrInvalidTransition
	}
	if c.profile == nil || c.jobDescription == "" {
		st := c.snapshotLocked()
		c.mu.Unlock()
		return st, ErrMissingInput
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.loading = true
	c.calling = true
	c.cancel = cancel
	gen := c.generation
	profile := *c.profile
	jobDescription := c.jobDescription
	c.mu.Unlock()

	metrics.IncTailorStarted()
	start := c.now()
	result, err := c.callTailor(ctx, profile, jobDescription)
	metrics.ObserveTailorDurationMs(float64(c.now().Sub(start).Milliseconds()))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calling = false
	c.cancel = nil
	if c.generation != gen {
		// Restarted while waiting; the reply belongs to a wizard that no longer exists.
		return c.snapshotLocked(), ErrInvalidTransition
	}
	c.loading = false
	if err != nil {
		metrics.IncTailorFailed()
		telemetry.Error("wizard.tailor.failed", map[string]any{
			"session_id": c.sessionID,
			"error":      err.Error(),
		})
		return c.snapshotLocked(), fmt.Errorf("%w: %w", ErrTailorFailed, err)
	}
	metrics.IncTailorCompleted()
	c.results = &result
	c.step = StepShowResults
	telemetry.Info("wizard.tailor.completed", map[string]any{
		"session_id":     c.sessionID,
		"match_score":    result.MatchScore,
		"missing_skills": len(result.MissingSkills),
	})
	return c.snapshotLocked(), nil
}

func (c *Controller) callTailor(ctx context.Context, profile ProfileFile, jobDescription string) (tailor.Result, error) {
	body, err := c.store.Open(ctx, profile.StorageKey)
	if err != nil {
		return tailor.Result{}, fmt.Errorf("open profile: %w", err)
	}
	defer body.Close()
	return c.backend.Tailor(ctx, profile.FileName, body, jobDescription)
}

// DownloadArtifact fetches one generated document. It never changes the
// wizard state, so a failed download can simply be retried.
func (c *Controller) DownloadArtifact(ctx context.Context, kind tailor.ArtifactKind) (*tailor.Download, error) {
	if !kind.Valid() {
		return nil, ErrUnknownArtifact
	}
	dl, err := c.backend.Download(ctx, kind)
	if err != nil {
		metrics.IncDownloadFailed()
		telemetry.Error("wizard.download.failed", map[string]any{
			"session_id": c.sessionID,
			"kind":       string(kind),
			"error":      err.Error(),
		})
		if errors.Is(err, tailor.ErrUnknownArtifact) {
			return nil, ErrUnknownArtifact
		}
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	metrics.IncDownload()
	return dl, nil
}

// Restart resets the wizard to its initial state, whatever step it was on.
// An outstanding tailor request is cancelled.
func (c *Controller) Restart() State {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	previous := c.profile
	c.step = StepCollectProfile
	c.profile = nil
	c.jobDescription = ""
	c.results = nil
	c.loading = false
	c.generation++
	st := c.snapshotLocked()
	c.mu.Unlock()

	if previous != nil {
		c.dropObject(previous.StorageKey)
	}
	return st
}

// dropObject removes a stored profile. Failures only leave an orphaned file.
func (c *Controller) dropObject(key string) {
	if key == "" {
		return
	}
	if err := c.store.Delete(context.Background(), key); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("wizard.profile.delete_failed", map[string]any{
			"session_id": c.sessionID,
			"error":      err.Error(),
		})
	}
}
