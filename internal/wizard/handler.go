package wizard

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tailored-cv-web/internal/shared/server/middleware"
	"tailored-cv-web/internal/shared/server/respond"
	"tailored-cv-web/internal/tailor"
)

// ProfileField is the multipart field carrying the LinkedIn PDF, matching the
// field the backend expects.
const ProfileField = "linkedin_pdf"

const defaultMaxUpload = 10 << 20 // 10MB

// Handler exposes the wizard as JSON. Routes must sit behind RequireSession.
type Handler struct {
	Registry       *Registry
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(registry *Registry, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUpload
	}
	return &Handler{Registry: registry, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches wizard routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/wizard", h.state)
	rg.POST("/wizard/profile", h.selectProfile)
	rg.POST("/wizard/advance", h.advance)
	rg.POST("/wizard/back", h.back)
	rg.PUT("/wizard/job-description", h.setJobDescription)
	rg.POST("/wizard/tailor", h.tailor)
	rg.GET("/wizard/download/:kind", h.download)
	rg.POST("/wizard/restart", h.restart)
}

// ErrorStatus maps a controller error to an HTTP status and error code.
func ErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingInput), errors.Is(err, ErrNoProfile):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, ErrProfileTooLarge):
		return http.StatusRequestEntityTooLarge, "file_too_large"
	case errors.Is(err, ErrUnknownArtifact):
		return http.StatusNotFound, "unknown_artifact"
	case errors.Is(err, ErrRequestInFlight):
		return http.StatusConflict, "request_in_flight"
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, ErrTailorFailed):
		return http.StatusBadGateway, "tailor_failed"
	case errors.Is(err, ErrDownloadFailed):
		return http.StatusBadGateway, "download_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// UploadError classifies a failed read of the profile upload. Bodies cut off
// by the upload limit become ErrProfileTooLarge; anything else counts as no file.
func UploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit %d bytes", ErrProfileTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %w", ErrNoProfile, err)
}

func (h *Handler) controller(c *gin.Context) *Controller {
	return h.Registry.For(middleware.SessionIDFromContext(c))
}

func (h *Handler) reply(c *gin.Context, st State, err error) {
	c.Set(middleware.WizardStepKey, int(st.Step))
	if err != nil {
		status, code := ErrorStatus(err)
		respond.Error(c, status, code, Notice(err), gin.H{"state": st})
		return
	}
	respond.OK(c, st)
}

func (h *Handler) state(c *gin.Context) {
	h.reply(c, h.controller(c).Snapshot(), nil)
}

func (h *Handler) selectProfile(c *gin.Context) {
	ctrl := h.controller(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile(ProfileField)
	if err != nil {
		h.reply(c, ctrl.Snapshot(), UploadError(err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.reply(c, ctrl.Snapshot(), UploadError(err))
		return
	}
	defer file.Close()

	st, err := ctrl.SelectProfileFile(c.Request.Context(), fileHeader.Filename, file)
	h.reply(c, st, err)
}

func (h *Handler) advance(c *gin.Context) {
	st, err := h.controller(c).AdvanceFromProfile()
	h.reply(c, st, err)
}

func (h *Handler) back(c *gin.Context) {
	st, err := h.controller(c).Back()
	h.reply(c, st, err)
}

type jobDescriptionRequest struct {
	JobDescription string `json:"jobDescription"`
}

func (h *Handler) setJobDescription(c *gin.Context) {
	var req jobDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	st, err := h.controller(c).SetJobDescription(req.JobDescription)
	h.reply(c, st, err)
}

func (h *Handler) tailor(c *gin.Context) {
	st, err := h.controller(c).SubmitTailorRequest(c.Request.Context())
	h.reply(c, st, err)
}

func (h *Handler) download(c *gin.Context) {
	ctrl := h.controller(c)
	kind, err := tailor.ParseArtifactKind(c.Param("kind"))
	if err != nil {
		h.reply(c, ctrl.Snapshot(), ErrUnknownArtifact)
		return
	}
	dl, err := ctrl.DownloadArtifact(c.Request.Context(), kind)
	if err != nil {
		h.reply(c, ctrl.Snapshot(), err)
		return
	}
	defer dl.Body.Close()
	WriteDownload(c, dl)
}

func (h *Handler) restart(c *gin.Context) {
	h.reply(c, h.controller(c).Restart(), nil)
}

// WriteDownload streams an artifact as an attachment under its fixed name.
func WriteDownload(c *gin.Context, dl *tailor.Download) {
	length := dl.ContentLength
	if length < 0 {
		length = -1
	}
	c.DataFromReader(http.StatusOK, length, dl.ContentType, dl.Body, map[string]string{
		"Content-Disposition": `attachment; filename="` + dl.Filename + `"`,
	})
}
