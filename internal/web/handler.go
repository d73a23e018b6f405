package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tailored-cv-web/internal/session"
	"tailored-cv-web/internal/shared/server/middleware"
	"tailored-cv-web/internal/shared/server/respond"
	"tailored-cv-web/internal/tailor"
	"tailored-cv-web/internal/wizard"
)

const (
	dashboardPath = "/dashboard"

	noticeCredentialsRequired = "Please enter your email and password"
	noticeAuthFailed          = "Authentication failed. Please try again."
	noticeRateLimited         = "Too many requests. Please wait a moment and try again."
)

// Handler serves the entry and dashboard pages. Every failure is answered by
// re-rendering the page with a notice.
type Handler struct {
	Sessions       *session.Service
	Wizards        *wizard.Registry
	CookieSecure   bool
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(sessions *session.Service, wizards *wizard.Registry, cookieSecure bool, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &Handler{
		Sessions:       sessions,
		Wizards:        wizards,
		CookieSecure:   cookieSecure,
		MaxUploadBytes: maxUploadBytes,
	}
}

// RegisterPublicRoutes attaches the entry page and the login/logout actions.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/", h.entry)
	rg.POST("/login", h.login)
	rg.POST("/logout", h.logout)
}

// RegisterDashboardRoutes attaches the wizard pages. The group must be gated
// by RequireSession in redirect mode.
func (h *Handler) RegisterDashboardRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.dashboard)
	rg.POST("/profile", h.selectProfile)
	rg.POST("/advance", h.advance)
	rg.POST("/back", h.back)
	rg.POST("/tailor", h.tailor)
	rg.GET("/download/:kind", h.download)
	rg.POST("/restart", h.restart)
}

func isSignUp(mode string) bool {
	return strings.EqualFold(strings.TrimSpace(mode), "signup")
}

func (h *Handler) entry(c *gin.Context) {
	render(c, http.StatusOK, entryPage(entryView{
		Title:  "Sign in",
		SignUp: isSignUp(c.Query("mode")),
	}))
}

func (h *Handler) login(c *gin.Context) {
	email := c.PostForm("email")
	signUp := isSignUp(c.PostForm("mode"))

	id, _, err := h.Sessions.Login(c.Request.Context(), email, c.PostForm("password"))
	if err != nil {
		status, notice := http.StatusInternalServerError, noticeAuthFailed
		if errors.Is(err, session.ErrInvalidInput) {
			status, notice = http.StatusBadRequest, noticeCredentialsRequired
		}
		respond.LogNotice(c, status, "login_failed", err.Error())
		render(c, status, entryPage(entryView{
			Title:  "Sign in",
			SignUp: signUp,
			Email:  email,
			Notice: notice,
		}))
		return
	}

	middleware.SetSessionCookie(c, id, h.CookieSecure)
	c.Redirect(http.StatusSeeOther, dashboardPath)
}

func (h *Handler) logout(c *gin.Context) {
	id := middleware.SessionIDFromCookie(c)
	if err := h.Sessions.Logout(c.Request.Context(), id); err != nil {
		respond.LogNotice(c, http.StatusInternalServerError, "logout_failed", err.Error())
	}
	if id != "" {
		h.Wizards.Drop(id)
	}
	middleware.ClearSessionCookie(c, h.CookieSecure)
	c.Redirect(http.StatusSeeOther, middleware.EntryPath)
}

func (h *Handler) controller(c *gin.Context) *wizard.Controller {
	return h.Wizards.For(middleware.SessionIDFromContext(c))
}

// show renders the dashboard for st, with a notice when err is set.
func (h *Handler) show(c *gin.Context, st wizard.State, err error) {
	c.Set(middleware.WizardStepKey, int(st.Step))
	status, notice := http.StatusOK, ""
	if err != nil {
		var code string
		status, code = wizard.ErrorStatus(err)
		notice = wizard.Notice(err)
		respond.LogNotice(c, status, code, err.Error())
	}
	render(c, status, dashboardPage(newDashboardView(middleware.SessionEmailFromContext(c), st, notice)))
}

// next answers a successful action with a redirect so a reload does not repeat it.
func (h *Handler) next(c *gin.Context, st wizard.State) {
	c.Set(middleware.WizardStepKey, int(st.Step))
	c.Redirect(http.StatusSeeOther, dashboardPath)
}

func (h *Handler) dashboard(c *gin.Context) {
	h.show(c, h.controller(c).Snapshot(), nil)
}

func (h *Handler) selectProfile(c *gin.Context) {
	ctrl := h.controller(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	fileHeader, err := c.FormFile(wizard.ProfileField)
	if err != nil {
		h.show(c, ctrl.Snapshot(), wizard.UploadError(err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.show(c, ctrl.Snapshot(), wizard.UploadError(err))
		return
	}
	defer file.Close()

	st, err := ctrl.SelectProfileFile(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		h.show(c, st, err)
		return
	}
	h.next(c, st)
}

func (h *Handler) advance(c *gin.Context) {
	st, err := h.controller(c).AdvanceFromProfile()
	if err != nil {
		h.show(c, st, err)
		return
	}
	h.next(c, st)
}

// back keeps whatever was typed in the textarea before leaving the step.
func (h *Handler) back(c *gin.Context) {
	ctrl := h.controller(c)
	if text, ok := c.GetPostForm("job_description"); ok {
		if st, err := ctrl.SetJobDescription(text); err != nil {
			h.show(c, st, err)
			return
		}
	}
	st, err := ctrl.Back()
	if err != nil {
		h.show(c, st, err)
		return
	}
	h.next(c, st)
}

func (h *Handler) tailor(c *gin.Context) {
	ctrl := h.controller(c)
	if text, ok := c.GetPostForm("job_description"); ok {
		if st, err := ctrl.SetJobDescription(text); err != nil {
			h.show(c, st, err)
			return
		}
	}
	st, err := ctrl.SubmitTailorRequest(c.Request.Context())
	if err != nil {
		h.show(c, st, err)
		return
	}
	h.next(c, st)
}

func (h *Handler) download(c *gin.Context) {
	ctrl := h.controller(c)
	kind, err := tailor.ParseArtifactKind(c.Param("kind"))
	if err != nil {
		h.show(c, ctrl.Snapshot(), wizard.ErrUnknownArtifact)
		return
	}
	dl, err := ctrl.DownloadArtifact(c.Request.Context(), kind)
	if err != nil {
		h.show(c, ctrl.Snapshot(), err)
		return
	}
	defer dl.Body.Close()
	wizard.WriteDownload(c, dl)
}

func (h *Handler) restart(c *gin.Context) {
	h.next(c, h.controller(c).Restart())
}

// RateLimited answers a throttled page post. Dashboard posts keep any typed
// job description; everything else falls back to the entry page.
func (h *Handler) RateLimited(c *gin.Context) {
	respond.LogNotice(c, http.StatusTooManyRequests, "rate_limited", c.Request.URL.Path)
	if id := middleware.SessionIDFromContext(c); id != "" && strings.HasPrefix(c.Request.URL.Path, dashboardPath) {
		ctrl := h.Wizards.For(id)
		st := ctrl.Snapshot()
		if text, ok := c.GetPostForm("job_description"); ok {
			if updated, err := ctrl.SetJobDescription(text); err == nil {
				st = updated
			}
		}
		c.Set(middleware.WizardStepKey, int(st.Step))
		render(c, http.StatusTooManyRequests, dashboardPage(newDashboardView(middleware.SessionEmailFromContext(c), st, noticeRateLimited)))
		return
	}
	render(c, http.StatusTooManyRequests, entryPage(entryView{
		Title:  "Sign in",
		SignUp: isSignUp(c.PostForm("mode")),
		Email:  c.PostForm("email"),
		Notice: noticeRateLimited,
	}))
}
