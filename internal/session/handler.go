package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tailored-cv-web/internal/shared/server/middleware"
	"tailored-cv-web/internal/shared/server/respond"
)

// Handler exposes the session gate as JSON for non-browser clients.
type Handler struct {
	Svc          *Service
	CookieSecure bool
	// OnLogout runs after the marker is cleared, e.g. to discard wizard state.
	OnLogout func(sessionID string)
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, cookieSecure bool, onLogout func(string)) *Handler {
	return &Handler{Svc: svc, CookieSecure: cookieSecure, OnLogout: onLogout}
}

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/session", h.login)
	rg.GET("/session", h.current)
	rg.DELETE("/session", h.logout)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Email string `json:"email"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	id, marker, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "email and password are required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Authentication failed. Please try again.", nil)
		}
		return
	}

	middleware.SetSessionCookie(c, id, h.CookieSecure)
	respond.JSON(c, http.StatusCreated, sessionResponse{Email: marker.Email})
}

func (h *Handler) current(c *gin.Context) {
	marker, ok, err := h.Svc.Check(c.Request.Context(), middleware.SessionIDFromCookie(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read session", nil)
		return
	}
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "login required", nil)
		return
	}
	respond.OK(c, sessionResponse{Email: marker.Email})
}

func (h *Handler) logout(c *gin.Context) {
	id := middleware.SessionIDFromCookie(c)
	if err := h.Svc.Logout(c.Request.Context(), id); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear session", nil)
		return
	}
	if id != "" && h.OnLogout != nil {
		h.OnLogout(id)
	}
	middleware.ClearSessionCookie(c, h.CookieSecure)
	respond.NoContent(c)
}
