package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"tailored-cv-web/internal/shared/metrics"
	"tailored-cv-web/internal/shared/telemetry"
)

// Service is the session gate. Login is a placeholder: any non-empty email and
// password pair is accepted after a fixed delay and the password is discarded.
type Service struct {
	Store Store
	Delay time.Duration

	newID func() string
}

func NewService(store Store, delay time.Duration) *Service {
	return &Service{Store: store, Delay: delay}
}

// Login writes a marker for email under a fresh session id.
func (s *Service) Login(ctx context.Context, email, password string) (string, Marker, error) {
	if s == nil || s.Store == nil {
		return "", Marker{}, errors.New("session service not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", Marker{}, ErrInvalidInput
	}

	if err := wait(ctx, s.Delay); err != nil {
		return "", Marker{}, err
	}

	id := s.generateID()
	marker := Marker{Email: email}
	if err := s.Store.Set(ctx, id, marker); err != nil {
		return "", Marker{}, err
	}
	metrics.IncLogin()
	telemetry.Info("session.login", map[string]any{"session_id": id})
	return id, marker, nil
}

// Check reports whether id carries a marker. Absence is not an error.
func (s *Service) Check(ctx context.Context, id string) (Marker, bool, error) {
	if s == nil || s.Store == nil {
		return Marker{}, false, errors.New("session service not configured")
	}
	if strings.TrimSpace(id) == "" {
		return Marker{}, false, nil
	}
	marker, err := s.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Marker{}, false, nil
		}
		return Marker{}, false, err
	}
	return marker, true, nil
}

// Logout deletes the marker for id.
func (s *Service) Logout(ctx context.Context, id string) error {
	if s == nil || s.Store == nil {
		return errors.New("session service not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil
	}
	if err := s.Store.Clear(ctx, id); err != nil {
		return err
	}
	telemetry.Info("session.logout", map[string]any{"session_id": id})
	return nil
}

func (s *Service) generateID() string {
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
