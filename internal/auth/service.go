// Package auth implements worker credential issuance: password and
// badge+PIN login against the remote identity records, and the bearer
// tokens binding identity to device.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/flfwms/picking-api/internal/domain"
	"github.com/flfwms/picking-api/internal/repository"
)

// IdentityStore is the narrow view of the remote identity records the
// service depends on.
type IdentityStore interface {
	AuthenticateSession(ctx context.Context, login, password string) (int, error)
	UserByID(ctx context.Context, id int) (*domain.User, error)
	EmployeeByID(ctx context.Context, id int) (*domain.Employee, error)
	EmployeeByBadge(ctx context.Context, badge string) (*domain.Employee, error)
}

// Service authenticates workers in either entry mode.
type Service struct {
	identities IdentityStore
	logger     *slog.Logger
}

// NewService creates a new auth Service.
func NewService(identities IdentityStore, logger *slog.Logger) *Service {
	return &Service{
		identities: identities,
		logger:     logger,
	}
}

// PasswordLogin verifies login and password against the identity provider
// and returns the worker with localized display data attached.
func (s *Service) PasswordLogin(ctx context.Context, login, password string) (*domain.User, error) {
	uid, err := s.identities.AuthenticateSession(ctx, login, password)
	if err != nil {
		return nil, err
	}

	user, err := s.identities.UserByID(ctx, uid)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Active {
		return nil, domain.ErrArchived
	}

	if user.Language == "" {
		user.Language = domain.DefaultLanguage
	}

	// Employee data enriches the session but must not block login.
	if user.EmployeeID != 0 {
		employee, err := s.identities.EmployeeByID(ctx, user.EmployeeID)
		if err != nil {
			s.logger.Warn("employee lookup failed during login", "user_id", user.ID, "employee_id", user.EmployeeID, "error", err)
		} else {
			user.Employee = employee
			if employee.Language != "" {
				user.Language = employee.Language
			}
		}
	}

	s.logger.Info("worker signed in", "user_id", user.ID, "login", user.Login)

	return user, nil
}

// BadgeLogin authenticates a worker by badge barcode and PIN. The PIN is
// compared as plain text against the stored value.
func (s *Service) BadgeLogin(ctx context.Context, badge, pin string) (*domain.User, error) {
	employee, err := s.identities.EmployeeByBadge(ctx, badge)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			return nil, domain.ErrBadgeOrPin
		}
		return nil, err
	}

	if !employee.Active {
		return nil, domain.ErrArchived
	}

	if employee.PIN == "" || employee.PIN != pin {
		s.logger.Warn("badge login with wrong pin", "employee_id", employee.ID)
		return nil, domain.ErrBadgeOrPin
	}

	if employee.UserID == 0 {
		return nil, domain.ErrNoUserAccount
	}

	user, err := s.identities.UserByID(ctx, employee.UserID)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			return nil, domain.ErrArchived
		}
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrArchived
	}

	lang := employee.Language
	if lang == "" {
		lang = user.Language
	}
	if lang == "" {
		lang = domain.DefaultLanguage
	}

	s.logger.Info("worker signed in with badge", "user_id", employee.UserID, "employee_id", employee.ID)

	return &domain.User{
		ID:         employee.UserID,
		Name:       employee.Name,
		Active:     true,
		Language:   lang,
		EmployeeID: employee.ID,
		Employee:   employee,
	}, nil
}
