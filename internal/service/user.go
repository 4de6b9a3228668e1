package service

import (
	"context"
	"strings"

	"grocery-mart/internal/auth"
	"grocery-mart/internal/models"
	"grocery-mart/internal/repository"
)

type UserService struct {
	users  repository.UserStore
	admins map[string]bool
}

func NewUserService(repos repository.Set, adminEmails []string) *UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &UserService{users: repos.Users, admins: admins}
}

// Resolve registra al usuario la primera vez que aparece y devuelve su sesión
func (s *UserService) Resolve(ctx context.Context, id *auth.Identity) (*models.Session, error) {
	if id == nil || id.UID == "" {
		return nil, ErrUnauthenticated
	}

	role := models.RoleUser
	listed := s.admins[strings.ToLower(id.Email)]
	if listed {
		role = models.RoleAdmin
	}

	user, err := s.users.EnsureUser(ctx, &models.User{ID: id.UID, Email: id.Email, Name: id.Name, Role: role})
	if err != nil {
		return nil, err
	}
	if listed && user.Role != models.RoleAdmin {
		if err := s.users.SetRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return nil, err
		}
		user.Role = models.RoleAdmin
	}

	return &models.Session{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

func (s *UserService) List(ctx context.Context, session *models.Session) ([]*models.User, error) {
	if err := requireAdmin(session); err != nil {
		return nil, err
	}
	return s.users.FindAll(ctx)
}

// SetRole cambia el rol de otro usuario; nadie puede cambiar el propio
func (s *UserService) SetRole(ctx context.Context, session *models.Session, userID, role string) error {
	if err := requireAdmin(session); err != nil {
		return err
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return &ValidationError{Field: "role", Message: "must be user or admin"}
	}
	if userID == session.UserID {
		return ErrForbidden
	}
	return s.users.SetRole(ctx, userID, role)
}
