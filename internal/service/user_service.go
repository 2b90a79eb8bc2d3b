package service

import (
	"context"
	"errors"
	"strings"

	"rentmimi/internal/database"
	"rentmimi/internal/models"

	"github.com/rs/zerolog"
)

type UserSvc struct {
	store  userStore
	admins map[string]struct{}
	logger *zerolog.Logger
}

type userStore interface {
	UserByPhone(ctx context.Context, phone string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
}

func NewUserService(store userStore, adminPhones []string, logger *zerolog.Logger) *UserSvc {
	admins := make(map[string]struct{}, len(adminPhones))
	for _, phone := range adminPhones {
		admins[strings.TrimSpace(phone)] = struct{}{}
	}
	return &UserSvc{store: store, admins: admins, logger: logger}
}

// Signup registers a phone as a client. Signing up again with the same
// phone refreshes the nickname and region but keeps accumulated roles.
func (s *UserSvc) Signup(ctx context.Context, phone, nickname, region string) (*models.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, database.ErrUserNotFound
	}

	user, err := s.store.UserByPhone(ctx, phone)
	if err != nil && !errors.Is(err, database.ErrUserNotFound) {
		return nil, err
	}
	if user == nil {
		user = &models.User{Phone: phone, Roles: []models.Role{models.RoleClient}}
	}
	user.Nickname = nickname
	user.Region = region
	if s.IsAdmin(phone) {
		user.GrantRole(models.RoleAdmin)
	}

	if err := s.store.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserSvc) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	user, err := s.store.UserByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if s.IsAdmin(phone) {
		user.GrantRole(models.RoleAdmin)
	}
	return user, nil
}

// IsAdmin checks the configured operator allowlist.
func (s *UserSvc) IsAdmin(phone string) bool {
	_, ok := s.admins[phone]
	return ok
}
