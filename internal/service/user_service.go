package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pingup/backend/internal/models"
	"pingup/backend/internal/repository"
	"pingup/backend/pkg/logger"

	"golang.org/x/sync/singleflight"
)

var ErrUserNotFound = errors.New("user not found")

// provisionTimeout bounds one shared provisioning run
const provisionTimeout = 15 * time.Second

// ProfileProvider returns the canonical profile of an identity subject
type ProfileProvider interface {
	GetProfile(ctx context.Context, subject string) (models.Profile, error)
}

// UserService keeps a local record for every verified identity
type UserService struct {
	users    repository.UserRepository
	profiles ProfileProvider
	known    KnownUsers
	group    singleflight.Group
	log      *logger.Logger
}

func NewUserService(users repository.UserRepository, profiles ProfileProvider, known KnownUsers, log *logger.Logger) *UserService {
	if known == nil {
		known = noKnownUsers{}
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	return &UserService{
		users:    users,
		profiles: profiles,
		known:    known,
		log:      log,
	}
}

// EnsureUser makes sure a record exists for subject, creating it from the
// identity provider's profile when absent. Concurrent calls for the same
// subject share one lookup; concurrent creates across processes converge
// on a single record.
func (s *UserService) EnsureUser(ctx context.Context, subject string) error {
	if subject == "" {
		return ErrUserNotFound
	}
	if s.known.Known(ctx, subject) {
		return nil
	}

	// The shared provisioning outlives any single caller; each caller only
	// stops waiting when its own context ends.
	ch := s.group.DoChan(subject, func() (interface{}, error) {
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), provisionTimeout)
		defer cancel()
		return nil, s.provision(pctx, subject)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *UserService) provision(ctx context.Context, subject string) error {
	_, err := s.users.GetByID(ctx, subject)
	if err == nil {
		s.known.Remember(ctx, subject)
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("looking up user: %w", err)
	}

	profile, err := s.profiles.GetProfile(ctx, subject)
	if err != nil {
		return fmt.Errorf("fetching profile: %w", err)
	}

	user := models.NewUserFromProfile(subject, profile)
	if err := s.users.CreateIfAbsent(ctx, user); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	s.known.Remember(ctx, subject)
	s.log.Info("Provisioned user", "user_id", subject, "username", user.Username)
	return nil
}

// GetUser returns the local record of id
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
