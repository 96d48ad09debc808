package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vibe-gaming/auth-service/internal/domain"
	"github.com/vibe-gaming/auth-service/internal/repository"
	"github.com/vibe-gaming/auth-service/pkg/hash"

	"github.com/google/uuid"
)

type userService struct {
	userRepository repository.Users
	hasher         hash.PasswordHasher
}

func newUserService(userRepository repository.Users, hasher hash.PasswordHasher) *userService {
	return &userService{
		userRepository: userRepository,
		hasher:         hasher,
	}
}

func (s *userService) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepository.GetOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id failed: %w", err)
	}

	return user, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepository.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by username failed: %w", err)
	}

	return user, nil
}

// EnsureUser creates the user unless the username is already taken. It
// reports whether a user was created.
func (s *userService) EnsureUser(ctx context.Context, username, password string) (bool, error) {
	if _, err := s.GetByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash password failed: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("generate user id failed: %w", err)
	}

	err = s.userRepository.Create(ctx, &domain.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return false, nil
		}
		return false, fmt.Errorf("create user failed: %w", err)
	}

	return true, nil
}

// credentialVerifier checks a username and password against the stored
// bcrypt hash.
type credentialVerifier struct {
	userRepository repository.Users
	hasher         hash.PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

func newCredentialVerifier(userRepository repository.Users, hasher hash.PasswordHasher) *credentialVerifier {
	return &credentialVerifier{
		userRepository: userRepository,
		hasher:         hasher,
	}
}

func (v *credentialVerifier) Verify(ctx context.Context, username, password string) error {
	user, err := v.userRepository.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get user by username failed: %w", err)
		}
		// compare anyway so unknown usernames cost the same as wrong passwords
		_ = v.hasher.Compare(v.dummy(), password)
		return ErrInvalidCredentials
	}

	if err := v.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, hash.ErrMismatch) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("compare password failed: %w", err)
	}

	return nil
}

func (v *credentialVerifier) dummy() string {
	v.dummyOnce.Do(func() {
		v.dummyHash, _ = v.hasher.Hash("dummy-password")
	})

	return v.dummyHash
}
