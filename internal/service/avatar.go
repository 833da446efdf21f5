package service

import (
	"context"
	"errors"

	"github.com/taskit/taskit-go/internal/imaging"
	"github.com/taskit/taskit-go/internal/repository"
)

var ErrNoAvatar = errors.New("no avatar set")

// UploadAvatar normalizes raw upload bytes and stores them as the user's
// avatar. The stored blob is always a square PNG regardless of the upload
// format.
func (s *AuthService) UploadAvatar(ctx context.Context, userID int64, filename string, data []byte) error {
	if !imaging.AcceptableName(filename) {
		return imaging.ErrBadFormat
	}

	normalized, err := imaging.Normalize(data)
	if err != nil {
		return err
	}

	return s.users.SetAvatar(ctx, userID, normalized)
}

// GetAvatar returns the stored avatar PNG for any user. This is a public
// read; no ownership applies.
func (s *AuthService) GetAvatar(ctx context.Context, userID int64) ([]byte, error) {
	avatar, err := s.users.GetAvatar(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrNoAvatar):
			return nil, ErrNoAvatar
		}
		return nil, err
	}
	return avatar, nil
}

// DeleteAvatar clears the user's avatar. Fails when none is set.
func (s *AuthService) DeleteAvatar(ctx context.Context, userID int64) error {
	if _, err := s.users.GetAvatar(ctx, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return ErrUserNotFound
		case errors.Is(err, repository.ErrNoAvatar):
			return ErrNoAvatar
		}
		return err
	}

	return s.users.SetAvatar(ctx, userID, nil)
}
