package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/chrolluash/rentconnect/internal/repository"
	"github.com/chrolluash/rentconnect/internal/storage"
)

// ProfileService manages the account picture.
type ProfileService struct {
	users UserStore
	files Uploads
	log   logrus.FieldLogger
}

func NewProfileService(users UserStore, files Uploads, log logrus.FieldLogger) *ProfileService {
	return &ProfileService{users: users, files: files, log: log}
}

// UploadPicture stores u as the user's profile picture and removes the
// previous one.  It returns the stored relative path.
func (s *ProfileService) UploadPicture(ctx context.Context, userID uint64, u *storage.Upload) (string, error) {
	if u == nil {
		return "", Validation("No file uploaded or upload error occurred")
	}
	l := s.log.WithField("user_id", userID)

	batch := s.files.NewBatch()
	rel, err := batch.Stage(*u, storage.ProfilesDir, fmt.Sprintf("profile_%d_", userID))
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return "", Validation("Invalid file type. Only JPG, PNG, and GIF are allowed.")
	case errors.Is(err, storage.ErrTooLarge):
		return "", Validation("File is too large. Maximum size is 5MB.")
	case errors.Is(err, storage.ErrEmpty):
		return "", Validation("No file uploaded or upload error occurred")
	case err != nil:
		return "", Storage(err)
	}

	old, err := s.users.SetProfilePicture(ctx, userID, rel)
	if err != nil {
		batch.Discard()
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", Unauthorized("Please log in first")
		}
		return "", Internal(err)
	}
	if err := batch.Commit(); err != nil {
		l.WithError(err).Error("profile picture promotion failed after commit")
	}
	if old != nil && *old != rel {
		if err := s.files.Remove(*old); err != nil {
			l.WithError(err).WithField("path", *old).Warn("old profile picture not removed")
		}
	}
	l.WithField("path", rel).Info("profile picture updated")
	return rel, nil
}
