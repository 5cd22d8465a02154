package avatars

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonboulle/clockwork"

	"github.com/platinummonkey/teamboard/pkg/auth"
	"github.com/platinummonkey/teamboard/pkg/observability"
)

// UserLookup resolves a NIP to a user; a missing user is storage.ErrNotFound
type UserLookup interface {
	GetUser(ctx context.Context, nip string) (*auth.PublicUser, error)
}

// Service manages user avatars
type Service struct {
	store  Store
	users  UserLookup
	clock  clockwork.Clock
	logger *observability.Logger
}

// NewService creates an avatar service
func NewService(store Store, users UserLookup, clock clockwork.Clock, logger *observability.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Service{store: store, users: users, clock: clock, logger: logger}
}

// Get returns the avatar of nip
func (s *Service) Get(ctx context.Context, nip string) (*Avatar, error) {
	avatar, err := s.store.Get(ctx, nip)
	if err != nil {
		return nil, fmt.Errorf("failed to get avatar for %s: %w", nip, err)
	}
	return avatar, nil
}

// Upload stores the first avatar for nip
func (s *Service) Upload(ctx context.Context, nip string, upload Upload) (*Avatar, error) {
	avatar, err := s.build(ctx, nip, upload)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, avatar); err != nil {
		return nil, fmt.Errorf("failed to store avatar for %s: %w", nip, err)
	}
	s.logger.WithFields(map[string]interface{}{"nip": nip, "filename": avatar.Filename}).Info("avatar uploaded")
	return avatar, nil
}

// Replace swaps an existing avatar for a new upload
func (s *Service) Replace(ctx context.Context, nip string, upload Upload) (*Avatar, error) {
	avatar, err := s.build(ctx, nip, upload)
	if err != nil {
		return nil, err
	}
	if err := s.store.Replace(ctx, avatar); err != nil {
		return nil, fmt.Errorf("failed to replace avatar for %s: %w", nip, err)
	}
	s.logger.WithFields(map[string]interface{}{"nip": nip, "filename": avatar.Filename}).Info("avatar replaced")
	return avatar, nil
}

// Delete removes nip's avatar
func (s *Service) Delete(ctx context.Context, nip string) error {
	if err := s.store.Delete(ctx, nip); err != nil {
		return fmt.Errorf("failed to delete avatar for %s: %w", nip, err)
	}
	s.logger.WithField("nip", nip).Info("avatar deleted")
	return nil
}

func (s *Service) build(ctx context.Context, nip string, upload Upload) (*Avatar, error) {
	if len(upload.Content) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}
	if len(upload.Content) > MaxSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, MaxSize)
	}

	mimeType := upload.MimeType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(upload.Content).String()
	}
	mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%w: %s is not an image", ErrInvalidUpload, mimeType)
	}

	if _, err := s.users.GetUser(ctx, nip); err != nil {
		return nil, err
	}

	name := filepath.Base(strings.ReplaceAll(upload.Filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "avatar"
	}

	now := s.clock.Now()
	return &Avatar{
		UserNIP:   nip,
		Filename:  strconv.FormatInt(now.UnixMilli(), 10) + "_" + name,
		MimeType:  mimeType,
		Data:      EncodeDataURI(mimeType, upload.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
