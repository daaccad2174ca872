package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/outfit-advisor/internal/logger"
	"github.com/spigell/outfit-advisor/internal/outfit"
)

// CreateProfile creates the profile of userID from the authenticated user in
// ctx. It reports false when the profile already exists.
func (s *Store) CreateProfile(ctx context.Context, userID string) (bool, error) {
	log := logger.WithUser(s.logger, userID)

	var existing outfit.Profile
	err := s.client.From(tableProfile).Select("*").Eq("user_id", userID).Single().Get(ctx, &existing)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, ErrNotFound):
		return false, s.fail(tableProfile, "error checking profile", err, zap.String(logger.FieldUserID, userID))
	}

	user, err := s.client.Auth.GetUser(ctx)
	if err != nil {
		return false, s.fail(tableProfile, "failed to retrieve authenticated user", err, zap.String(logger.FieldUserID, userID))
	}

	profile := map[string]any{
		"user_id":    userID,
		"username":   user.Username(),
		"avatar_url": user.AvatarURL(),
	}
	if err := s.client.From(tableProfile).Insert(ctx, profile, nil); err != nil {
		return false, s.fail(tableProfile, "error inserting profile", err, zap.String(logger.FieldUserID, userID))
	}

	log.Info("profile created", zap.String("username", user.Username()))

	return true, nil
}

func (s *Store) GetProfileByUserID(ctx context.Context, userID string) (*outfit.Profile, error) {
	var profiles []outfit.Profile
	if err := s.client.From(tableProfile).Select("*").Eq("user_id", userID).Get(ctx, &profiles); err != nil {
		return nil, s.fail(tableProfile, "error fetching profile", err, zap.String(logger.FieldUserID, userID))
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("profile of user %s: %w", userID, ErrNotFound)
	}
	return &profiles[0], nil
}

// UpdateProfile changes the non-empty fields of the authenticated user's
// profile. It reports false when there was nothing to change.
func (s *Store) UpdateProfile(ctx context.Context, username, avatarURL string) (bool, error) {
	user, err := s.client.Auth.GetUser(ctx)
	if err != nil {
		return false, s.fail(tableProfile, "failed to retrieve authenticated user", err)
	}
	log := logger.WithUser(s.logger, user.ID)

	updates := map[string]any{}
	if username != "" {
		updates["username"] = username
	}
	if avatarURL != "" {
		updates["avatar_url"] = avatarURL
	}
	if len(updates) == 0 {
		log.Info("no profile fields to update")
		return false, nil
	}

	if err := s.client.From(tableProfile).Eq("user_id", user.ID).Update(ctx, updates, nil); err != nil {
		return false, s.fail(tableProfile, "error updating profile", err, zap.String(logger.FieldUserID, user.ID))
	}

	log.Info("profile updated")

	return true, nil
}

// GetPreviewsByUserID lists the user's recommendations, newest first, with the
// image of each upload.
func (s *Store) GetPreviewsByUserID(ctx context.Context, userID string) ([]outfit.RecommendationPreview, error) {
	var previews []outfit.RecommendationPreview
	err := s.client.From(tableRecommendation).
		Select("*,upload(image_url)").
		Eq("user_id", userID).
		Order("created_at", false).
		Get(ctx, &previews)
	if err != nil {
		return nil, s.fail(tableRecommendation, "error fetching previews", err, zap.String(logger.FieldUserID, userID))
	}
	return nonNil(previews), nil
}

// SignOut ends the session carried by ctx.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.client.Auth.SignOut(ctx); err != nil {
		s.logger.Error("error signing out", zap.Error(err))
		return err
	}
	return nil
}
