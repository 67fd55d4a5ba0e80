package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
)

// CreateFollow subscribes userID to authorID. An existing pair is
// ErrConflict; the unique index decides races between concurrent requests.
func (s *Store) CreateFollow(ctx context.Context, userID, authorID uuid.UUID) (*models.Follow, error) {
	follow := &models.Follow{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(follow).Error; err != nil {
		return nil, translate(err)
	}
	return follow, nil
}

// DeleteFollow removes the pair, or returns ErrNotFound if it was absent.
func (s *Store) DeleteFollow(ctx context.Context, userID, authorID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FollowedAuthors reports which of authorIDs userID follows.
func (s *Store) FollowedAuthors(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return result, nil
	}

	var followed []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &followed).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, id := range followed {
		result[id] = true
	}
	return result, nil
}

// ListFollowedAuthors returns the authors userID follows, ordered by username.
func (s *Store) ListFollowedAuthors(ctx context.Context, userID uuid.UUID, page Page) ([]models.User, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var authors []models.User
	if err := page.apply(base.Order("users.username ASC")).Find(&authors).Error; err != nil {
		return nil, 0, translate(err)
	}
	return authors, total, nil
}
