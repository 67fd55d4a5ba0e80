package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/store"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const avatarPrefix = "avatars"

// UserService serves profiles, avatars and subscriptions.
type UserService struct {
	users   store.UserStore
	follows store.FollowStore
	recipes store.RecipeStore
	media   storage.Storage
}

func NewUserService(users store.UserStore, follows store.FollowStore, recipes store.RecipeStore, media storage.Storage) *UserService {
	return &UserService{users: users, follows: follows, recipes: recipes, media: media}
}

// ListUsers returns one page of users as seen by viewer. viewer is uuid.Nil
// for anonymous requests.
func (s *UserService) ListUsers(ctx context.Context, viewer uuid.UUID, page store.Page) ([]types.UserResponse, int64, error) {
	users, total, err := s.users.ListUsers(ctx, page)
	if err != nil {
		return nil, 0, err
	}

	followed, err := s.followedBy(ctx, viewer, users)
	if err != nil {
		return nil, 0, err
	}

	out := make([]types.UserResponse, len(users))
	for i := range users {
		out[i] = presentUser(s.media, &users[i], followed[users[i].ID])
	}
	return out, total, nil
}

func (s *UserService) GetUser(ctx context.Context, viewer, id uuid.UUID) (*types.UserResponse, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, fromStore(err, "User not found.", "")
	}
	followed, err := s.followedBy(ctx, viewer, []models.User{*user})
	if err != nil {
		return nil, err
	}
	resp := presentUser(s.media, user, followed[user.ID])
	return &resp, nil
}

func (s *UserService) followedBy(ctx context.Context, viewer uuid.UUID, users []models.User) (map[uuid.UUID]bool, error) {
	if viewer == uuid.Nil || len(users) == 0 {
		return map[uuid.UUID]bool{}, nil
	}
	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	return s.follows.FollowedAuthors(ctx, viewer, ids)
}

// SetAvatar stores img as the user's avatar and drops the previous one.
func (s *UserService) SetAvatar(ctx context.Context, userID uuid.UUID, img *storage.Image) (*types.AvatarResponse, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fromStore(err, "User not found.", "")
	}

	key, err := storage.Put(ctx, s.media, avatarPrefix, img)
	if err != nil {
		return nil, err
	}
	previous := user.Avatar
	user.Avatar = key
	if err := s.users.UpdateUser(ctx, user); err != nil {
		discardImage(ctx, s.media, key)
		return nil, fromStore(err, "User not found.", "")
	}
	discardImage(ctx, s.media, previous)

	logging.Ctx(ctx).Debug().Str("user_id", userID.String()).Str("key", key).Msg("avatar updated")
	return &types.AvatarResponse{Avatar: s.media.URL(key)}, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return fromStore(err, "User not found.", "")
	}
	if user.Avatar == "" {
		return newError(ErrRelationAbsent, "Avatar is already absent.")
	}

	previous := user.Avatar
	user.Avatar = ""
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fromStore(err, "User not found.", "")
	}
	discardImage(ctx, s.media, previous)
	return nil
}

// Subscribe makes userID follow authorID. recipesLimit bounds the recipe
// preview in the response; store.NoLimit means no bound.
func (s *UserService) Subscribe(ctx context.Context, userID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	author, err := s.users.GetUser(ctx, authorID)
	if err != nil {
		return nil, fromStore(err, "User not found.", "")
	}
	if userID == authorID {
		return nil, validation.Errors{validation.NonFieldErrors: {"You cannot subscribe to yourself."}}
	}
	if _, err := s.follows.CreateFollow(ctx, userID, authorID); err != nil {
		return nil, fromStore(err, "User not found.", "You are already subscribed to this user.")
	}

	subs, err := s.subscriptions(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	if _, err := s.users.GetUser(ctx, authorID); err != nil {
		return fromStore(err, "User not found.", "")
	}
	err := s.follows.DeleteFollow(ctx, userID, authorID)
	if errors.Is(err, store.ErrNotFound) {
		return newError(ErrRelationAbsent, "You are not subscribed to this user.")
	}
	return err
}

// Subscriptions lists the authors userID follows, ordered by username.
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, page store.Page, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	authors, total, err := s.follows.ListFollowedAuthors(ctx, userID, page)
	if err != nil {
		return nil, 0, err
	}
	subs, err := s.subscriptions(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func (s *UserService) subscriptions(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	ids := make([]uuid.UUID, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}
	counts, err := s.recipes.CountRecipesByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]types.SubscriptionResponse, len(authors))
	for i := range authors {
		recipes, err := s.recipes.ListRecipesByAuthor(ctx, authors[i].ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		preview := make([]types.RecipeMinifiedResponse, len(recipes))
		for j := range recipes {
			preview[j] = presentMinifiedRecipe(s.media, &recipes[j])
		}
		out[i] = types.SubscriptionResponse{
			UserResponse: presentUser(s.media, &authors[i], true),
			Recipes:      preview,
			RecipesCount: counts[authors[i].ID],
		}
	}
	return out, nil
}
