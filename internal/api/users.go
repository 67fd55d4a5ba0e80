package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/store"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

type UserHandler struct {
	auth  service.IAuthService
	users service.IUserService
}

func NewUserHandler(auth service.IAuthService, users service.IUserService) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	p, ok := parsePage(c)
	if !ok {
		return
	}
	users, total, err := h.users.ListUsers(c.Request.Context(), middleware.UserID(c), p.window())
	if err != nil {
		renderError(c, err)
		return
	}
	renderPage(c, p, users, total)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	viewer := middleware.UserID(c)
	user, err := h.users.GetUser(c.Request.Context(), viewer, viewer)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetAvatar accepts either {"avatar": "<data uri>"} or a multipart upload
// in the "avatar" field.
func (h *UserHandler) SetAvatar(c *gin.Context) {
	img, err := avatarFromRequest(c)
	if err != nil {
		renderError(c, err)
		return
	}
	resp, err := h.users.SetAvatar(c.Request.Context(), middleware.UserID(c), img)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func avatarFromRequest(c *gin.Context) (*storage.Image, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("avatar")
		if err != nil {
			return nil, validation.Errors{"avatar": {"This field is required."}}
		}
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
		return service.SniffImageField("avatar", data)
	}

	var req types.SetAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, validation.Errors{"avatar": {"This field is required."}}
	}
	if err := validation.ValidateStruct(&req); err != nil {
		return nil, err
	}
	return service.DecodeImageField("avatar", req.Avatar)
}

func (h *UserHandler) DeleteAvatar(c *gin.Context) {
	if err := h.users.DeleteAvatar(c.Request.Context(), middleware.UserID(c)); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.SetPassword(c.Request.Context(), middleware.UserID(c), &req); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads ?recipes_limit. Zero is a real limit; a missing or
// malformed value means no limit.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return store.NoLimit
	}
	return n
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	p, ok := parsePage(c)
	if !ok {
		return
	}
	subs, total, err := h.users.Subscriptions(c.Request.Context(), middleware.UserID(c), p.window(), recipesLimit(c))
	if err != nil {
		renderError(c, err)
		return
	}
	renderPage(c, p, subs, total)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := pathID(c, "id")
	if !ok {
		return
	}
	sub, err := h.users.Subscribe(c.Request.Context(), middleware.UserID(c), authorID, recipesLimit(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.users.Unsubscribe(c.Request.Context(), middleware.UserID(c), authorID); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
