package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
)

type ShortLinkHandler struct {
	links service.IShortLinkService
}

func NewShortLinkHandler(links service.IShortLinkService) *ShortLinkHandler {
	return &ShortLinkHandler{links: links}
}

// Redirect sends the client from /s/<code>/ to the recipe page.
func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	recipeID, err := h.links.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.Redirect(http.StatusFound, absoluteURL(c, "/recipes/"+recipeID.String()+"/"))
}
