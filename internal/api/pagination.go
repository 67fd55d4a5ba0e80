package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/store"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100

	// maxPageNumber keeps page*size inside int.
	maxPageNumber = math.MaxInt / maxPageSize
)

type pageParams struct {
	number int
	size   int
}

func (p pageParams) window() store.Page {
	return store.Page{Offset: (p.number - 1) * p.size, Limit: p.size}
}

// parsePage reads ?page=N&limit=M. A malformed page number is a 404, a
// malformed limit falls back to the default.
func parsePage(c *gin.Context) (pageParams, bool) {
	p := pageParams{number: 1, size: defaultPageSize}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageNumber {
			c.JSON(http.StatusNotFound, detail("Invalid page."))
			return p, false
		}
		p.number = n
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.size = n
		}
	}
	if p.size > maxPageSize {
		p.size = maxPageSize
	}
	return p, true
}

func (p pageParams) link(c *gin.Context, number int) *string {
	q := c.Request.URL.Query()
	if number == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u := absoluteURL(c, c.Request.URL.Path)
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return &u
}

// renderPage writes one page of results with links to its neighbours. A
// page past the end is a 404.
func renderPage[T any](c *gin.Context, p pageParams, results []T, total int64) {
	if p.number > 1 && int64(p.window().Offset) >= total {
		c.JSON(http.StatusNotFound, detail("Invalid page."))
		return
	}

	page := types.Page[T]{Count: total, Results: results}
	if page.Results == nil {
		page.Results = []T{}
	}
	if int64(p.number*p.size) < total {
		page.Next = p.link(c, p.number+1)
	}
	if p.number > 1 {
		page.Previous = p.link(c, p.number-1)
	}
	c.JSON(http.StatusOK, page)
}
