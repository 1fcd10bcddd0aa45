// Package common holds helpers shared by every controller.
package common

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/chars3/caplink-store/apperr"
	"github.com/chars3/caplink-store/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Paginated is the JSON shape of every list endpoint.
type Paginated[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// Pagination is the parsed page/limit query.
type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Params() models.PageParams {
	return models.PageParams{Skip: (p.Page - 1) * p.Limit, Take: p.Limit}
}

// Wrap turns a service page into the response body.
func Wrap[T any](p Pagination, page *models.Page[T]) Paginated[T] {
	totalPages := int64(0)
	if page.Total > 0 {
		totalPages = (page.Total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Paginated[T]{
		Data: page.Data,
		Meta: PaginationMeta{Page: p.Page, Limit: p.Limit, Total: page.Total, TotalPages: totalPages},
	}
}

// ParsePagination reads ?page (>= 1, default 1) and ?limit (1..100, default 10).
func ParsePagination(c *gin.Context) (Pagination, error) {
	p := Pagination{Page: 1, Limit: DefaultLimit}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return p, apperr.Invalid("page must be an integer >= 1")
		}
		p.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxLimit {
			return p, apperr.Invalidf("limit must be an integer between 1 and %d", MaxLimit)
		}
		p.Limit = limit
	}
	return p, nil
}

// RespondError maps an error kind to its HTTP status. Store failures are
// logged and never leak their cause.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	var appErr *apperr.Error
	switch apperr.KindOf(err) {
	case apperr.KindInvalid, apperr.KindEmptyCart:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindConflict:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": message})
		return
	}

	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": apperr.KindOf(err).String()})
}

// BadRequest answers a binding failure.
func BadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error(), "code": apperr.KindInvalid.String()})
}
