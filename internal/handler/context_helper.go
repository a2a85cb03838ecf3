package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mycad-io/fleet-api/internal/middleware"
	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/query"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// searchRequest builds a list request from query-string input. Bad values are
// coerced to defaults rather than rejected.
func searchRequest(c *gin.Context) query.Request {
	req := query.Request{
		Search:        strings.TrimSpace(c.Query("search")),
		Page:          query.ParsePage(c.DefaultQuery("page", "1")),
		PageSize:      query.ParsePageSize(c.DefaultQuery("limit", "10")),
		SortField:     c.Query("sort"),
		SortDirection: c.Query("order"),
	}
	for _, label := range strings.Split(c.Query("status"), ",") {
		if label = strings.TrimSpace(label); label != "" {
			req.StatusLabels = append(req.StatusLabels, label)
		}
	}
	return req
}
