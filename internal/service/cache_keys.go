package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mycad-io/fleet-api/internal/query"
)

// searchCacheKey builds a stable cache key for a search request. Filters are
// emitted in sorted key order so logically equal requests share a key.
func searchCacheKey(entity string, req query.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:list:q=%s:p=%d:s=%d:sort=%s:%s", entity,
		strings.ToLower(strings.TrimSpace(req.Search)), req.Page, req.PageSize, req.SortField, req.SortDirection)
	if len(req.StatusLabels) > 0 {
		labels := append([]string(nil), req.StatusLabels...)
		sort.Strings(labels)
		fmt.Fprintf(&b, ":status=%s", strings.Join(labels, ","))
	}
	if len(req.Filters) > 0 {
		keys := make([]string, 0, len(req.Filters))
		for k := range req.Filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, ":%s=%v", k, req.Filters[k])
		}
	}
	return b.String()
}

// searchCachePattern matches every cached page for an entity.
func searchCachePattern(entity string) string {
	return entity + ":list:*"
}
