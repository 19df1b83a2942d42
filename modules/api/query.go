package api

import (
	"sort"
	"strings"

	domain "github.com/example/crm-backend/domain/crm"
	"github.com/gofiber/fiber/v2"
)

// parseListQuery reads ?order_by=-price,name and field__op=value filters.
func parseListQuery(c *fiber.Ctx) domain.ListQuery {
	var q domain.ListQuery
	for key, value := range c.Queries() {
		if key == "order_by" {
			for _, term := range strings.Split(value, ",") {
				if term = strings.TrimSpace(term); term != "" {
					q.OrderBy = append(q.OrderBy, term)
				}
			}
			continue
		}
		field, op := domain.ParseFilterKey(key)
		q.Filters = append(q.Filters, domain.Filter{Field: field, Op: op, Value: value})
	}

	// Map iteration order is random; keep statements stable.
	sort.Slice(q.Filters, func(i, j int) bool {
		if q.Filters[i].Field != q.Filters[j].Field {
			return q.Filters[i].Field < q.Filters[j].Field
		}
		return q.Filters[i].Op < q.Filters[j].Op
	})
	return q
}
