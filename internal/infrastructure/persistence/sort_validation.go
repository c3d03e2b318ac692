package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/pharmacare/backend/internal/domain/shared"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to
// DESC for anything unrecognized
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist. Returns
// defaultField when the input is empty or not whitelisted, so user-supplied
// sort keys can never reach the SQL string unchecked.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// CommonSortFields contains fields common to all entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// MedicineSortFields contains allowed sort fields for medicines
var MedicineSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"barcode":      true,
	"min_quantity": true,
	"unit_price":   true,
}

// BatchSortFields contains allowed sort fields for batches
var BatchSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"batch_number": true,
	"expiry_date":  true,
	"quantity":     true,
}

// applyPagination applies page/page-size and whitelisted ordering to a query
func applyPagination(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool, defaultOrder string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	field := ValidateSortField(filter.OrderBy, allowedFields, defaultOrder)
	return query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
}
