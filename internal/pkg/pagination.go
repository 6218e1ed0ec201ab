package pkg

import (
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learnhub/admin/internal/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
	defaultSort  = "id:desc"
)

// reservedParams are the list query parameters that are not filters.
var reservedParams = map[string]bool{
	"page":   true,
	"limit":  true,
	"search": true,
	"sort":   true,
}

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParsePageRequest extracts page, limit, search, sort and filters from the
// query string. Out-of-range values fall back to defaults.
func ParsePageRequest(c *gin.Context) domain.PageRequest {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = defaultPage
	}

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	sort := c.DefaultQuery("sort", defaultSort)

	filter := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			filter[key] = values[0]
		}
	}

	return domain.PageRequest{
		Page:   page,
		Limit:  limit,
		Search: strings.TrimSpace(c.Query("search")),
		Sort:   sort,
		Filter: filter,
	}
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET.
func Paginate(req domain.PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		offset := (req.Page - 1) * req.Limit
		return db.Offset(offset).Limit(req.Limit)
	}
}

// Sort returns a GORM scope that applies ORDER BY "field:dir". Fields outside
// allowed are ignored. An id tiebreaker keeps pages stable.
func Sort(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field, direction, ok := strings.Cut(req.Sort, ":")
		if !ok {
			return db
		}
		field = strings.TrimSpace(field)
		direction = strings.ToLower(strings.TrimSpace(direction))

		if direction != "asc" && direction != "desc" {
			return db
		}
		if !validFieldName.MatchString(field) || !slices.Contains(allowed, field) {
			return db
		}

		db = db.Order(field + " " + direction)
		if field != "id" {
			db = db.Order("id " + direction)
		}
		return db
	}
}

// Filter returns a GORM scope applying exact-match WHERE conditions for the
// allowed filter keys. The value "all" means no condition.
func Filter(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, key := range slices.Sorted(maps.Keys(req.Filter)) {
			value := req.Filter[key]
			if value == "all" {
				continue
			}
			if !validFieldName.MatchString(key) || !slices.Contains(allowed, key) {
				continue
			}
			db = db.Where(key+" = ?", value)
		}
		return db
	}
}

// Search returns a GORM scope matching the search term as a case-insensitive
// substring of any of fields.
func Search(req domain.PageRequest, fields []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if req.Search == "" || len(fields) == 0 {
			return db
		}
		term := "%" + escapeLike(strings.ToLower(req.Search)) + "%"
		var clauses []string
		var args []any
		for _, f := range fields {
			if !validFieldName.MatchString(f) {
				continue
			}
			clauses = append(clauses, "LOWER("+f+") LIKE ? ESCAPE '\\'")
			args = append(args, term)
		}
		if len(clauses) == 0 {
			return db
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// NewPageResult wraps one page of items with computed pagination metadata.
func NewPageResult[T any](items []T, total int64, req domain.PageRequest) *domain.PageResult[T] {
	totalPages := 0
	if req.Limit > 0 {
		totalPages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}
	if items == nil {
		items = []T{}
	}
	return &domain.PageResult[T]{
		Entities: items,
		Pagination: domain.PageMeta{
			Total:      total,
			TotalPages: totalPages,
			Page:       req.Page,
			Limit:      req.Limit,
		},
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
