// Package query turns an untrusted listing filter into parameterised SQL
// fragments, an ordering and a page window. It performs no I/O; category
// references are handed back for the caller to resolve.
package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/pkg/apperror"
	"github.com/google/uuid"
)

const (
	DefaultLimit = 10
	MaxLimit     = 50
	DefaultSort  = "newest"
)

// Params mirrors the query string verbatim. Empty means "not supplied".
type Params struct {
	Search      string `form:"search"`
	Category    string `form:"category"`
	Subcategory string `form:"subcategory"`
	MinPrice    string `form:"minPrice"`
	MaxPrice    string `form:"maxPrice"`
	Condition   string `form:"condition"`
	Location    string `form:"location"`
	Featured    string `form:"featured"`
	Status      string `form:"status"`
	User        string `form:"user"`
	Sort        string `form:"sort"`
	Page        string `form:"page"`
	Limit       string `form:"limit"`
}

// Caller identifies who is asking. A nil UserID is an anonymous request.
type Caller struct {
	UserID  *uuid.UUID
	IsAdmin bool
}

// Options carries the per-endpoint defaults.
type Options struct {
	DefaultLimit int
	// DefaultStatus applies when the request names no status. Empty means
	// no status filter at all, which is only honoured for owners and admins.
	DefaultStatus string
	// Owner pins the result to one user's listings (the /user/:id routes).
	Owner *uuid.UUID
}

// Condition is one SQL fragment using ? placeholders.
type Condition struct {
	SQL  string
	Args []any
}

type Query struct {
	Conditions []Condition
	Order      []string
	Page       int
	Limit      int
	Offset     int

	// CategoryRef and SubcategoryRef are identifiers or slugs still to be
	// resolved against the category store.
	CategoryRef    string
	SubcategoryRef string
}

var sortOrders = map[string][]string{
	"newest":     {"listings.created_at DESC"},
	"oldest":     {"listings.created_at ASC"},
	"price-asc":  {"listings.price ASC"},
	"price-desc": {"listings.price DESC"},
	"popular":    {"listings.views DESC", "listings.created_at DESC"},
}

var sortAliases = map[string]string{
	"price-low":  "price-asc",
	"price-high": "price-desc",
	"views":      "popular",
}

// Build validates p and produces the query. Validation failures come back as
// *apperror.ValidationError; asking for non-active listings you may not see
// wraps apperror.ErrForbidden.
func Build(p Params, caller Caller, opts Options) (*Query, error) {
	verr := &apperror.ValidationError{}
	q := &Query{}

	q.Page = parsePositiveInt(p.Page, 1, "page", verr)
	defaultLimit := opts.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	q.Limit = parsePositiveInt(p.Limit, defaultLimit, "limit", verr)
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Page > math.MaxInt32/q.Limit {
		verr.Add("page", "is out of range")
		q.Page = 1
	}

	if s := strings.TrimSpace(p.Search); s != "" {
		pattern := "%" + EscapeLike(s) + "%"
		q.add("(listings.title ILIKE ? OR listings.description ILIKE ?)", pattern, pattern)
	}

	q.CategoryRef = strings.TrimSpace(p.Category)
	q.SubcategoryRef = strings.TrimSpace(p.Subcategory)

	minPrice, hasMin := parsePrice(p.MinPrice, "minPrice", verr)
	maxPrice, hasMax := parsePrice(p.MaxPrice, "maxPrice", verr)
	if hasMin && hasMax && minPrice > maxPrice {
		verr.Add("maxPrice", "must be greater than or equal to minPrice")
	}
	if hasMin {
		q.add("listings.price >= ?", minPrice)
	}
	if hasMax {
		q.add("listings.price <= ?", maxPrice)
	}

	if c := strings.TrimSpace(p.Condition); c != "" {
		if !entity.IsListingCondition(c) {
			verr.Add("condition", "must be one of "+strings.Join(entity.ListingConditions, ", "))
		} else {
			q.add("listings.condition = ?", c)
		}
	}

	if loc := strings.TrimSpace(p.Location); loc != "" {
		q.add("listings.location ILIKE ?", "%"+EscapeLike(loc)+"%")
	}

	if p.Featured == "true" {
		q.add("listings.featured = ?", true)
	}

	owner := opts.Owner
	if u := strings.TrimSpace(p.User); u != "" && owner == nil {
		id, err := uuid.Parse(u)
		if err != nil {
			verr.Add("user", "must be a valid user id")
		} else {
			owner = &id
		}
	}
	if owner != nil {
		q.add("listings.user_id = ?", *owner)
	}

	status := strings.TrimSpace(p.Status)
	if status != "" && !entity.IsListingStatus(status) {
		verr.Add("status", "must be one of "+strings.Join(entity.ListingStatuses, ", "))
	}

	if verr.HasErrors() {
		return nil, verr
	}

	if status == "" {
		status = opts.DefaultStatus
	}
	if status != entity.ListingStatusActive && !mayViewInactive(caller, owner) {
		return nil, fmt.Errorf("only the owner or an admin may list %q listings: %w", statusLabel(status), apperror.ErrForbidden)
	}
	if status != "" {
		q.add("listings.status = ?", status)
	}

	q.Order = Order(p.Sort)
	q.Offset = (q.Page - 1) * q.Limit

	return q, nil
}

// Order maps a sort key to ORDER BY terms. Unknown keys fall back to newest.
// The id tie-breaker keeps page boundaries stable.
func Order(sort string) []string {
	key := strings.TrimSpace(sort)
	if alias, ok := sortAliases[key]; ok {
		key = alias
	}
	terms, ok := sortOrders[key]
	if !ok {
		terms = sortOrders[DefaultSort]
	}

	out := make([]string, 0, len(terms)+1)
	out = append(out, terms...)
	return append(out, "listings.id ASC")
}

// FilterCategory adds the resolved category constraint. Subcategories are
// stored in subcategory_id, top-level categories in category_id.
func (q *Query) FilterCategory(id uuid.UUID, isSubcategory bool) {
	if isSubcategory {
		q.add("listings.subcategory_id = ?", id)
		return
	}
	q.add("listings.category_id = ?", id)
}

func (q *Query) add(sql string, args ...any) {
	q.Conditions = append(q.Conditions, Condition{SQL: sql, Args: args})
}

// EscapeLike escapes the ILIKE metacharacters so user text matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func mayViewInactive(caller Caller, owner *uuid.UUID) bool {
	if caller.IsAdmin {
		return true
	}
	return caller.UserID != nil && owner != nil && *caller.UserID == *owner
}

func statusLabel(status string) string {
	if status == "" {
		return "all"
	}
	return status
}

func parsePositiveInt(raw string, fallback int, field string, verr *apperror.ValidationError) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		verr.Add(field, "must be a positive integer")
		return fallback
	}
	return n
}

func parsePrice(raw, field string, verr *apperror.ValidationError) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		verr.Add(field, "must be a number")
		return 0, false
	}
	if v < 0 {
		verr.Add(field, "must be greater than or equal to 0")
		return 0, false
	}
	return v, true
}
