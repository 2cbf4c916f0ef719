// Package query turns raw list parameters into a validated, scoped query.
package query

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/access"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = "-createdAt"
)

// Params are the raw list parameters as received from the client.
type Params struct {
	Page       string `query:"page"`
	Limit      string `query:"limit"`
	Status     string `query:"status"`
	Department string `query:"department"`
	Search     string `query:"search"`
	Sort       string `query:"sort"`
	From       string `query:"from"`
	To         string `query:"to"`
}

// Criteria is a validated complaint query.
type Criteria struct {
	Scope      access.Scope
	Status     string
	Department string
	Search     string
	From       *time.Time
	To         *time.Time
	SortColumn string
	SortDesc   bool
	Page       int
	Limit      int
	WithOwner  bool
}

func (s Criteria) Offset() int {
	return (s.Page - 1) * s.Limit
}

// Pages is ceil(total/limit).
func (s Criteria) Pages(total int64) int {
	if s.Limit <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(s.Limit)))
}

var sortColumns = map[string]string{
	"createdAt":  "created_at",
	"created_at": "created_at",
	"updatedAt":  "updated_at",
	"updated_at": "updated_at",
	"title":      "title",
	"status":     "status",
	"department": "department",
}

// Build validates p and narrows it to what id may observe.
func Build(id access.Identity, p Params) (Criteria, error) {
	scope, err := access.Authorize(id, access.OpListComplaints, nil)
	if err != nil {
		return Criteria{}, err
	}

	crit := Criteria{
		Scope:      scope,
		Department: strings.TrimSpace(p.Department),
		Search:     strings.TrimSpace(p.Search),
		Page:       DefaultPage,
		Limit:      DefaultLimit,
	}
	var fields []apperr.FieldError

	if status := strings.TrimSpace(p.Status); status != "" {
		if !models.IsValidStatus(status) {
			fields = append(fields, apperr.FieldError{
				Field:   "status",
				Message: "status must be one of " + strings.Join(models.Statuses, ", "),
			})
		}
		crit.Status = status
	}

	if p.Page != "" {
		n, err := strconv.Atoi(p.Page)
		if err != nil || n < 1 {
			fields = append(fields, apperr.FieldError{Field: "page", Message: "page must be a positive integer"})
		} else {
			crit.Page = n
		}
	}

	if p.Limit != "" {
		n, err := strconv.Atoi(p.Limit)
		if err != nil || n < 1 {
			fields = append(fields, apperr.FieldError{Field: "limit", Message: "limit must be a positive integer"})
		} else {
			crit.Limit = min(n, MaxLimit)
		}
	}

	if p.From != "" {
		t, err := parseDate(p.From)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: "from", Message: "from must be a date (YYYY-MM-DD or RFC3339)"})
		} else {
			crit.From = &t
		}
	}

	if p.To != "" {
		t, err := parseDate(p.To)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: "to", Message: "to must be a date (YYYY-MM-DD or RFC3339)"})
		} else {
			crit.To = &t
		}
	}

	sort := strings.TrimSpace(p.Sort)
	if sort == "" {
		sort = DefaultSort
	}
	desc := strings.HasPrefix(sort, "-")
	col, ok := sortColumns[strings.TrimPrefix(sort, "-")]
	if !ok {
		fields = append(fields, apperr.FieldError{Field: "sort", Message: "sort must be one of createdAt, updatedAt, title, status, department"})
	}
	crit.SortColumn, crit.SortDesc = col, desc

	if len(fields) > 0 {
		return Criteria{}, apperr.Validation(fields...)
	}
	return crit, nil
}

// parseDate accepts RFC3339 or a bare date at UTC midnight.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
