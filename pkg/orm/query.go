// Package orm holds query helpers shared by the repositories.
package orm

import (
	"context"
	"math"
	"strconv"

	"gorm.io/gorm"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination is the page metadata returned next to list results.
type Pagination struct {
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// PageRequest is a normalised page/per_page pair.
type PageRequest struct {
	Page    int
	PerPage int
}

// ParsePage reads page and per_page strings, clamping to sane bounds.
func ParsePage(page, perPage string) PageRequest {
	p, _ := strconv.Atoi(page)
	pp, _ := strconv.Atoi(perPage)
	return NewPageRequest(p, pp)
}

func NewPageRequest(page, perPage int) PageRequest {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return PageRequest{Page: page, PerPage: perPage}
}

func (p PageRequest) Offset() int { return (p.Page - 1) * p.PerPage }

// Paginate counts the rows matched by q and loads one page into dest.
// q must already carry its Model and Where clauses.
func Paginate(q *gorm.DB, req PageRequest, dest any) (Pagination, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Pagination{}, err
	}

	if err := q.Session(&gorm.Session{}).Offset(req.Offset()).Limit(req.PerPage).Find(dest).Error; err != nil {
		return Pagination{}, err
	}

	last := int(math.Ceil(float64(total) / float64(req.PerPage)))
	if last < 1 {
		last = 1
	}
	return Pagination{Page: req.Page, PerPage: req.PerPage, Total: total, LastPage: last}, nil
}

// Like wraps s in % wildcards for a LIKE clause.
func Like(s string) string { return "%" + s + "%" }

// Transaction runs fn inside a gorm transaction bound to ctx.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
