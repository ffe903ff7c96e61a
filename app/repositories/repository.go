// Package repositories wraps gorm queries per model. Lookups that miss
// return gorm.ErrRecordNotFound; services translate that.
package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repo is the CRUD shared by every model with a uint primary key.
type Repo[T any] struct {
	db *gorm.DB
}

func NewRepo[T any](db *gorm.DB) Repo[T] { return Repo[T]{db: db} }

// DB returns the handle bound to ctx, for queries the repo does not cover.
func (r Repo[T]) DB(ctx context.Context) *gorm.DB { return r.db.WithContext(ctx) }

// WithTx returns a copy of the repo that runs on tx.
func (r Repo[T]) WithTx(tx *gorm.DB) Repo[T] { return Repo[T]{db: tx} }

func (r Repo[T]) Find(ctx context.Context, id uint) (*T, error) {
	var out T
	if err := r.DB(ctx).First(&out, id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// FindBy loads the first row matching query.
func (r Repo[T]) FindBy(ctx context.Context, query string, args ...any) (*T, error) {
	var out T
	if err := r.DB(ctx).Where(query, args...).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Repo[T]) Where(ctx context.Context, order string, query string, args ...any) ([]T, error) {
	var out []T
	q := r.DB(ctx)
	if query != "" {
		q = q.Where(query, args...)
	}
	if order != "" {
		q = q.Order(order)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r Repo[T]) Create(ctx context.Context, v *T) error { return r.DB(ctx).Create(v).Error }

func (r Repo[T]) Save(ctx context.Context, v *T) error { return r.DB(ctx).Save(v).Error }

// Delete removes the row by id and reports gorm.ErrRecordNotFound when no
// row matched.
func (r Repo[T]) Delete(ctx context.Context, id uint) error {
	var zero T
	res := r.DB(ctx).Delete(&zero, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Exists reports whether any row matches query.
func (r Repo[T]) Exists(ctx context.Context, query string, args ...any) (bool, error) {
	n, err := r.Count(ctx, query, args...)
	return n > 0, err
}

func (r Repo[T]) Count(ctx context.Context, query string, args ...any) (int64, error) {
	var zero T
	var n int64
	q := r.DB(ctx).Model(&zero)
	if query != "" {
		q = q.Where(query, args...)
	}
	err := q.Count(&n).Error
	return n, err
}
