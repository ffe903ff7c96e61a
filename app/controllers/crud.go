package controllers

import (
	"context"

	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
)

// Shared shapes for admin CRUD endpoints keyed by {id}.

func list[T any](fn func(context.Context) ([]T, error)) ctx.HandlerFunc {
	return func(c *ctx.Context) {
		out, err := fn(c.Context())
		if err != nil {
			fail(c, err)
			return
		}
		if out == nil {
			out = []T{}
		}
		c.Success(out)
	}
}

func show[T any](fn func(context.Context, uint) (T, error)) ctx.HandlerFunc {
	return func(c *ctx.Context) {
		id, ok := c.ParamUint("id")
		if !ok {
			return
		}
		out, err := fn(c.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.Success(out)
	}
}

func store[I, T any](fn func(context.Context, I) (T, error)) ctx.HandlerFunc {
	return func(c *ctx.Context) {
		var in I
		if !c.BindJSON(&in) {
			return
		}
		out, err := fn(c.Context(), in)
		if err != nil {
			fail(c, err)
			return
		}
		c.Created(out)
	}
}

func update[I, T any](fn func(context.Context, uint, I) (T, error)) ctx.HandlerFunc {
	return func(c *ctx.Context) {
		id, ok := c.ParamUint("id")
		if !ok {
			return
		}
		var in I
		if !c.BindJSON(&in) {
			return
		}
		out, err := fn(c.Context(), id, in)
		if err != nil {
			fail(c, err)
			return
		}
		c.Success(out)
	}
}

func destroy(fn func(context.Context, uint) error) ctx.HandlerFunc {
	return func(c *ctx.Context) {
		id, ok := c.ParamUint("id")
		if !ok {
			return
		}
		if err := fn(c.Context(), id); err != nil {
			fail(c, err)
			return
		}
		c.NoContent()
	}
}
