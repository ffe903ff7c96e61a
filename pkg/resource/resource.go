// Package resource shapes models into API payloads. A transformer is a
// plain function that One and Many apply.
//
//	c.Success(resource.One(presenters.User, user))
//	c.Paginated(resource.Many(presenters.Listing, listings), page)
package resource

type Map = map[string]any

type Transformer[T any] func(T) Map

// One transforms a single value.
func One[T any](t Transformer[T], v T) Map { return t(v) }

// Many transforms a slice, returning an empty (never nil) list so the JSON
// is [] rather than null.
func Many[T any](t Transformer[T], items []T) []Map {
	out := make([]Map, 0, len(items))
	for _, v := range items {
		out = append(out, t(v))
	}
	return out
}
