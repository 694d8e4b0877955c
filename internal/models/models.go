// Package models holds the persistent records of the blog list service.
package models

// All lists every model managed by schema migration, parents first.
func All() []any {
	return []any{&User{}, &Blog{}}
}
