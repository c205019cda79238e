package query

/*
	Package query provides an interface for querying mongo db.
	It is basically nothing but a thin wrap around
	https://github.com/mongodb/mongo-go-driver
*/

import (
	"fmt"

	"github.com/Alanle1011/contract-marketplace/base/ctx"
	"github.com/Alanle1011/contract-marketplace/domain"
)

var (
	// ErrNotFound is mongo document not found error
	ErrNotFound = fmt.Errorf("document not found")

	// ErrDuplicateKey is an error when violating unique index
	ErrDuplicateKey = fmt.Errorf("duplicate key")
)

// Mongo provides the query surface the repositories are built on
type Mongo interface {
	// Insert inserts a single document
	Insert(c ctx.Ctx, table domain.Table, insert interface{}) error

	// FindOne decodes the first document matching query into result,
	// returning ErrNotFound when there is no match
	FindOne(c ctx.Ctx, table domain.Table, query, result interface{}) error

	// Count returns the number of documents matching selector
	Count(c ctx.Ctx, table domain.Table, selector interface{}) (int, error)

	// Search fetches documents matching selector into result with
	// offset/limit pagination and an optional `field` / `-field` sort
	Search(c ctx.Ctx, table domain.Table, offset, limit int, sort string, selector, result interface{}) error

	// Patch applies a $set update to the first document matching selector
	Patch(c ctx.Ctx, table domain.Table, selector, patch interface{}) error

	// Upsert replaces the document matching selector, inserting it when missing
	Upsert(c ctx.Ctx, table domain.Table, selector, update interface{}) error

	// Remove removes the first document matching selector,
	// returning ErrNotFound when there is no match
	Remove(c ctx.Ctx, table domain.Table, selector interface{}) error

	// RemoveAll removes every document matching selector
	RemoveAll(c ctx.Ctx, table domain.Table, selector interface{}) error
}
