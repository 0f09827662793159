// Package catalog defines the narrow surface this tool needs from a
// media catalog backend.
package catalog

import "context"

// Account is an authenticated catalog account.
type Account interface {
	Username() string
	Token() string
	Servers(ctx context.Context) ([]ServerRef, error)
}

// ServerRef is a server advertised on an account, not yet connected.
type ServerRef interface {
	Name() string
	Connect(ctx context.Context) (Server, error)
}

// Server is an established connection to one catalog server.
type Server interface {
	Name() string
	Libraries(ctx context.Context) ([]Library, error)
}

// Library is a section of a server's catalog. Locations are the
// configured storage roots, in the order the server reports them.
type Library interface {
	Title() string
	Type() string
	Locations() []string
	Items(ctx context.Context) ([]Item, error)
}

// Item is a single catalog entry. Optional capabilities are separate
// interfaces so a backend only implements what its entries have.
type Item interface {
	Title() string
}

// PartLister reports the absolute file paths backing an item.
type PartLister interface {
	FilePaths() []string
}

// FieldLocks reports whether a named field is pinned by a curator.
type FieldLocks interface {
	FieldLocked(name string) bool
}

// TitleEditor writes a new title back to the catalog.
type TitleEditor interface {
	SetTitle(ctx context.Context, title string) error
}
