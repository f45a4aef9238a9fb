package token

import (
	"context"
	"errors"
)

var (
	// ErrPackageNotFound is returned both for a missing package and for a
	// package owned by another business, so callers cannot probe tenants.
	ErrPackageNotFound = errors.New("token package not found")

	ErrTokenNotFound = errors.New("wifi token not found")

	// ErrTokenNotPurgeable guards the purge invariant: only tokens still
	// in the available state may be removed.
	ErrTokenNotPurgeable = errors.New("only available tokens can be purged")
)

type Store interface {
	CreatePackage(ctx context.Context, p Package) error
	// GetPackage scopes by business: a mismatch reports ErrPackageNotFound.
	GetPackage(ctx context.Context, businessID string, packageID string) (Package, error)
	ListPackages(ctx context.Context, businessID string) ([]Package, error)

	GetToken(ctx context.Context, id string) (Token, error)
	GetTokenByUsername(ctx context.Context, businessID string, username string) (Token, error)
	UpdateTokenState(ctx context.Context, id string, state State) error
	// PurgeToken deletes a token row; refused unless state is available.
	PurgeToken(ctx context.Context, id string) error
}
