package clientsync

import "context"

type Store interface {
	// Upsert inserts or refreshes the projection keyed by (token, mac),
	// forcing online=true and a fresh last-synced timestamp.
	Upsert(ctx context.Context, p Projection) error

	// MarkOfflineExcept flips online to false for every online projection
	// of the business whose address is not in seenMACs. Nothing is ever
	// deleted. Returns the number of projections flipped.
	MarkOfflineExcept(ctx context.Context, businessID string, seenMACs []string) (int, error)

	ListByBusiness(ctx context.Context, businessID string) ([]Projection, error)

	// OnlineMACsForToken reports the online addresses currently projected
	// for one token; used when disabling a token.
	OnlineMACsForToken(ctx context.Context, tokenID string) ([]string, error)
}
