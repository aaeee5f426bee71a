package authority

import "context"

type Repository interface {
	Create(ctx context.Context, a *Authority) error
	GetByAuthorityID(ctx context.Context, authorityID string) (*Authority, error)
	// GetByAuthorityIDForUpdate locks the authority row; delegation writes
	// serialize on it to keep windows non-overlapping.
	GetByAuthorityIDForUpdate(ctx context.Context, authorityID string) (*Authority, error)
	GetByCode(ctx context.Context, code string) (*Authority, error)
	ListActive(ctx context.Context) ([]Authority, error)

	CreateHolder(ctx context.Context, h *Holder) error
	GetHolderByHolderID(ctx context.Context, holderID string) (*Holder, error)
	ListHoldersByAuthority(ctx context.Context, authorityID uint64) ([]Holder, error)
}
