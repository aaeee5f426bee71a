package mysql

import (
	"context"
	"errors"

	authDomain "approval-engine/internal/domain/authority"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuthorityRepository struct{ db *gorm.DB }

func NewAuthorityRepository(db *gorm.DB) *AuthorityRepository { return &AuthorityRepository{db: db} }

func (r *AuthorityRepository) Create(ctx context.Context, a *authDomain.Authority) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AuthorityRepository) GetByAuthorityID(ctx context.Context, authorityID string) (*authDomain.Authority, error) {
	var out authDomain.Authority
	res := r.db.WithContext(ctx).Where("authority_id = ?", authorityID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, authDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *AuthorityRepository) GetByAuthorityIDForUpdate(ctx context.Context, authorityID string) (*authDomain.Authority, error) {
	var out authDomain.Authority
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("authority_id = ?", authorityID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, authDomain.ErrNotFound
	}
	return &out, res.Error
}

// getByIDForUpdate locks by numeric PK; used by the UoW when the caller only
// holds a foreign key.
func (r *AuthorityRepository) getByIDForUpdate(ctx context.Context, id uint64) (*authDomain.Authority, error) {
	var out authDomain.Authority
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, authDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *AuthorityRepository) GetByCode(ctx context.Context, code string) (*authDomain.Authority, error) {
	var out authDomain.Authority
	res := r.db.WithContext(ctx).Where("code = ?", code).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, authDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *AuthorityRepository) ListActive(ctx context.Context) ([]authDomain.Authority, error) {
	var out []authDomain.Authority
	res := r.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&out)
	return out, res.Error
}

func (r *AuthorityRepository) CreateHolder(ctx context.Context, h *authDomain.Holder) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *AuthorityRepository) GetHolderByHolderID(ctx context.Context, holderID string) (*authDomain.Holder, error) {
	var out authDomain.Holder
	res := r.db.WithContext(ctx).Where("holder_id = ?", holderID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, authDomain.ErrHolderNotFound
	}
	return &out, res.Error
}

func (r *AuthorityRepository) ListHoldersByAuthority(ctx context.Context, authorityID uint64) ([]authDomain.Holder, error) {
	var out []authDomain.Holder
	res := r.db.WithContext(ctx).Where("authority_id = ?", authorityID).Order("id").Find(&out)
	return out, res.Error
}
