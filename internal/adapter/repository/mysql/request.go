package mysql

import (
	"context"
	"errors"
	"time"

	reqDomain "approval-engine/internal/domain/request"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RequestRepository struct{ db *gorm.DB }

func NewRequestRepository(db *gorm.DB) *RequestRepository { return &RequestRepository{db: db} }

// Create inserts the request and its levels in one go (gorm association).
func (r *RequestRepository) Create(ctx context.Context, req *reqDomain.ApprovalRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) GetByRequestID(ctx context.Context, requestID string) (*reqDomain.ApprovalRequest, error) {
	var out reqDomain.ApprovalRequest
	res := r.db.WithContext(ctx).
		Preload("Levels", func(db *gorm.DB) *gorm.DB { return db.Order("level_order") }).
		Where("request_id = ?", requestID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, reqDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *RequestRepository) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*reqDomain.ApprovalRequest, error) {
	var out reqDomain.ApprovalRequest
	// lock the request row only; levels are reached through it
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, reqDomain.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", out.ID).
		Order("level_order").
		Find(&out.Levels).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RequestRepository) Save(ctx context.Context, req *reqDomain.ApprovalRequest) error {
	// levels are saved individually by the state machine
	return r.db.WithContext(ctx).Omit("Levels").Save(req).Error
}

func (r *RequestRepository) SaveLevel(ctx context.Context, l *reqDomain.Level) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *RequestRepository) ListDuePending(ctx context.Context, now time.Time, limit int) ([]reqDomain.DueLevel, error) {
	var out []reqDomain.DueLevel
	res := r.db.WithContext(ctx).
		Table("approval_request_levels AS l").
		Select("r.request_id AS request_id, l.level_order AS level_order").
		Joins("JOIN approval_requests r ON r.id = l.request_id").
		Where("l.status = ? AND l.due_at <= ?", reqDomain.LevelPending, now).
		Where("r.status IN ?", []reqDomain.Status{reqDomain.StatusPending, reqDomain.StatusInProgress, reqDomain.StatusEscalated}).
		Order("l.due_at").
		Limit(limit).
		Scan(&out)
	return out, res.Error
}
