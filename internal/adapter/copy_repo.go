package adapter

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"local-library/internal/core/model"
	"local-library/internal/logger"
)

type CopyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCopyRepo(db *gorm.DB, baseLog *logger.Logger) *CopyRepo {
	return &CopyRepo{db: db, log: baseLog.With("repo", "CopyRepo")}
}

func (r *CopyRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Copy{}).Count(&n).Error
	return n, err
}

func (r *CopyRepo) CountByStatus(ctx context.Context, status model.CopyStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Copy{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func (r *CopyRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Copy, error) {
	var c model.Copy
	err := r.db.WithContext(ctx).Preload("Title").First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Copy{}, model.ErrNotFound
	}
	return c, err
}

func (r *CopyRepo) List(ctx context.Context) ([]model.Copy, error) {
	var out []model.Copy
	err := r.db.WithContext(ctx).Preload("Title").Order("created_at").Find(&out).Error
	return out, err
}

func (r *CopyRepo) ListByTitle(ctx context.Context, titleID uuid.UUID) ([]model.Copy, error) {
	out := []model.Copy{}
	err := r.db.WithContext(ctx).Where("title_id = ?", titleID).Order("created_at").Find(&out).Error
	return out, err
}

func (r *CopyRepo) Create(ctx context.Context, c *model.Copy) error {
	return r.db.WithContext(ctx).Omit("Title").Create(c).Error
}
