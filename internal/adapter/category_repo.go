package adapter

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"local-library/internal/core/model"
	"local-library/internal/logger"
)

type CategoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) *CategoryRepo {
	return &CategoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *CategoryRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Count(&n).Error
	return n, err
}

func (r *CategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, model.ErrNotFound
	}
	return c, err
}

// GetByName is the dedup lookup: exact match on the sanitized name.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).First(&c, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, model.ErrNotFound
	}
	return c, err
}

func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := r.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

// ListByIDs resolves submitted selections to stored records; unknown
// identifiers are dropped rather than invented.
func (r *CategoryRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Category, error) {
	out := []model.Category{}
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name").Find(&out).Error
	return out, err
}

func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}
