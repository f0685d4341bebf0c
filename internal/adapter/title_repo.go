package adapter

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"local-library/internal/core/model"
	"local-library/internal/logger"
)

type TitleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTitleRepo(db *gorm.DB, baseLog *logger.Logger) *TitleRepo {
	return &TitleRepo{db: db, log: baseLog.With("repo", "TitleRepo")}
}

func (r *TitleRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Title{}).Count(&n).Error
	return n, err
}

// GetByID eagerly dereferences the creator and category references for
// detail rendering.
func (r *TitleRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Title, error) {
	var t model.Title
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Categories").
		First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Title{}, model.ErrNotFound
	}
	return t, err
}

func (r *TitleRepo) List(ctx context.Context) ([]model.Title, error) {
	var out []model.Title
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Order("name").
		Find(&out).Error
	return out, err
}

func (r *TitleRepo) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Title, error) {
	var out []model.Title
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("name").
		Find(&out).Error
	return out, err
}

func (r *TitleRepo) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Title, error) {
	var out []model.Title
	err := r.db.WithContext(ctx).
		Joins("JOIN title_categories tc ON tc.title_id = titles.id").
		Where("tc.category_id = ?", categoryID).
		Order("name").
		Find(&out).Error
	return out, err
}

// Create persists the title and its category join rows; the creator is
// referenced by id only, never written through this path.
func (r *TitleRepo) Create(ctx context.Context, t *model.Title) error {
	return r.db.WithContext(ctx).Omit("Creator").Create(t).Error
}

// Update replaces the title's fields and its category set, keeping the
// identifier.
func (r *TitleRepo) Update(ctx context.Context, t *model.Title) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Title
		if err := tx.Select("id").First(&existing, "id = ?", t.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrNotFound
			}
			return err
		}
		updates := map[string]any{
			"name":       t.Name,
			"summary":    t.Summary,
			"code":       t.Code,
			"creator_id": t.CreatorID,
		}
		if err := tx.Model(&model.Title{ID: t.ID}).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&model.Title{ID: t.ID}).Association("Categories").Replace(t.Categories)
	})
}

// DeleteIfNoCopies checks the dependent count and deletes inside a
// single transaction, so a copy created concurrently with the delete
// request still blocks it.
func (r *TitleRepo) DeleteIfNoCopies(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Copy{}).Where("title_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return model.ErrHasDependents
		}
		if err := tx.Model(&model.Title{ID: id}).Association("Categories").Clear(); err != nil {
			return err
		}
		res := tx.Delete(&model.Title{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return model.ErrNotFound
		}
		return nil
	})
}
