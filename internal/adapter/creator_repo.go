package adapter

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"local-library/internal/core/model"
	"local-library/internal/logger"
)

type CreatorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCreatorRepo(db *gorm.DB, baseLog *logger.Logger) *CreatorRepo {
	return &CreatorRepo{db: db, log: baseLog.With("repo", "CreatorRepo")}
}

func (r *CreatorRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Creator{}).Count(&n).Error
	return n, err
}

func (r *CreatorRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Creator, error) {
	var c model.Creator
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Creator{}, model.ErrNotFound
	}
	return c, err
}

func (r *CreatorRepo) List(ctx context.Context) ([]model.Creator, error) {
	var out []model.Creator
	err := r.db.WithContext(ctx).Order("family_name, given_name").Find(&out).Error
	return out, err
}

func (r *CreatorRepo) Create(ctx context.Context, c *model.Creator) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CreatorRepo) Update(ctx context.Context, c *model.Creator) error {
	updates := map[string]any{
		"given_name":  c.GivenName,
		"family_name": c.FamilyName,
		"birth_date":  c.BirthDate,
		"death_date":  c.DeathDate,
	}
	res := r.db.WithContext(ctx).Model(&model.Creator{}).Where("id = ?", c.ID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
