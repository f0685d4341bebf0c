//go:build unit

package adapter

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"local-library/internal/core/model"
	"local-library/internal/db"
	"local-library/internal/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenEphemeral()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func seedGraph(t *testing.T, gdb *gorm.DB) (model.Creator, model.Category, model.Title) {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()

	creator := model.Creator{ID: uuid.New(), GivenName: "Mary", FamilyName: "Shelley"}
	require.NoError(t, NewCreatorRepo(gdb, log).Create(ctx, &creator))

	category := model.Category{ID: uuid.New(), Name: "Gothic"}
	require.NoError(t, NewCategoryRepo(gdb, log).Create(ctx, &category))

	title := model.Title{
		ID:         uuid.New(),
		Name:       "Frankenstein",
		Summary:    "A modern Prometheus",
		Code:       "9780141439471",
		CreatorID:  creator.ID,
		Categories: []model.Category{category},
	}
	require.NoError(t, NewTitleRepo(gdb, log).Create(ctx, &title))
	return creator, category, title
}

func TestTitleRepo_GetByID_ResolvesReferences(t *testing.T) {
	gdb := testDB(t)
	creator, category, title := seedGraph(t, gdb)
	r := NewTitleRepo(gdb, logger.Nop())

	got, err := r.GetByID(context.Background(), title.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frankenstein", got.Name)
	assert.Equal(t, creator.DisplayName(), got.Creator.DisplayName())
	require.Len(t, got.Categories, 1)
	assert.Equal(t, category.Name, got.Categories[0].Name)
}

func TestTitleRepo_GetByID_Missing(t *testing.T) {
	r := NewTitleRepo(testDB(t), logger.Nop())

	_, err := r.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTitleRepo_ListByCategory(t *testing.T) {
	gdb := testDB(t)
	_, category, title := seedGraph(t, gdb)
	r := NewTitleRepo(gdb, logger.Nop())

	got, err := r.ListByCategory(context.Background(), category.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, title.ID, got[0].ID)

	none, err := r.ListByCategory(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTitleRepo_Update_ReplacesCategorySet(t *testing.T) {
	gdb := testDB(t)
	_, _, title := seedGraph(t, gdb)
	ctx := context.Background()
	log := logger.Nop()

	next := model.Category{ID: uuid.New(), Name: "Horror"}
	require.NoError(t, NewCategoryRepo(gdb, log).Create(ctx, &next))

	r := NewTitleRepo(gdb, log)
	title.Name = "Frankenstein; or, The Modern Prometheus"
	title.Categories = []model.Category{next}
	require.NoError(t, r.Update(ctx, &title))

	got, err := r.GetByID(ctx, title.ID)
	require.NoError(t, err)
	assert.Equal(t, "Frankenstein; or, The Modern Prometheus", got.Name)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, next.ID, got.Categories[0].ID)
}

func TestTitleRepo_Update_Missing(t *testing.T) {
	r := NewTitleRepo(testDB(t), logger.Nop())

	err := r.Update(context.Background(), &model.Title{ID: uuid.New(), Name: "Ghost"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTitleRepo_DeleteIfNoCopies(t *testing.T) {
	gdb := testDB(t)
	_, _, title := seedGraph(t, gdb)
	ctx := context.Background()
	log := logger.Nop()
	titles := NewTitleRepo(gdb, log)
	copies := NewCopyRepo(gdb, log)

	c := model.Copy{ID: uuid.New(), TitleID: title.ID, Status: model.StatusAvailable, Imprint: "Penguin Classics"}
	require.NoError(t, copies.Create(ctx, &c))

	err := titles.DeleteIfNoCopies(ctx, title.ID)
	assert.ErrorIs(t, err, model.ErrHasDependents)
	_, err = titles.GetByID(ctx, title.ID)
	assert.NoError(t, err, "blocked delete leaves the title intact")

	// with the copy gone the delete proceeds
	require.NoError(t, gdb.Delete(&model.Copy{}, "id = ?", c.ID).Error)
	require.NoError(t, titles.DeleteIfNoCopies(ctx, title.ID))
	_, err = titles.GetByID(ctx, title.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTitleRepo_DeleteIfNoCopies_Missing(t *testing.T) {
	r := NewTitleRepo(testDB(t), logger.Nop())

	err := r.DeleteIfNoCopies(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCategoryRepo_GetByName(t *testing.T) {
	gdb := testDB(t)
	_, category, _ := seedGraph(t, gdb)
	r := NewCategoryRepo(gdb, logger.Nop())
	ctx := context.Background()

	got, err := r.GetByName(ctx, "Gothic")
	require.NoError(t, err)
	assert.Equal(t, category.ID, got.ID)

	_, err = r.GetByName(ctx, "gothic")
	assert.ErrorIs(t, err, model.ErrNotFound, "lookup is exact match")
}

func TestCategoryRepo_ListByIDs_DropsUnknown(t *testing.T) {
	gdb := testDB(t)
	_, category, _ := seedGraph(t, gdb)
	r := NewCategoryRepo(gdb, logger.Nop())
	ctx := context.Background()

	got, err := r.ListByIDs(ctx, []uuid.UUID{category.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, category.ID, got[0].ID)

	empty, err := r.ListByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCopyRepo_CountByStatus(t *testing.T) {
	gdb := testDB(t)
	_, _, title := seedGraph(t, gdb)
	r := NewCopyRepo(gdb, logger.Nop())
	ctx := context.Background()

	for _, s := range []model.CopyStatus{model.StatusAvailable, model.StatusAvailable, model.StatusLoaned} {
		c := model.Copy{ID: uuid.New(), TitleID: title.ID, Status: s, Imprint: "x"}
		require.NoError(t, r.Create(ctx, &c))
	}

	n, err := r.CountByStatus(ctx, model.StatusAvailable)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	total, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestCreatorRepo_UpdateAndMissing(t *testing.T) {
	gdb := testDB(t)
	creator, _, _ := seedGraph(t, gdb)
	r := NewCreatorRepo(gdb, logger.Nop())
	ctx := context.Background()

	creator.FamilyName = "Wollstonecraft Shelley"
	require.NoError(t, r.Update(ctx, &creator))

	got, err := r.GetByID(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wollstonecraft Shelley", got.FamilyName)

	err = r.Update(ctx, &model.Creator{ID: uuid.New(), GivenName: "No", FamilyName: "One"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
