package core

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"

	"local-library/internal/core/model"
	"local-library/internal/logger"
)

type TitleRepository interface {
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Title, error)
	List(ctx context.Context) ([]model.Title, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]model.Title, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Title, error)
	Create(ctx context.Context, t *model.Title) error
	Update(ctx context.Context, t *model.Title) error
	DeleteIfNoCopies(ctx context.Context, id uuid.UUID) error
}

type CreatorRepository interface {
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Creator, error)
	List(ctx context.Context) ([]model.Creator, error)
	Create(ctx context.Context, c *model.Creator) error
	Update(ctx context.Context, c *model.Creator) error
}

type CategoryRepository interface {
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Category, error)
	GetByName(ctx context.Context, name string) (model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Category, error)
	Create(ctx context.Context, c *model.Category) error
}

type CopyRepository interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.CopyStatus) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (model.Copy, error)
	List(ctx context.Context) ([]model.Copy, error)
	ListByTitle(ctx context.Context, titleID uuid.UUID) ([]model.Copy, error)
	Create(ctx context.Context, c *model.Copy) error
}

// Service implements the catalog use cases on top of the entity
// repositories. It holds no per-request state.
type Service struct {
	titles     TitleRepository
	creators   CreatorRepository
	categories CategoryRepository
	copies     CopyRepository
	log        *logger.Logger
}

func NewService(titles TitleRepository, creators CreatorRepository, categories CategoryRepository, copies CopyRepository, log *logger.Logger) *Service {
	return &Service{
		titles:     titles,
		creators:   creators,
		categories: categories,
		copies:     copies,
		log:        log.With("component", "CatalogService"),
	}
}

// DashboardCounts is the home page aggregate.
type DashboardCounts struct {
	Titles          int64 `json:"title_count"`
	Copies          int64 `json:"copy_count"`
	AvailableCopies int64 `json:"copy_available_count"`
	Creators        int64 `json:"creator_count"`
	Categories      int64 `json:"category_count"`
}

func (s *Service) Dashboard(ctx context.Context) (DashboardCounts, error) {
	var c DashboardCounts
	_, err := FetchAll(ctx, map[string]FetchFunc{
		"title_count": func(ctx context.Context) (any, error) {
			n, err := s.titles.Count(ctx)
			c.Titles = n
			return n, err
		},
		"copy_count": func(ctx context.Context) (any, error) {
			n, err := s.copies.Count(ctx)
			c.Copies = n
			return n, err
		},
		"copy_available_count": func(ctx context.Context) (any, error) {
			n, err := s.copies.CountByStatus(ctx, model.StatusAvailable)
			c.AvailableCopies = n
			return n, err
		},
		"creator_count": func(ctx context.Context) (any, error) {
			n, err := s.creators.Count(ctx)
			c.Creators = n
			return n, err
		},
		"category_count": func(ctx context.Context) (any, error) {
			n, err := s.categories.Count(ctx)
			c.Categories = n
			return n, err
		},
	})
	if err != nil {
		return DashboardCounts{}, err
	}
	return c, nil
}

func (s *Service) ListTitles(ctx context.Context) ([]model.Title, error) {
	return s.titles.List(ctx)
}

func (s *Service) ListCreators(ctx context.Context) ([]model.Creator, error) {
	return s.creators.List(ctx)
}

func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) ListCopies(ctx context.Context) ([]model.Copy, error) {
	return s.copies.List(ctx)
}

// TitleDetail is a title with its dereferenced creator and categories,
// plus every copy that references it.
type TitleDetail struct {
	Title  model.Title  `json:"title"`
	Copies []model.Copy `json:"copies"`
}

func (s *Service) TitleDetail(ctx context.Context, id uuid.UUID) (TitleDetail, error) {
	var d TitleDetail
	_, err := FetchAll(ctx, map[string]FetchFunc{
		"title": func(ctx context.Context) (any, error) {
			t, err := s.titles.GetByID(ctx, id)
			d.Title = t
			return t, err
		},
		"copies": func(ctx context.Context) (any, error) {
			cs, err := s.copies.ListByTitle(ctx, id)
			d.Copies = cs
			return cs, err
		},
	})
	if err != nil {
		return TitleDetail{}, err
	}
	return d, nil
}

type CreatorDetail struct {
	Creator model.Creator `json:"creator"`
	Titles  []model.Title `json:"titles"`
}

func (s *Service) CreatorDetail(ctx context.Context, id uuid.UUID) (CreatorDetail, error) {
	var d CreatorDetail
	_, err := FetchAll(ctx, map[string]FetchFunc{
		"creator": func(ctx context.Context) (any, error) {
			c, err := s.creators.GetByID(ctx, id)
			d.Creator = c
			return c, err
		},
		"titles": func(ctx context.Context) (any, error) {
			ts, err := s.titles.ListByCreator(ctx, id)
			d.Titles = ts
			return ts, err
		},
	})
	if err != nil {
		return CreatorDetail{}, err
	}
	return d, nil
}

type CategoryDetail struct {
	Category model.Category `json:"category"`
	Titles   []model.Title  `json:"titles"`
}

func (s *Service) CategoryDetail(ctx context.Context, id uuid.UUID) (CategoryDetail, error) {
	var d CategoryDetail
	_, err := FetchAll(ctx, map[string]FetchFunc{
		"category": func(ctx context.Context) (any, error) {
			c, err := s.categories.GetByID(ctx, id)
			d.Category = c
			return c, err
		},
		"titles": func(ctx context.Context) (any, error) {
			ts, err := s.titles.ListByCategory(ctx, id)
			d.Titles = ts
			return ts, err
		},
	})
	if err != nil {
		return CategoryDetail{}, err
	}
	return d, nil
}

func (s *Service) CopyDetail(ctx context.Context, id uuid.UUID) (model.Copy, error) {
	return s.copies.GetByID(ctx, id)
}

// referenceLists fetches all creators and all categories in parallel
// for the title form's selection widgets.
func (s *Service) referenceLists(ctx context.Context) ([]model.Creator, []model.Category, error) {
	var (
		creators   []model.Creator
		categories []model.Category
	)
	_, err := FetchAll(ctx, map[string]FetchFunc{
		"creators": func(ctx context.Context) (any, error) {
			cs, err := s.creators.List(ctx)
			creators = cs
			return cs, err
		},
		"categories": func(ctx context.Context) (any, error) {
			cs, err := s.categories.List(ctx)
			categories = cs
			return cs, err
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return creators, categories, nil
}

// Checks run before Escape throughout, so constraints apply to the
// characters the user submitted, not their entity-inflated form.
func validateTitleForm(form url.Values) *Pipeline {
	p := NewPipeline(form)
	p.EachField("categories", Trim, ValidID("Category selection is invalid."), Escape)
	p.Field("name", Trim, Required("Name must not be empty."), Escape)
	p.Field("creator", Trim, Required("Creator must not be empty."), ValidID("Creator selection is invalid."), Escape)
	p.Field("summary", Trim, Required("Summary must not be empty."), Escape)
	p.Field("code", Trim, Required("Code must not be empty."), Escape)
	return p
}

// titleFromForm rebuilds the (unsaved) title from sanitized input so a
// failed submission re-renders with the user's values intact.
func titleFromForm(p *Pipeline) *model.Title {
	creatorID, _ := uuid.Parse(p.Value("creator"))
	return &model.Title{
		Name:      p.Value("name"),
		Summary:   p.Value("summary"),
		Code:      p.Value("code"),
		CreatorID: creatorID,
	}
}

func (s *Service) titleFormFailure(ctx context.Context, p *Pipeline, selected []uuid.UUID) (*TitleFormState, error) {
	creators, categories, err := s.referenceLists(ctx)
	if err != nil {
		return nil, err
	}
	return &TitleFormState{
		Title:      titleFromForm(p),
		Creators:   creators,
		Categories: MarkSelected(categories, selected),
		Violations: p.Violations(),
	}, nil
}

func (s *Service) NewTitleForm(ctx context.Context) (*TitleFormState, error) {
	creators, categories, err := s.referenceLists(ctx)
	if err != nil {
		return nil, err
	}
	return &TitleFormState{
		Creators:   creators,
		Categories: MarkSelected(categories, nil),
	}, nil
}

// EditTitleForm pre-checks the categories already attached to the
// persisted title.
func (s *Service) EditTitleForm(ctx context.Context, id uuid.UUID) (*TitleFormState, error) {
	var (
		title      model.Title
		creators   []model.Creator
		categories []model.Category
	)
	_, err := FetchAll(ctx, map[string]FetchFunc{
		"title": func(ctx context.Context) (any, error) {
			t, err := s.titles.GetByID(ctx, id)
			title = t
			return t, err
		},
		"creators": func(ctx context.Context) (any, error) {
			cs, err := s.creators.List(ctx)
			creators = cs
			return cs, err
		},
		"categories": func(ctx context.Context) (any, error) {
			cs, err := s.categories.List(ctx)
			categories = cs
			return cs, err
		},
	})
	if err != nil {
		return nil, err
	}
	return &TitleFormState{
		Title:      &title,
		Creators:   creators,
		Categories: MarkSelected(categories, categoryIDs(title.Categories)),
	}, nil
}

// CreateTitle validates and persists a title submission. A non-nil
// form state means the submission was invalid and carries everything
// needed to re-render it; the error return is reserved for store
// failures.
func (s *Service) CreateTitle(ctx context.Context, form url.Values) (*model.Title, *TitleFormState, error) {
	p := validateTitleForm(form)
	selected := p.IDValues("categories")
	if !p.Valid() {
		state, err := s.titleFormFailure(ctx, p, selected)
		return nil, state, err
	}

	categories, err := s.categories.ListByIDs(ctx, selected)
	if err != nil {
		return nil, nil, err
	}

	t := titleFromForm(p)
	t.ID = uuid.New()
	t.Categories = categories
	if err := s.titles.Create(ctx, t); err != nil {
		return nil, nil, err
	}
	s.log.Info("title created", "id", t.ID)
	return t, nil, nil
}

// UpdateTitle keeps the identifier and replaces everything else,
// including the category set.
func (s *Service) UpdateTitle(ctx context.Context, id uuid.UUID, form url.Values) (*model.Title, *TitleFormState, error) {
	p := validateTitleForm(form)
	selected := p.IDValues("categories")
	if !p.Valid() {
		state, err := s.titleFormFailure(ctx, p, selected)
		if state != nil {
			if state.Title == nil {
				state.Title = &model.Title{}
			}
			state.Title.ID = id
		}
		return nil, state, err
	}

	categories, err := s.categories.ListByIDs(ctx, selected)
	if err != nil {
		return nil, nil, err
	}

	t := titleFromForm(p)
	t.ID = id
	t.Categories = categories
	if err := s.titles.Update(ctx, t); err != nil {
		return nil, nil, err
	}
	s.log.Info("title updated", "id", t.ID)
	return t, nil, nil
}

// TitleDeleteState is the delete confirmation view: the title and the
// copies blocking its deletion.
type TitleDeleteState struct {
	Title  model.Title  `json:"title"`
	Copies []model.Copy `json:"copies"`
}

func (s *Service) DeleteTitleForm(ctx context.Context, id uuid.UUID) (*TitleDeleteState, error) {
	var state TitleDeleteState
	_, err := FetchAll(ctx, map[string]FetchFunc{
		"title": func(ctx context.Context) (any, error) {
			t, err := s.titles.GetByID(ctx, id)
			state.Title = t
			return t, err
		},
		"copies": func(ctx context.Context) (any, error) {
			cs, err := s.copies.ListByTitle(ctx, id)
			state.Copies = cs
			return cs, err
		},
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// DeleteTitle refuses to delete a title that still has copies. A
// non-nil state means the deletion was blocked and lists the
// dependents; nil, nil means the title is gone. The store-level delete
// re-checks the dependent count in the same transaction, so a copy
// created after the read here still blocks the delete.
func (s *Service) DeleteTitle(ctx context.Context, id uuid.UUID) (*TitleDeleteState, error) {
	state, err := s.DeleteTitleForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(state.Copies) > 0 {
		return state, nil
	}

	err = s.titles.DeleteIfNoCopies(ctx, id)
	if errors.Is(err, model.ErrHasDependents) {
		return s.DeleteTitleForm(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("title deleted", "id", id)
	return nil, nil
}

func validateCategoryForm(form url.Values) *Pipeline {
	p := NewPipeline(form)
	p.Field("name", Trim,
		MinLen(3, "Category name must contain at least 3 characters."),
		MaxLen(100, "Category name must not exceed 100 characters."),
		Escape)
	return p
}

// CreateCategory applies find-or-create semantics: a name that already
// exists resolves to the existing record with no insert and no error.
func (s *Service) CreateCategory(ctx context.Context, form url.Values) (*model.Category, *CategoryFormState, error) {
	p := validateCategoryForm(form)
	if !p.Valid() {
		return nil, &CategoryFormState{
			Category:   &model.Category{Name: p.Value("name")},
			Violations: p.Violations(),
		}, nil
	}

	existing, err := s.categories.GetByName(ctx, p.Value("name"))
	if err == nil {
		return &existing, nil, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, nil, err
	}

	c := model.Category{ID: uuid.New(), Name: p.Value("name")}
	if err := s.categories.Create(ctx, &c); err != nil {
		return nil, nil, err
	}
	s.log.Info("category created", "id", c.ID, "name", c.Name)
	return &c, nil, nil
}

func validateCreatorForm(form url.Values) *Pipeline {
	p := NewPipeline(form)
	p.Field("given_name", Trim,
		Required("Given name must not be empty."),
		MaxLen(100, "Given name must not exceed 100 characters."),
		Escape)
	p.Field("family_name", Trim,
		Required("Family name must not be empty."),
		MaxLen(100, "Family name must not exceed 100 characters."),
		Escape)
	p.Field("birth_date", Trim, OptionalDate("Birth date must be a valid date."))
	p.Field("death_date", Trim, OptionalDate("Death date must be a valid date."))
	return p
}

func creatorFromForm(p *Pipeline) *model.Creator {
	return &model.Creator{
		GivenName:  p.Value("given_name"),
		FamilyName: p.Value("family_name"),
		BirthDate:  p.DateValue("birth_date"),
		DeathDate:  p.DateValue("death_date"),
	}
}

func (s *Service) CreateCreator(ctx context.Context, form url.Values) (*model.Creator, *CreatorFormState, error) {
	p := validateCreatorForm(form)
	if !p.Valid() {
		return nil, &CreatorFormState{Creator: creatorFromForm(p), Violations: p.Violations()}, nil
	}

	c := creatorFromForm(p)
	c.ID = uuid.New()
	if err := s.creators.Create(ctx, c); err != nil {
		return nil, nil, err
	}
	s.log.Info("creator created", "id", c.ID)
	return c, nil, nil
}

func (s *Service) EditCreatorForm(ctx context.Context, id uuid.UUID) (*CreatorFormState, error) {
	c, err := s.creators.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CreatorFormState{Creator: &c}, nil
}

func (s *Service) UpdateCreator(ctx context.Context, id uuid.UUID, form url.Values) (*model.Creator, *CreatorFormState, error) {
	p := validateCreatorForm(form)
	if !p.Valid() {
		c := creatorFromForm(p)
		c.ID = id
		return nil, &CreatorFormState{Creator: c, Violations: p.Violations()}, nil
	}

	c := creatorFromForm(p)
	c.ID = id
	if err := s.creators.Update(ctx, c); err != nil {
		return nil, nil, err
	}
	s.log.Info("creator updated", "id", c.ID)
	return c, nil, nil
}

func copyStatusStrings() []string {
	out := make([]string, len(model.CopyStatuses))
	for i, s := range model.CopyStatuses {
		out[i] = string(s)
	}
	return out
}

func validateCopyForm(form url.Values) *Pipeline {
	p := NewPipeline(form)
	p.Field("title", Trim,
		Required("Title must not be empty."),
		ValidID("Title selection is invalid."),
		Escape)
	p.Field("imprint", Trim, Required("Imprint must not be empty."), Escape)
	p.Field("status", Trim,
		Required("Status must not be empty."),
		OneOf(copyStatusStrings(), "Status must be a valid status."),
		Escape)
	p.Field("due_back", Trim, OptionalDate("Due back must be a valid date."))
	return p
}

func (s *Service) NewCopyForm(ctx context.Context) (*CopyFormState, error) {
	titles, err := s.titles.List(ctx)
	if err != nil {
		return nil, err
	}
	return &CopyFormState{Titles: titles, Statuses: model.CopyStatuses}, nil
}

func (s *Service) copyFormFailure(ctx context.Context, p *Pipeline) (*CopyFormState, error) {
	titles, err := s.titles.List(ctx)
	if err != nil {
		return nil, err
	}
	titleID, _ := uuid.Parse(p.Value("title"))
	return &CopyFormState{
		Copy: &model.Copy{
			TitleID: titleID,
			Imprint: p.Value("imprint"),
			Status:  model.CopyStatus(p.Value("status")),
			DueBack: p.DateValue("due_back"),
		},
		Titles:     titles,
		Statuses:   model.CopyStatuses,
		Violations: p.Violations(),
	}, nil
}

// CreateCopy requires the referenced title to exist at creation time;
// a dangling reference is a validation failure, not a store error.
func (s *Service) CreateCopy(ctx context.Context, form url.Values) (*model.Copy, *CopyFormState, error) {
	p := validateCopyForm(form)

	if p.Valid() {
		titleID, _ := uuid.Parse(p.Value("title"))
		if _, err := s.titles.GetByID(ctx, titleID); err != nil {
			if !errors.Is(err, model.ErrNotFound) {
				return nil, nil, err
			}
			p.Fail("title", "Title does not exist.")
		}
	}
	if !p.Valid() {
		state, err := s.copyFormFailure(ctx, p)
		return nil, state, err
	}

	titleID, _ := uuid.Parse(p.Value("title"))
	c := model.Copy{
		ID:      uuid.New(),
		TitleID: titleID,
		Imprint: p.Value("imprint"),
		Status:  model.CopyStatus(p.Value("status")),
		DueBack: p.DateValue("due_back"),
	}
	if err := s.copies.Create(ctx, &c); err != nil {
		return nil, nil, err
	}
	s.log.Info("copy created", "id", c.ID, "title_id", c.TitleID)
	return &c, nil, nil
}
