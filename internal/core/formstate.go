package core

import (
	"github.com/google/uuid"

	"local-library/internal/core/model"
)

// CategoryOption is a Category as it appears in a selection widget,
// carrying whether its control should be pre-checked.
type CategoryOption struct {
	model.Category
	Checked bool `json:"checked"`
}

// MarkSelected annotates the full category list with selection flags.
// Selection is the ID-set intersection of the categories on the form
// and the categories to check, never object identity.
func MarkSelected(all []model.Category, checked []uuid.UUID) []CategoryOption {
	set := make(map[uuid.UUID]struct{}, len(checked))
	for _, id := range checked {
		set[id] = struct{}{}
	}
	out := make([]CategoryOption, len(all))
	for i, c := range all {
		_, ok := set[c.ID]
		out[i] = CategoryOption{Category: c, Checked: ok}
	}
	return out
}

func categoryIDs(cats []model.Category) []uuid.UUID {
	ids := make([]uuid.UUID, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	return ids
}

// TitleFormState is everything a title create/edit form needs to
// render: the reference lists, the (unsaved or persisted) title whose
// values fill the inputs, and the ordered violation list.
type TitleFormState struct {
	Title      *model.Title      `json:"title,omitempty"`
	Creators   []model.Creator   `json:"creators"`
	Categories []CategoryOption  `json:"categories"`
	Violations []model.Violation `json:"violations,omitempty"`
}

type CreatorFormState struct {
	Creator    *model.Creator    `json:"creator,omitempty"`
	Violations []model.Violation `json:"violations,omitempty"`
}

type CategoryFormState struct {
	Category   *model.Category   `json:"category,omitempty"`
	Violations []model.Violation `json:"violations,omitempty"`
}

// CopyFormState carries the title list for the copy form's selector
// alongside the usual submitted values and violations.
type CopyFormState struct {
	Copy       *model.Copy        `json:"copy,omitempty"`
	Titles     []model.Title      `json:"titles"`
	Statuses   []model.CopyStatus `json:"statuses"`
	Violations []model.Violation  `json:"violations,omitempty"`
}
