package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// All core models live here together for simplicity.

var (
	ErrNotFound      = errors.New("not_found")
	ErrHasDependents = errors.New("has_dependents")
)

// CopyStatus is the circulation state of a single physical copy.
type CopyStatus string

const (
	StatusAvailable   CopyStatus = "Available"
	StatusMaintenance CopyStatus = "Maintenance"
	StatusLoaned      CopyStatus = "Loaned"
	StatusReserved    CopyStatus = "Reserved"
)

// CopyStatuses lists every valid status, in form display order.
var CopyStatuses = []CopyStatus{StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved}

func ValidCopyStatus(s string) bool {
	for _, v := range CopyStatuses {
		if string(v) == s {
			return true
		}
	}
	return false
}

type Title struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string     `json:"name"`
	Summary    string     `json:"summary"`
	Code       string     `json:"code"` // external identifier, e.g. ISBN
	CreatorID  uuid.UUID  `gorm:"type:uuid" json:"creator_id"`
	Creator    Creator    `json:"creator"`
	Categories []Category `gorm:"many2many:title_categories" json:"categories"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (t Title) DetailPath() string {
	return "/catalog/title/" + t.ID.String()
}

type Creator struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	GivenName  string     `json:"given_name"`
	FamilyName string     `json:"family_name"`
	BirthDate  *time.Time `json:"birth_date,omitempty"`
	DeathDate  *time.Time `json:"death_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// DisplayName is the composite "Family, Given" form used in lists and
// selection widgets.
func (c Creator) DisplayName() string {
	if c.FamilyName == "" && c.GivenName == "" {
		return ""
	}
	return c.FamilyName + ", " + c.GivenName
}

// Lifespan renders "birth - death" with either side empty when unknown.
func (c Creator) Lifespan() string {
	return FormatDate(c.BirthDate) + " - " + FormatDate(c.DeathDate)
}

func (c Creator) DetailPath() string {
	return "/catalog/creator/" + c.ID.String()
}

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `json:"name"` // 3..100 chars, soft-unique
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Category) DetailPath() string {
	return "/catalog/category/" + c.ID.String()
}

type Copy struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TitleID   uuid.UUID  `gorm:"type:uuid" json:"title_id"`
	Title     Title      `json:"title"`
	Status    CopyStatus `json:"status"`
	DueBack   *time.Time `json:"due_back,omitempty"`
	Imprint   string     `json:"imprint"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c Copy) DetailPath() string {
	return "/catalog/copy/" + c.ID.String()
}

func (c Copy) DueBackDisplay() string {
	return FormatDate(c.DueBack)
}

// FormatDate renders an optional date in medium form ("Jan 2, 2006"),
// empty when absent. Derived text always goes through here so every
// caller reads the same canonical date fields.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// Violation is a single field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
