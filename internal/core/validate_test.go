//go:build unit

package core

import (
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"local-library/internal/core/model"
)

func TestNormalize_MultiValuedShapes(t *testing.T) {
	// absent -> empty list
	p := NewPipeline(url.Values{})
	p.EachField("categories", Trim, Escape)
	assert.Equal(t, []string{}, p.Values("categories"))

	// scalar -> one-element list
	id := uuid.NewString()
	p = NewPipeline(url.Values{"categories": {id}})
	p.EachField("categories", Trim, Escape)
	assert.Equal(t, []string{id}, p.Values("categories"))

	// list stays a list
	a, b := uuid.NewString(), uuid.NewString()
	p = NewPipeline(url.Values{"categories": {a, b}})
	p.EachField("categories", Trim, Escape)
	assert.Equal(t, []string{a, b}, p.Values("categories"))
}

func TestPipeline_NoShortCircuit(t *testing.T) {
	form := url.Values{
		"name":    {""},
		"creator": {uuid.NewString()},
		"summary": {""},
		"code":    {""},
	}
	p := validateTitleForm(form)

	require.False(t, p.Valid())
	vs := p.Violations()
	require.Len(t, vs, 3, "one violation per empty field, none for the valid one")
	assert.Equal(t, "name", vs[0].Field)
	assert.Equal(t, "summary", vs[1].Field)
	assert.Equal(t, "code", vs[2].Field)
}

func TestPipeline_SanitizersRewrite(t *testing.T) {
	p := NewPipeline(url.Values{"name": {"  <b>Dune</b>  "}})
	p.Field("name", Trim, Escape, Required("Name must not be empty."))

	assert.True(t, p.Valid())
	assert.Equal(t, "&lt;b&gt;Dune&lt;/b&gt;", p.Value("name"))
}

func TestCategoryName_Boundaries(t *testing.T) {
	cases := []struct {
		name  string
		value string
		valid bool
	}{
		{"two chars rejected", "ab", false},
		{"three chars accepted", "abc", true},
		{"hundred chars accepted", strings.Repeat("x", 100), true},
		{"hundred one chars rejected", strings.Repeat("x", 101), false},
		{"two chars with markup char rejected", "<a", false},
		{"hundred chars with ampersand accepted", "R&D " + strings.Repeat("x", 96), true},
		{"three ampersands accepted", "&&&", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validateCategoryForm(url.Values{"name": {tc.value}})
			assert.Equal(t, tc.valid, p.Valid())
		})
	}
}

func TestLengthMeasuredOnSubmittedChars(t *testing.T) {
	// length constraints see the user's characters; escaping happens after
	name := "R&D " + strings.Repeat("x", 96) // exactly 100 submitted chars
	p := validateCategoryForm(url.Values{"name": {name}})
	require.True(t, p.Valid())
	assert.Equal(t, "R&amp;D "+strings.Repeat("x", 96), p.Value("name"))

	p = validateCreatorForm(url.Values{
		"given_name":  {strings.Repeat("&", 100)},
		"family_name": {"O'Brien"},
	})
	require.True(t, p.Valid())
	assert.Equal(t, strings.Repeat("&amp;", 100), p.Value("given_name"))
	assert.Equal(t, "O&#39;Brien", p.Value("family_name"))
}

func TestValidID(t *testing.T) {
	rule := ValidID("bad id")

	_, msg := rule("")
	assert.Empty(t, msg, "empty passes; Required owns presence")

	_, msg = rule("not-a-uuid")
	assert.Equal(t, "bad id", msg)

	_, msg = rule(uuid.NewString())
	assert.Empty(t, msg)
}

func TestOptionalDate(t *testing.T) {
	rule := OptionalDate("bad date")

	_, msg := rule("")
	assert.Empty(t, msg)

	_, msg = rule("1965-08-01")
	assert.Empty(t, msg)

	_, msg = rule("August 1965")
	assert.Equal(t, "bad date", msg)
}

func TestPipeline_ViolationOrderStable(t *testing.T) {
	p := NewPipeline(url.Values{"name": {""}})
	p.Field("name", Required("empty"), MinLen(3, "too short"))

	vs := p.Violations()
	require.Len(t, vs, 2, "every rule runs even after a failure")
	assert.Equal(t, "empty", vs[0].Message)
	assert.Equal(t, "too short", vs[1].Message)
}

func TestMarkSelected_SetIntersection(t *testing.T) {
	a := model.Category{ID: uuid.New(), Name: "Fantasy"}
	b := model.Category{ID: uuid.New(), Name: "History"}
	c := model.Category{ID: uuid.New(), Name: "Poetry"}

	opts := MarkSelected([]model.Category{a, b, c}, []uuid.UUID{a.ID, c.ID})
	require.Len(t, opts, 3)
	assert.True(t, opts[0].Checked)
	assert.False(t, opts[1].Checked)
	assert.True(t, opts[2].Checked)

	// selection is by identifier membership, not slice identity
	opts = MarkSelected([]model.Category{a, b, c}, nil)
	for _, o := range opts {
		assert.False(t, o.Checked)
	}
}
