// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package fieldpath

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-formtrans/internal/model"
)

const orderForm = `{
  "id": 7,
  "label": "Order",
  "groups": [
    {"id": 11, "label": "Details", "sections": [{"id": 1, "fields": [
      {"id": 101, "type": "text", "label": "Name", "meta": {"placeholder": "Your name", "help": ""}},
      {"id": 102, "type": "select", "label": "Color", "meta": {"data_grid_select": {"groups": [
        {"rows": [{"id": 1, "data": ["Red", "r"]}, {"id": 2, "data": ["Blue", "b"]}]}
      ]}}},
      {"id": 103, "type": "price_radio", "label": "Size", "meta": {"data_grid_price_radio": {"groups": [
        {"rows": [{"data": ["Small", "1.00"]}, {"data": ["Medium", "2.00"]}, {"data": ["Large", "3.00"]}]}
      ]}}}
    ]}]},
    {"label": "Extras", "sections": [{"fields": [
      {"id": 201, "type": "repeater", "label": "Guests", "meta": {"repeater_sections": [
        {"fields": [{"id": "202", "type": "text", "label": "Guest name", "meta": {"placeholder": "Full name"}}]}
      ]}},
      {"id": 0, "type": "text", "label": "No id"},
      {"id": 203, "type": "submit", "label": "", "meta": {"text": "Send"}}
    ]}]}
  ]
}`

func testWalker() *Walker {
	return NewWalker(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func decode(t *testing.T, doc string) *model.Form {
	t.Helper()
	form, err := model.DecodeFormBytes([]byte(doc))
	require.NoError(t, err)
	return form
}

func leafByValue(t *testing.T, fields []DiscoveredField, value string) Leaf {
	t.Helper()
	for _, f := range fields {
		for _, l := range f.Leaves {
			if l.Value == value {
				return l
			}
		}
	}
	t.Fatalf("no leaf with value %q", value)
	return Leaf{}
}

func TestDiscover_OrderAndPaths(t *testing.T) {
	fields, err := testWalker().Discover(decode(t, orderForm))
	require.NoError(t, err)

	var owners []int64
	for _, f := range fields {
		owners = append(owners, f.OwnerID)
	}
	assert.Equal(t, []int64{-11, 101, 102, 103, -2, 201, 202, 203}, owners)

	name := fields[1]
	require.Len(t, name.Leaves, 2)
	assert.Equal(t, KindLabel, name.Leaves[0].Kind)
	assert.Equal(t, "groups.0.sections.0.fields.0", name.Leaves[0].Path)
	assert.Equal(t, KindPlaceholder, name.Leaves[1].Kind)
	assert.Equal(t, "groups.0.sections.0.fields.0.meta.placeholder", name.Leaves[1].Path)

	color := fields[2]
	assert.True(t, color.HasOptions)
	require.Len(t, color.Leaves, 3)
	assert.Equal(t, "groups.0.sections.0.fields.1.meta.data_grid_select.groups.0.rows.1.data.0", color.Leaves[2].Path)
	assert.Equal(t, "Blue", color.Leaves[2].Value)
	assert.Equal(t, "option_1_0", color.Leaves[2].Context)

	submit := fields[7]
	assert.Equal(t, "groups.1.sections.0.fields.2", submit.Path)
	require.Len(t, submit.Leaves, 1)
	assert.Equal(t, KindText, submit.Leaves[0].Kind)
	assert.Contains(t, submit.Structure, `"type":"submit"`)
}

func TestDiscover_OptionKeysDistinct(t *testing.T) {
	fields, err := testWalker().Discover(decode(t, orderForm))
	require.NoError(t, err)

	small := leafByValue(t, fields, "Small")
	medium := leafByValue(t, fields, "Medium")
	large := leafByValue(t, fields, "Large")

	assert.Equal(t, small.OwnerID, medium.OwnerID)
	assert.Equal(t, small.OwnerID, large.OwnerID)
	assert.NotEqual(t, small.Key, medium.Key)
	assert.NotEqual(t, small.Key, large.Key)
	assert.NotEqual(t, medium.Key, large.Key)
	assert.NotEqual(t, small.Key.PathHash(), medium.Key.PathHash())
	assert.Equal(t, "data_grid_price_radio.groups.0.rows.0.data.0", small.Key.Locator)
}

func TestDiscover_AllKeysUnique(t *testing.T) {
	fields, err := testWalker().Discover(decode(t, orderForm))
	require.NoError(t, err)

	seen := map[Key]bool{}
	for _, l := range Leaves(fields) {
		assert.False(t, seen[l.Key], "duplicate key %s", l.Key)
		seen[l.Key] = true
	}
	assert.Len(t, seen, 15)
}

func TestDiscover_GroupLabelOwners(t *testing.T) {
	fields, err := testWalker().Discover(decode(t, orderForm))
	require.NoError(t, err)

	details := leafByValue(t, fields, "Details")
	assert.Equal(t, int64(-11), details.OwnerID, "native group id is negated")
	assert.Equal(t, KindGroupLabel, details.Kind)
	assert.Equal(t, "groups.0", details.Path)

	extras := leafByValue(t, fields, "Extras")
	assert.Equal(t, int64(-2), extras.OwnerID, "groups without id fall back to position")
	assert.Equal(t, "Tab: Extras", fields[4].Label)
	assert.Equal(t, NodeTypeGroup, fields[4].Type)
}

func TestDiscover_RepeaterChildren(t *testing.T) {
	fields, err := testWalker().Discover(decode(t, orderForm))
	require.NoError(t, err)

	repeater := fields[5]
	assert.True(t, repeater.IsRepeater)
	assert.False(t, repeater.InRepeater)

	child := fields[6]
	assert.Equal(t, int64(202), child.OwnerID)
	assert.Equal(t, int64(201), child.ParentOwnerID)
	assert.True(t, child.InRepeater)
	assert.Equal(t, "groups.1.sections.0.fields.0.meta.repeater_sections.0.fields.0", child.Path)
	require.Len(t, child.Leaves, 2)
	assert.Equal(t, NewKey(202, KindLabel, child.Path), child.Leaves[0].Key)
}

func TestDiscover_SkipsFieldWithoutID(t *testing.T) {
	var buf bytes.Buffer
	w := NewWalker(slog.New(slog.NewTextHandler(&buf, nil)))

	fields, err := w.Discover(decode(t, orderForm))
	require.NoError(t, err)

	for _, l := range Leaves(fields) {
		assert.NotEqual(t, "No id", l.Value)
	}
	assert.Contains(t, buf.String(), "skipping field without id")
}

func TestDiscover_MalformedGridSkipped(t *testing.T) {
	doc := `{"id": 1, "groups": [{"sections": [{"fields": [
      {"id": 1, "type": "select", "label": "Broken", "meta": {"data_grid_select": "oops"}},
      {"id": 2, "type": "checkbox", "label": "Mixed", "meta": {"data_grid_checkbox": {"groups": [
        {"rows": [{"data": "nope"}, {"data": [true]}, "junk", {"data": ["Ok"]}]}
      ]}}},
      {"id": 3, "type": "text", "label": "After"}
    ]}]}]}`

	var buf bytes.Buffer
	w := NewWalker(slog.New(slog.NewTextHandler(&buf, nil)))
	fields, err := w.Discover(decode(t, doc))
	require.NoError(t, err)
	require.Len(t, fields, 3)

	assert.Len(t, fields[0].Leaves, 1, "only the label of a broken grid survives")
	assert.True(t, fields[0].HasOptions)

	require.Len(t, fields[1].Leaves, 2)
	assert.Equal(t, "Ok", fields[1].Leaves[1].Value)
	assert.Equal(t, "data_grid_checkbox.groups.0.rows.3.data.0", fields[1].Leaves[1].Key.Locator)

	assert.Equal(t, "After", fields[2].Leaves[0].Value)
	assert.Contains(t, buf.String(), "skipping malformed choice grid")
	assert.Contains(t, buf.String(), "skipping non-string choice text")
}

func TestDiscover_NumericChoiceText(t *testing.T) {
	doc := `{"id": 1, "groups": [{"sections": [{"fields": [
      {"id": 4, "type": "price_select", "label": "Shoe size", "meta": {"data_grid_price_select": {"groups": [
        {"rows": [{"data": [38, "49.90"]}, {"data": [39.5, "49.90"]}]}
      ]}}}
    ]}]}]}`

	w := testWalker()
	form := decode(t, doc)
	fields, err := w.Discover(form)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	require.Len(t, fields[0].Leaves, 3)
	assert.Equal(t, "38", fields[0].Leaves[1].Value)
	assert.Equal(t, KindOption, fields[0].Leaves[1].Kind)
	assert.Equal(t, "39.5", fields[0].Leaves[2].Value)

	out, patches := w.Apply(form, map[Key]string{fields[0].Leaves[1].Key: "38 EU"})
	require.Len(t, patches, 1)
	rows := out.Groups[0].Sections[0].Fields[0].Meta["data_grid_price_select"].(map[string]any)["groups"].([]any)[0].(map[string]any)["rows"].([]any)
	assert.Equal(t, "38 EU", rows[0].(map[string]any)["data"].([]any)[0])
	assert.Equal(t, json.Number("39.5"), rows[1].(map[string]any)["data"].([]any)[0], "untranslated cells keep their type")
}

func TestDiscover_DuplicateKeyDropped(t *testing.T) {
	doc := `{"id": 1, "groups": [{"sections": [{"fields": [
      {"id": 5, "type": "text", "label": "First"},
      {"id": 5, "type": "text", "label": "Second"}
    ]}]}]}`

	fields, err := testWalker().Discover(decode(t, doc))
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Len(t, fields[0].Leaves, 1)
	assert.Empty(t, fields[1].Leaves)
}

func TestDiscover_NilForm(t *testing.T) {
	_, err := testWalker().Discover(nil)
	assert.ErrorIs(t, err, ErrNilForm)
}

func TestDiscover_UnknownKindUsesFullRegistry(t *testing.T) {
	doc := `{"id": 1, "groups": [{"sections": [{"fields": [
      {"id": 9, "type": "signature", "label": "Sign", "meta": {"help": "Draw here", "min_label": "x"}}
    ]}]}]}`

	fields, err := testWalker().Discover(decode(t, doc))
	require.NoError(t, err)
	require.Len(t, fields[0].Leaves, 3)
	assert.Equal(t, KindHelp, fields[0].Leaves[1].Kind)
	assert.Equal(t, KindMinLabel, fields[0].Leaves[2].Kind)
}

func TestKey_StableWhenFieldMoves(t *testing.T) {
	before, err := testWalker().Discover(decode(t, orderForm))
	require.NoError(t, err)

	// Insert a new field in front of everything and move the tab order.
	moved := decode(t, orderForm)
	moved.Groups[0].Sections[0].Fields = append([]model.Field{{ID: 99, Type: "text", Label: "New"}},
		moved.Groups[0].Sections[0].Fields...)
	moved.Groups[0], moved.Groups[1] = moved.Groups[1], moved.Groups[0]

	after, err := testWalker().Discover(moved)
	require.NoError(t, err)

	for _, value := range []string{"Name", "Your name", "Red", "Blue", "Small", "Large", "Details", "Guest name"} {
		b := leafByValue(t, before, value)
		a := leafByValue(t, after, value)
		assert.NotEqual(t, b.Path, a.Path, "path of %q should change", value)
		assert.Equal(t, b.Key, a.Key, "key of %q should not change", value)
	}
}

func TestApply_Pure(t *testing.T) {
	w := testWalker()
	form := decode(t, orderForm)
	original, err := json.Marshal(form)
	require.NoError(t, err)

	red := NewKey(102, KindOption, "x.meta.data_grid_select.groups.0.rows.0.data.0")
	tr := map[Key]string{
		NewKey(101, KindLabel, ""):      "Vorname",
		red:                             "Rot",
		NewKey(202, KindLabel, ""):      "Gastname",
		NewKey(-11, KindGroupLabel, ""): "Einzelheiten",
	}
	out, patches := w.Apply(form, tr)

	after, err := json.Marshal(form)
	require.NoError(t, err)
	assert.JSONEq(t, string(original), string(after), "input must not be mutated")

	assert.Len(t, patches, 4)
	assert.Equal(t, "Vorname", out.Groups[0].Sections[0].Fields[0].Label)
	assert.Equal(t, "Einzelheiten", out.Groups[0].Label)

	fields, err := w.Discover(out)
	require.NoError(t, err)
	assert.Equal(t, int64(102), leafByValue(t, fields, "Rot").OwnerID)
	assert.Equal(t, "Blue", fields[2].Leaves[2].Value)
	assert.Equal(t, int64(202), leafByValue(t, fields, "Gastname").OwnerID)
}

func TestApply_NoTranslationsReturnsInput(t *testing.T) {
	form := decode(t, orderForm)

	out, patches := testWalker().Apply(form, nil)
	assert.Same(t, form, out)
	assert.Empty(t, patches)

	out, patches = testWalker().Apply(form, map[Key]string{NewKey(9999, KindLabel, ""): "x"})
	assert.Empty(t, patches)
	assert.Equal(t, form.Groups, out.Groups)
}

func TestApply_EmptyValueFallsBack(t *testing.T) {
	form := decode(t, orderForm)
	out, patches := testWalker().Apply(form, map[Key]string{NewKey(101, KindLabel, ""): ""})
	assert.Empty(t, patches)
	assert.Equal(t, "Name", out.Groups[0].Sections[0].Fields[0].Label)
}

func TestApply_KeepsNonTextConfig(t *testing.T) {
	form := decode(t, orderForm)
	path := "groups.0.sections.0.fields.2.meta.data_grid_price_radio.groups.0.rows.1.data.0"
	out, _ := testWalker().Apply(form, map[Key]string{NewKey(103, KindOption, path): "Mittel"})

	grid := out.Groups[0].Sections[0].Fields[2].Meta["data_grid_price_radio"].(map[string]any)
	row := grid["groups"].([]any)[0].(map[string]any)["rows"].([]any)[1].(map[string]any)
	assert.Equal(t, []any{"Mittel", "2.00"}, row["data"])
	assert.Equal(t, model.ID(103), out.Groups[0].Sections[0].Fields[2].ID)
}

// One text field and one choice field translated to German, with and without
// a translation for the text label.
func TestApply_NameColorScenario(t *testing.T) {
	doc := `{"id": 1, "groups": [{"sections": [{"fields": [
      {"id": 1, "type": "text", "label": "Name"},
      {"id": 2, "type": "radio", "label": "Color", "meta": {"data_grid_radio": {"groups": [
        {"rows": [{"data": ["Red"]}, {"data": ["Blue"]}]}
      ]}}}
    ]}]}]}`
	w := testWalker()
	form := decode(t, doc)

	fields, err := w.Discover(form)
	require.NoError(t, err)
	red := leafByValue(t, fields, "Red")
	blue := leafByValue(t, fields, "Blue")

	options := map[Key]string{
		NewKey(red.OwnerID, red.Kind, red.Path):   "Rot",
		NewKey(blue.OwnerID, blue.Kind, blue.Path): "Blau",
	}

	t.Run("label fallback", func(t *testing.T) {
		out, _ := w.Apply(form, options)
		got, err := w.Discover(out)
		require.NoError(t, err)
		assert.Equal(t, "Name", got[0].Leaves[0].Value)
		assert.Equal(t, "Rot", got[1].Leaves[1].Value)
		assert.Equal(t, "Blau", got[1].Leaves[2].Value)
	})

	t.Run("label overwritten", func(t *testing.T) {
		tr := map[Key]string{NewKey(1, KindLabel, "groups.0.sections.0.fields.0"): "Vollständiger Name"}
		for k, v := range options {
			tr[k] = v
		}
		out, patches := w.Apply(form, tr)
		assert.Len(t, patches, 3)
		got, err := w.Discover(out)
		require.NoError(t, err)
		assert.Equal(t, "Vollständiger Name", got[0].Leaves[0].Value)
		assert.Equal(t, "Color", got[1].Leaves[0].Value)
		assert.Equal(t, "Rot", got[1].Leaves[1].Value)
		assert.Equal(t, "Blau", got[1].Leaves[2].Value)
	})
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"group", "groups.0", false},
		{"field", "groups.0.sections.1.fields.2", false},
		{"meta", "groups.0.sections.1.fields.2.meta.placeholder", false},
		{"option", "groups.0.sections.0.fields.1.meta.data_grid_price_select.groups.0.rows.3.data.0", false},
		{"repeater", "groups.1.sections.0.fields.0.meta.repeater_sections.0.fields.0", false},
		{"empty", "", true},
		{"not a group", "sections.0", true},
		{"group without index", "groups.sections.0", true},
		{"double index", "groups.0.1", true},
		{"empty segment", "groups..0", true},
		{"uppercase", "groups.0.Sections.1", true},
		{"negative", "groups.-1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.path, p.String())
		})
	}
}

func TestOptionLocator(t *testing.T) {
	assert.Equal(t, "data_grid_select.groups.0.rows.2.data.0",
		OptionLocator("groups.0.sections.0.fields.1.meta.data_grid_select.groups.0.rows.2.data.0"))
	assert.Equal(t, "data_grid_radio.groups.1.rows.0.data.0",
		OptionLocator("groups.0.sections.0.fields.0.meta.repeater_sections.0.fields.0.meta.data_grid_radio.groups.1.rows.0.data.0"))
	assert.Equal(t, "groups.0", OptionLocator("groups.0"))
}

func TestNewKey(t *testing.T) {
	k := NewKey(5, KindLabel, "groups.0.sections.0.fields.0")
	assert.Empty(t, k.Locator)
	assert.Equal(t, "5::label", k.String())

	opt := NewKey(5, KindOption, "groups.0.sections.0.fields.0.meta.data_grid_select.groups.0.rows.0.data.0")
	assert.Equal(t, "5::option::data_grid_select.groups.0.rows.0.data.0", opt.String())
	assert.Len(t, opt.PathHash(), 64)
	assert.NotEqual(t, k.PathHash(), opt.PathHash())
}

func TestSpecFor(t *testing.T) {
	assert.True(t, IsChoiceKind("price_checkbox"))
	assert.True(t, IsChoiceKind("select"))
	assert.False(t, IsChoiceKind("text"))
	assert.Equal(t, "data_grid_price_checkbox", GridProperty("price_checkbox"))
	assert.True(t, SpecFor("price_select").Choice)
	assert.Contains(t, SpecFor("range").Meta, KindMinLabel)
	assert.Equal(t, metaKinds, SpecFor("unknown").Meta)

	k, ok := ParseKind("aria_label")
	assert.True(t, ok)
	assert.Equal(t, KindAriaLabel, k)
	_, ok = ParseKind("bogus")
	assert.False(t, ok)
	assert.True(t, KindHelp.IsMeta())
	assert.False(t, KindOption.IsMeta())
}
