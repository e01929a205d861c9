// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-formtrans/internal/cache"
	"github.com/olegiv/ocms-formtrans/internal/catalog"
	"github.com/olegiv/ocms-formtrans/internal/fieldpath"
	"github.com/olegiv/ocms-formtrans/internal/model"
	"github.com/olegiv/ocms-formtrans/internal/source"
	"github.com/olegiv/ocms-formtrans/internal/store"
	"github.com/olegiv/ocms-formtrans/internal/testutil"
)

type staticLanguages []model.Language

func (l staticLanguages) List(context.Context) ([]model.Language, error) {
	return l, nil
}

var testLanguages = staticLanguages{
	{Code: "en", Name: "English", IsDefault: true},
	{Code: "de", Name: "Deutsch"},
	{Code: "fr", Name: "Français"},
	{Code: "pt_BR", Name: "Português (Brasil)"},
}

const contactForm = `{
  "id": 1,
  "label": "Contact",
  "groups": [{"id": 5, "label": "Main", "sections": [{"id": 1, "fields": [
    {"id": 1, "type": "text", "label": "Name"},
    {"id": 2, "type": "select", "label": "Color", "meta": {"data_grid_select": {"groups": [
      {"rows": [{"data": ["Red"]}, {"data": ["Blue"]}]}
    ]}}}
  ]}]}]
}`

type fixture struct {
	store    *Store
	catalog  *catalog.Catalog
	source   *source.Local
	renderer *Renderer
	caches   *cache.Manager
	queries  *store.Queries
}

func setup(t *testing.T, forms ...string) *fixture {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	logger := testutil.TestLoggerSilent()
	walker := fieldpath.NewWalker(logger)
	src := source.NewLocal(db)
	cat := catalog.New(db, src, walker, logger)

	for _, raw := range forms {
		form, err := model.DecodeFormBytes([]byte(raw))
		require.NoError(t, err)
		require.NoError(t, src.Put(ctx, form))
		_, err = cat.Scan(ctx, int64(form.ID), model.ScanTypeFull)
		require.NoError(t, err)
	}

	mem := cache.NewMemoryCache(cache.MemoryOptions{DefaultTTL: time.Hour})
	t.Cleanup(func() { _ = mem.Close() })
	caches := cache.NewManager(mem, logger)

	st := NewStore(db, cat, testLanguages, logger)
	st.SetInvalidator(caches)

	return &fixture{
		store:    st,
		catalog:  cat,
		source:   src,
		renderer: NewRenderer(st, walker, caches.Translations, logger),
		caches:   caches,
		queries:  store.New(db),
	}
}

// leaf returns the cataloged leaf of owner with the given kind and value.
func (f *fixture) leaf(t *testing.T, formID, owner int64, kind fieldpath.PropertyKind, value string) catalog.Leaf {
	t.Helper()
	leaves, err := f.catalog.Leaves(context.Background(), formID)
	require.NoError(t, err)
	for _, l := range leaves {
		if l.OwnerID == owner && l.Kind == string(kind) && l.Value == value {
			return l
		}
	}
	t.Fatalf("no %s leaf %q for owner %d", kind, value, owner)
	return catalog.Leaf{}
}

func (f *fixture) save(t *testing.T, formID int64, l catalog.Leaf, lang, value string) int64 {
	t.Helper()
	id, err := f.store.Save(context.Background(), SaveInput{
		FormID:          formID,
		OwnerID:         l.OwnerID,
		FieldPath:       l.Path,
		PropertyKind:    l.Kind,
		LanguageCode:    lang,
		OriginalValue:   l.Value,
		TranslatedValue: value,
	})
	require.NoError(t, err)
	return id
}

func optionTexts(t *testing.T, f model.Field, grid string) []string {
	t.Helper()
	g := f.Meta[grid].(map[string]any)["groups"].([]any)[0].(map[string]any)
	var out []string
	for _, r := range g["rows"].([]any) {
		out = append(out, r.(map[string]any)["data"].([]any)[0].(string))
	}
	return out
}

func TestSaveInput_Validate(t *testing.T) {
	valid := SaveInput{
		FormID:          7,
		OwnerID:         101,
		FieldPath:       "groups.0.sections.0.fields.0",
		PropertyKind:    "label",
		LanguageCode:    "de",
		TranslatedValue: "Name",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		edit  func(*SaveInput)
		field string
	}{
		{"zero form", func(in *SaveInput) { in.FormID = 0 }, "form_id"},
		{"missing owner", func(in *SaveInput) { in.OwnerID = 0 }, "field_id"},
		{"bad path", func(in *SaveInput) { in.FieldPath = "fields.0" }, "field_path"},
		{"unknown kind", func(in *SaveInput) { in.PropertyKind = "tooltip" }, "property_type"},
		{"upper case language", func(in *SaveInput) { in.LanguageCode = "DE" }, "language_code"},
		{"long language", func(in *SaveInput) { in.LanguageCode = "deu" }, "language_code"},
		{"blank value", func(in *SaveInput) { in.TranslatedValue = "  " }, "translated_value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)

			var verr *ValidationError
			require.ErrorAs(t, in.Validate(), &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	groupOwner := valid
	groupOwner.OwnerID = -11
	groupOwner.PropertyKind = "group_label"
	groupOwner.FieldPath = "groups.0"
	assert.NoError(t, groupOwner.Validate(), "group owners are negative")
}

func TestSave_RejectsInvalidWithoutWriting(t *testing.T) {
	f := setup(t, testutil.OrderForm)
	ctx := context.Background()

	_, err := f.store.Save(ctx, SaveInput{FormID: 7, OwnerID: 101, FieldPath: "groups.0.sections.0.fields.0", PropertyKind: "label", LanguageCode: "de_de", TranslatedValue: "x"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	rows, err := f.store.List(ctx, 7, "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSave_LastWriteWins(t *testing.T) {
	f := setup(t, testutil.OrderForm)
	ctx := context.Background()
	name := f.leaf(t, 7, 101, fieldpath.KindLabel, "Name")

	first := f.save(t, 7, name, "de", "Nome")
	second := f.save(t, 7, name, "de", "Name (de)")
	assert.Equal(t, first, second)

	rows, err := f.store.List(ctx, 7, "de")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Name (de)", rows[0].TranslatedValue)
	assert.Equal(t, "Name", rows[0].OriginalValue)
	assert.Equal(t, name.Key.PathHash(), rows[0].PathHash)
	assert.False(t, rows[0].LastSynced.IsZero())
}

func TestSave_SanitizesMarkup(t *testing.T) {
	f := setup(t, testutil.OrderForm)
	ctx := context.Background()
	name := f.leaf(t, 7, 101, fieldpath.KindLabel, "Name")

	f.save(t, 7, name, "de", `<b>Name</b><script>alert(1)</script>`)
	f.save(t, 7, name, "fr", "Nom ")

	de, err := f.store.List(ctx, 7, "de")
	require.NoError(t, err)
	assert.Equal(t, "<b>Name</b>", de[0].TranslatedValue)

	fr, err := f.store.List(ctx, 7, "fr")
	require.NoError(t, err)
	assert.Equal(t, "Nom ", fr[0].TranslatedValue, "surrounding whitespace is kept")
}

func TestSave_LanguageCodeMatchesConfigured(t *testing.T) {
	f := setup(t, contactForm)
	ctx := context.Background()
	name := f.leaf(t, 1, 1, fieldpath.KindLabel, "Name")

	f.save(t, 1, name, "pt-BR", "Nome")

	rows, err := f.store.List(ctx, 1, "pt_BR")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "pt_BR", rows[0].LanguageCode)

	form, err := f.source.Load(ctx, 1)
	require.NoError(t, err)
	out, patches, err := f.renderer.Translate(ctx, form, "pt_BR", false)
	require.NoError(t, err)
	require.Len(t, patches, 1)
	assert.Equal(t, "Nome", out.Groups[0].Sections[0].Fields[0].Label)

	missing, err := f.store.Missing(ctx, 1, "pt_BR")
	require.NoError(t, err)
	for _, m := range missing {
		assert.NotEqual(t, "Name", m.OriginalValue)
	}

	_, err = f.store.Save(ctx, SaveInput{
		FormID: 1, OwnerID: name.OwnerID, FieldPath: name.Path, PropertyKind: name.Kind,
		LanguageCode: "es", TranslatedValue: "Nombre",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "language_code")

	all, err := f.store.List(ctx, 1, "")
	require.NoError(t, err)
	assert.Len(t, all, 1, "unconfigured languages are not stored")
}

func TestBulkSave_CountsFailures(t *testing.T) {
	f := setup(t, testutil.OrderForm)
	ctx := context.Background()
	name := f.leaf(t, 7, 101, fieldpath.KindLabel, "Name")
	color := f.leaf(t, 7, 102, fieldpath.KindLabel, "Color")

	res := f.store.BulkSave(ctx, []SaveInput{
		{FormID: 7, OwnerID: name.OwnerID, FieldPath: name.Path, PropertyKind: name.Kind, LanguageCode: "de", TranslatedValue: "Name"},
		{FormID: 7, OwnerID: 101, FieldPath: name.Path, PropertyKind: "label", LanguageCode: "german", TranslatedValue: "x"},
		{FormID: 7, OwnerID: color.OwnerID, FieldPath: color.Path, PropertyKind: color.Kind, LanguageCode: "de", TranslatedValue: "Farbe"},
	})

	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Index)

	rows, err := f.store.List(ctx, 7, "de")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDelete(t *testing.T) {
	f := setup(t, testutil.OrderForm)
	ctx := context.Background()
	id := f.save(t, 7, f.leaf(t, 7, 101, fieldpath.KindLabel, "Name"), "de", "Name")

	require.NoError(t, f.store.Delete(ctx, id))
	assert.ErrorIs(t, f.store.Delete(ctx, id), ErrNotFound)
	assert.ErrorIs(t, f.store.Delete(ctx, 999), ErrNotFound)
}

func TestMissing_IsLeavesMinusTranslations(t *testing.T) {
	f := setup(t, testutil.OrderForm)
	ctx := context.Background()

	missing, err := f.store.Missing(ctx, 7, "de")
	require.NoError(t, err)
	assert.Len(t, missing, testutil.OrderFormLeaves)

	f.save(t, 7, f.leaf(t, 7, 101, fieldpath.KindLabel, "Name"), "de", "Name")
	f.save(t, 7, f.leaf(t, 7, 103, fieldpath.KindOption, "Medium"), "de", "Mittel")

	missing, err = f.store.Missing(ctx, 7, "de")
	require.NoError(t, err)
	assert.Len(t, missing, testutil.OrderFormLeaves-2)
	for _, m := range missing {
		assert.NotEqual(t, "Medium", m.OriginalValue)
	}

	var small bool
	for _, m := range missing {
		if m.OriginalValue == "Small" {
			small = true
			assert.Equal(t, "option", m.PropertyKind)
			assert.Equal(t, "Size", m.FieldLabel)
		}
	}
	assert.True(t, small, "sibling options stay missing")

	fr, err := f.store.Missing(ctx, 7, "fr")
	require.NoError(t, err)
	assert.Len(t, fr, testutil.OrderFormLeaves)
}

func TestStats(t *testing.T) {
	f := setup(t, testutil.OrderForm)
	ctx := context.Background()

	f.save(t, 7, f.leaf(t, 7, 101, fieldpath.KindLabel, "Name"), "de", "Name")
	f.save(t, 7, f.leaf(t, 7, 102, fieldpath.KindOption, "Red"), "de", "Rot")
	// Rows of a language that has since been removed from the configuration.
	red := f.leaf(t, 7, 102, fieldpath.KindOption, "Red")
	now := time.Now().UTC()
	_, err := f.queries.UpsertTranslation(ctx, store.UpsertTranslationParams{
		FormID:          7,
		OwnerID:         red.OwnerID,
		FieldPath:       red.Path,
		PathHash:        red.Key.PathHash(),
		PropertyKind:    red.Kind,
		LanguageCode:    "it",
		OriginalValue:   "Red",
		TranslatedValue: "Rosso",
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	require.NoError(t, err)

	stats, err := f.store.Stats(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, testutil.OrderFormFields, stats.TotalFields)
	assert.Equal(t, testutil.OrderFormLeaves, stats.TotalLeaves)

	require.Contains(t, stats.Languages, "de")
	assert.Equal(t, "Deutsch", stats.Languages["de"].Name)
	assert.Equal(t, 2, stats.Languages["de"].Translated)
	assert.InDelta(t, 14.3, stats.Languages["de"].Percentage, 0.001)

	assert.Equal(t, 0, stats.Languages["fr"].Translated)
	assert.Equal(t, "it", stats.Languages["it"].Name, "languages with rows are reported")
	assert.NotContains(t, stats.Languages, "en", "default language is not a target")
}

func TestPurge(t *testing.T) {
	f := setup(t, testutil.OrderForm)
	ctx := context.Background()
	f.save(t, 7, f.leaf(t, 7, 101, fieldpath.KindLabel, "Name"), "de", "Name")

	n, err := f.store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := f.store.List(ctx, 7, "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRenderer_NameColorScenario(t *testing.T) {
	f := setup(t, contactForm)
	ctx := context.Background()

	f.save(t, 1, f.leaf(t, 1, 2, fieldpath.KindOption, "Red"), "de", "Rot")
	f.save(t, 1, f.leaf(t, 1, 2, fieldpath.KindOption, "Blue"), "de", "Blau")

	form, err := f.source.Load(ctx, 1)
	require.NoError(t, err)

	out, patches, err := f.renderer.Translate(ctx, form, "de", false)
	require.NoError(t, err)
	assert.Len(t, patches, 2)

	fields := out.Groups[0].Sections[0].Fields
	assert.Equal(t, "Name", fields[0].Label, "untranslated label falls back to the original")
	assert.Equal(t, "Color", fields[1].Label)
	assert.Equal(t, []string{"Rot", "Blau"}, optionTexts(t, fields[1], "data_grid_select"))

	orig := form.Groups[0].Sections[0].Fields
	assert.Equal(t, []string{"Red", "Blue"}, optionTexts(t, orig[1], "data_grid_select"), "input is not modified")

	// A new save invalidates the cached map.
	f.save(t, 1, f.leaf(t, 1, 1, fieldpath.KindLabel, "Name"), "de", "Ihr Name")

	out, _, err = f.renderer.Translate(ctx, form, "de", false)
	require.NoError(t, err)
	fields = out.Groups[0].Sections[0].Fields
	assert.Equal(t, "Ihr Name", fields[0].Label)
	assert.Equal(t, []string{"Rot", "Blau"}, optionTexts(t, fields[1], "data_grid_select"))
}

func TestRenderer_NoOp(t *testing.T) {
	f := setup(t, contactForm)
	ctx := context.Background()
	f.save(t, 1, f.leaf(t, 1, 1, fieldpath.KindLabel, "Name"), "de", "Ihr Name")

	form, err := f.source.Load(ctx, 1)
	require.NoError(t, err)

	for _, tc := range []struct {
		name    string
		lang    string
		preview bool
	}{
		{"preview", "de", true},
		{"no language", "", false},
		{"no rows", "fr", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out, patches, err := f.renderer.Translate(ctx, form, tc.lang, tc.preview)
			require.NoError(t, err)
			assert.Same(t, form, out)
			assert.Empty(t, patches)
		})
	}

	out, _, err := f.renderer.Translate(ctx, nil, "de", false)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestRenderer_StoreErrorsSurface(t *testing.T) {
	f := setup(t, contactForm)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	form := &model.Form{ID: 1}
	_, _, err := NewRenderer(f.store, fieldpath.NewWalker(nil), nil, testutil.TestLoggerSilent()).Translate(ctx, form, "de", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

const surveyForm = `{
  "id": 3,
  "label": "Survey",
  "groups": [{"id": 9, "sections": [{"id": 1, "fields": [
    {"id": 31, "type": "email", "label": "Email"},
    {"id": 32, "type": "hidden", "label": "Language", "meta": {"default_value": ""}}
  ]}]}]
}`

func TestLanguageField(t *testing.T) {
	f := setup(t, surveyForm)
	ctx := context.Background()

	var verr *ValidationError
	_, err := f.store.SetLanguageField(ctx, 3, 99)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "field_id")

	_, err = f.store.SetLanguageField(ctx, 0, 32)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "form_id")

	_, ok, err := f.store.LanguageField(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	lf, err := f.store.SetLanguageField(ctx, 3, 32)
	require.NoError(t, err)
	assert.Equal(t, int64(32), lf.FieldID)

	got, ok, err := f.store.LanguageField(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(32), got.FieldID)

	require.NoError(t, f.store.ClearLanguageField(ctx, 3))
	assert.ErrorIs(t, f.store.ClearLanguageField(ctx, 3), ErrNoLanguageField)
}

func TestRenderer_SetsLanguageField(t *testing.T) {
	f := setup(t, surveyForm)
	ctx := context.Background()

	_, err := f.store.SetLanguageField(ctx, 3, 32)
	require.NoError(t, err)

	form, err := f.source.Load(ctx, 3)
	require.NoError(t, err)

	out, patches, err := f.renderer.Translate(ctx, form, "fr", false)
	require.NoError(t, err)
	assert.Empty(t, patches)
	assert.NotSame(t, form, out)
	assert.Equal(t, "fr", out.Groups[0].Sections[0].Fields[1].Meta[DefaultValueProperty])
	assert.Equal(t, "", form.Groups[0].Sections[0].Fields[1].Meta[DefaultValueProperty], "input is not modified")

	f.save(t, 3, f.leaf(t, 3, 31, fieldpath.KindLabel, "Email"), "de", "E-Mail")
	out, patches, err = f.renderer.Translate(ctx, form, "de", false)
	require.NoError(t, err)
	assert.Len(t, patches, 1)
	assert.Equal(t, "E-Mail", out.Groups[0].Sections[0].Fields[0].Label)
	assert.Equal(t, "de", out.Groups[0].Sections[0].Fields[1].Meta[DefaultValueProperty])

	out, _, err = f.renderer.Translate(ctx, form, "de", true)
	require.NoError(t, err)
	assert.Same(t, form, out, "previews are left alone")

	require.NoError(t, f.store.ClearLanguageField(ctx, 3))
	out, _, err = f.renderer.Translate(ctx, form, "fr", false)
	require.NoError(t, err)
	assert.Same(t, form, out)
}
