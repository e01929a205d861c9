// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package fieldpath

import (
	"strings"

	"github.com/olegiv/ocms-formtrans/internal/model"
)

// PropertyKind tags which string of an owner a leaf is.
type PropertyKind string

// Property kinds.
const (
	KindLabel               PropertyKind = "label"
	KindPlaceholder         PropertyKind = "placeholder"
	KindHelp                PropertyKind = "help"
	KindInvalidFeedback     PropertyKind = "invalid_feedback"
	KindTextEditor          PropertyKind = "text_editor"
	KindHTML                PropertyKind = "html"
	KindAriaLabel           PropertyKind = "aria_label"
	KindMinLabel            PropertyKind = "min_label"
	KindMaxLabel            PropertyKind = "max_label"
	KindPrefix              PropertyKind = "prefix"
	KindSuffix              PropertyKind = "suffix"
	KindText                PropertyKind = "text"
	KindLabelMaskRowPrepend PropertyKind = "label_mask_row_prepend"
	KindLabelMaskRowAppend  PropertyKind = "label_mask_row_append"
	KindOption              PropertyKind = "option"
	KindGroupLabel          PropertyKind = "group_label"
)

// metaKinds is the full registry of free-text meta properties. The meta key
// of each kind equals its name.
var metaKinds = []PropertyKind{
	KindPlaceholder,
	KindHelp,
	KindInvalidFeedback,
	KindTextEditor,
	KindHTML,
	KindAriaLabel,
	KindMinLabel,
	KindMaxLabel,
	KindPrefix,
	KindSuffix,
	KindText,
	KindLabelMaskRowPrepend,
	KindLabelMaskRowAppend,
}

var allKinds = func() map[PropertyKind]bool {
	m := map[PropertyKind]bool{
		KindLabel:      true,
		KindOption:     true,
		KindGroupLabel: true,
	}
	for _, k := range metaKinds {
		m[k] = true
	}
	return m
}()

// ParseKind converts a stored or client-supplied kind name.
func ParseKind(s string) (PropertyKind, bool) {
	k := PropertyKind(s)
	return k, allKinds[k]
}

// IsMeta reports whether the kind is stored under the field's meta bag.
func (k PropertyKind) IsMeta() bool {
	for _, m := range metaKinds {
		if m == k {
			return true
		}
	}
	return false
}

// KindSpec lists the string properties a field kind carries.
type KindSpec struct {
	Meta   []PropertyKind
	Choice bool
}

var inputSpec = KindSpec{Meta: []PropertyKind{
	KindPlaceholder, KindHelp, KindInvalidFeedback, KindAriaLabel, KindPrefix, KindSuffix,
}}

var kindSpecs = map[string]KindSpec{
	model.FieldTypeText:     inputSpec,
	model.FieldTypeEmail:    inputSpec,
	model.FieldTypeTel:      inputSpec,
	model.FieldTypeURL:      inputSpec,
	model.FieldTypeNumber:   inputSpec,
	model.FieldTypeDate:     inputSpec,
	model.FieldTypeTextarea: {Meta: []PropertyKind{KindPlaceholder, KindHelp, KindInvalidFeedback, KindAriaLabel}},
	model.FieldTypeRange: {Meta: []PropertyKind{
		KindHelp, KindInvalidFeedback, KindAriaLabel, KindMinLabel, KindMaxLabel, KindPrefix, KindSuffix,
	}},
	model.FieldTypeFile:       {Meta: []PropertyKind{KindHelp, KindInvalidFeedback, KindAriaLabel}},
	model.FieldTypeTextEditor: {Meta: []PropertyKind{KindTextEditor}},
	model.FieldTypeHTML:       {Meta: []PropertyKind{KindHTML}},
	model.FieldTypeSubmit:     {Meta: []PropertyKind{KindText, KindAriaLabel}},
	model.FieldTypeButton:     {Meta: []PropertyKind{KindText, KindAriaLabel}},
	model.FieldTypeRepeater:   {Meta: []PropertyKind{KindHelp, KindLabelMaskRowPrepend, KindLabelMaskRowAppend}},
}

// choiceBases are the plain choice kinds; priced variants add a "price_" prefix.
var choiceBases = map[string]KindSpec{
	model.FieldTypeSelect:   {Meta: []PropertyKind{KindPlaceholder, KindHelp, KindInvalidFeedback, KindAriaLabel}, Choice: true},
	model.FieldTypeRadio:    {Meta: []PropertyKind{KindHelp, KindInvalidFeedback, KindAriaLabel}, Choice: true},
	model.FieldTypeCheckbox: {Meta: []PropertyKind{KindHelp, KindInvalidFeedback, KindAriaLabel}, Choice: true},
}

const pricePrefix = "price_"

// SpecFor returns the property spec of a field kind. Unknown kinds get the
// full free-text registry so new builder kinds are still discovered.
func SpecFor(fieldType string) KindSpec {
	if spec, ok := kindSpecs[fieldType]; ok {
		return spec
	}
	if spec, ok := choiceBases[strings.TrimPrefix(fieldType, pricePrefix)]; ok {
		return spec
	}
	return KindSpec{Meta: metaKinds}
}

// IsChoiceKind reports whether fields of this kind carry a choice grid.
func IsChoiceKind(fieldType string) bool {
	_, ok := choiceBases[strings.TrimPrefix(fieldType, pricePrefix)]
	return ok
}

// GridProperty returns the meta property holding the choice grid of a kind,
// e.g. data_grid_select or data_grid_price_checkbox.
func GridProperty(fieldType string) string {
	return gridPrefix + fieldType
}

const gridPrefix = "data_grid_"
