// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package fieldpath

import (
	"encoding/json"
	"errors"

	"github.com/olegiv/ocms-formtrans/internal/model"
)

// ErrNilForm is returned when discovery is asked to resolve no form.
var ErrNilForm = errors.New("form is nil")

// DiscoveredField is an owner found in a form together with its leaves.
type DiscoveredField struct {
	OwnerID       int64
	ParentOwnerID int64
	Path          string
	Type          string
	Label         string
	IsRepeater    bool
	InRepeater    bool
	HasOptions    bool
	// Structure is the field's own JSON, empty for group owners.
	Structure string
	Leaves    []Leaf
}

// Discover lists every owner of form with its translatable leaves in
// document order. The form is not modified. A leaf whose key repeats an
// earlier one is dropped with a warning.
func (w *Walker) Discover(form *model.Form) ([]DiscoveredField, error) {
	if form == nil {
		return nil, ErrNilForm
	}

	seen := make(map[Key]string)
	var out []DiscoveredField

	w.Walk(form, func(n *Node) {
		df := DiscoveredField{
			OwnerID:       n.OwnerID,
			ParentOwnerID: n.ParentOwnerID,
			Path:          n.Path,
			Type:          n.Type,
			Label:         n.Label,
			IsRepeater:    n.IsRepeater,
			InRepeater:    n.InRepeater,
			HasOptions:    n.HasOptions,
		}
		if n.Field != nil {
			if b, err := json.Marshal(n.Field); err == nil {
				df.Structure = string(b)
			}
		}

		for _, s := range n.Sites {
			if prev, dup := seen[s.Key]; dup {
				w.logger.Warn("dropping leaf with duplicate key",
					"form_id", int64(form.ID), "key", s.Key.String(), "path", s.Path, "first_path", prev)
				continue
			}
			seen[s.Key] = s.Path
			df.Leaves = append(df.Leaves, s.Leaf)
		}
		out = append(out, df)
	})

	return out, nil
}

// Leaves flattens discovered fields into their leaves.
func Leaves(fields []DiscoveredField) []Leaf {
	var out []Leaf
	for _, f := range fields {
		out = append(out, f.Leaves...)
	}
	return out
}
