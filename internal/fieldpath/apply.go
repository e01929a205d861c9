// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package fieldpath

import "github.com/olegiv/ocms-formtrans/internal/model"

// Patch records one substitution made by Apply.
type Patch struct {
	Key      Key
	Path     string
	Original string
	Value    string
}

// Apply returns a copy of form with every leaf that has a non-empty entry in
// translations replaced by it. The input form is never modified. Leaves
// without a translation keep their source text. With no translations the
// input form itself is returned.
func (w *Walker) Apply(form *model.Form, translations map[Key]string) (*model.Form, []Patch) {
	if form == nil || len(translations) == 0 {
		return form, nil
	}

	out := form.Clone()
	var patches []Patch
	w.Walk(out, func(n *Node) {
		for _, s := range n.Sites {
			v, ok := translations[s.Key]
			if !ok || v == "" || v == s.Value {
				continue
			}
			s.Set(v)
			patches = append(patches, Patch{Key: s.Key, Path: s.Path, Original: s.Value, Value: v})
		}
	})
	return out, patches
}
