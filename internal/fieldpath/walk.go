// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package fieldpath addresses the translatable strings of a form definition.
// A single traversal feeds both discovery and application so the two can
// never disagree on where a string lives or how it is keyed.
package fieldpath

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/olegiv/ocms-formtrans/internal/model"
)

const repeaterSectionsProp = "repeater_sections"

// NodeTypeGroup is the node type reported for group labels.
const NodeTypeGroup = "group"

// Leaf is one translatable string inside a form.
type Leaf struct {
	Key     Key          `json:"-"`
	OwnerID int64        `json:"owner_id"`
	Kind    PropertyKind `json:"type"`
	Path    string       `json:"path"`
	Value   string       `json:"value"`
	Context string       `json:"context,omitempty"`
}

// Site is a leaf bound to the location in the tree it was read from.
type Site struct {
	Leaf
	set func(string)
}

// Set writes v back at the leaf's location.
func (s Site) Set(v string) {
	if s.set != nil {
		s.set(v)
	}
}

// Node is an owner visited by the traversal: a field, or a group for its label.
type Node struct {
	OwnerID       int64
	ParentOwnerID int64
	Path          string
	Type          string
	Label         string
	IsRepeater    bool
	InRepeater    bool
	HasOptions    bool
	Field         *model.Field
	Sites         []Site
}

// Walker traverses form definitions and reports owners with their leaves.
// Malformed parts of a definition are skipped and logged.
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a walker. A nil logger falls back to slog.Default.
func NewWalker(logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{logger: logger}
}

// Walk visits every owner of form in document order. Group nodes come before
// the fields of the group and a repeater comes before its children.
func (w *Walker) Walk(form *model.Form, visit func(*Node)) {
	if form == nil {
		return
	}
	log := w.logger.With("form_id", int64(form.ID))

	for gi := range form.Groups {
		g := &form.Groups[gi]
		if g.Label != "" {
			path := groupPath(gi)
			owner := groupOwnerID(g, gi)
			visit(&Node{
				OwnerID: owner,
				Path:    path,
				Type:    NodeTypeGroup,
				Label:   "Tab: " + g.Label,
				Sites: []Site{{
					Leaf: newLeaf(owner, KindGroupLabel, path, g.Label, ""),
					set:  func(v string) { g.Label = v },
				}},
			})
		}

		for si := range g.Sections {
			s := &g.Sections[si]
			for fi := range s.Fields {
				w.walkField(log, &s.Fields[fi], fieldPath(gi, si, fi), 0, visit)
			}
		}
	}
}

// groupOwnerID derives the owner of a group label. Negative values keep group
// owners apart from field ids.
func groupOwnerID(g *model.Group, index int) int64 {
	if g.ID > 0 {
		return -int64(g.ID)
	}
	return -int64(index + 1)
}

func (w *Walker) walkField(log *slog.Logger, f *model.Field, path string, parent int64, visit func(*Node)) {
	if f.ID <= 0 {
		log.Warn("skipping field without id", "path", path, "type", f.Type)
		return
	}
	owner := int64(f.ID)

	node := &Node{
		OwnerID:       owner,
		ParentOwnerID: parent,
		Path:          path,
		Type:          f.Type,
		Label:         f.Label,
		IsRepeater:    f.Type == model.FieldTypeRepeater,
		InRepeater:    parent != 0,
		Field:         f,
	}

	if f.Label != "" {
		node.Sites = append(node.Sites, Site{
			Leaf: newLeaf(owner, KindLabel, path, f.Label, ""),
			set:  func(v string) { f.Label = v },
		})
	}

	for _, kind := range SpecFor(f.Type).Meta {
		prop := string(kind)
		raw, ok := f.Meta[prop]
		if !ok {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			log.Warn("skipping non-string property", "path", path, "property", prop)
			continue
		}
		if value == "" {
			continue
		}
		meta := f.Meta
		node.Sites = append(node.Sites, Site{
			Leaf: newLeaf(owner, kind, metaPath(path, kind), value, ""),
			set:  func(v string) { meta[prop] = v },
		})
	}

	if IsChoiceKind(f.Type) {
		gridProp := GridProperty(f.Type)
		if raw, ok := f.Meta[gridProp]; ok {
			node.HasOptions = true
			node.Sites = append(node.Sites, w.optionSites(log, owner, path, gridProp, raw)...)
		}
	}

	visit(node)

	if node.IsRepeater {
		w.walkRepeater(log, f, path, visit)
	}
}

func (w *Walker) optionSites(log *slog.Logger, owner int64, path, gridProp string, raw any) []Site {
	grid, ok := raw.(map[string]any)
	if !ok {
		log.Warn("skipping malformed choice grid", "path", path, "property", gridProp)
		return nil
	}
	groups, ok := grid["groups"].([]any)
	if !ok {
		log.Warn("choice grid has no groups", "path", path, "property", gridProp)
		return nil
	}

	var sites []Site
	for gi, rawGroup := range groups {
		group, ok := rawGroup.(map[string]any)
		if !ok {
			log.Warn("skipping malformed choice group", "path", path, "group", gi)
			continue
		}
		rows, ok := group["rows"].([]any)
		if !ok {
			continue
		}
		for ri, rawRow := range rows {
			row, ok := rawRow.(map[string]any)
			if !ok {
				log.Warn("skipping malformed choice row", "path", path, "group", gi, "row", ri)
				continue
			}
			data, ok := row["data"].([]any)
			if !ok || len(data) == 0 {
				log.Warn("skipping choice row without data", "path", path, "group", gi, "row", ri)
				continue
			}
			text, ok := cellText(data[0])
			if !ok {
				log.Warn("skipping non-string choice text", "path", path, "group", gi, "row", ri)
				continue
			}
			if text == "" {
				continue
			}
			sites = append(sites, Site{
				Leaf: newLeaf(owner, KindOption, optionPath(path, gridProp, gi, ri), text, "option_"+strconv.Itoa(ri)+"_0"),
				set:  func(v string) { data[0] = v },
			})
		}
	}
	return sites
}

func (w *Walker) walkRepeater(log *slog.Logger, f *model.Field, path string, visit func(*Node)) {
	raw, ok := f.Meta[repeaterSectionsProp]
	if !ok {
		return
	}
	sections, ok := raw.([]any)
	if !ok {
		log.Warn("skipping malformed repeater sections", "path", path)
		return
	}

	for si, rawSection := range sections {
		section, ok := rawSection.(map[string]any)
		if !ok {
			log.Warn("skipping malformed repeater section", "path", path, "section", si)
			continue
		}
		fields, ok := section["fields"].([]any)
		if !ok {
			continue
		}
		for fi, rawField := range fields {
			fm, ok := rawField.(map[string]any)
			if !ok {
				log.Warn("skipping malformed repeater field", "path", path, "section", si, "field", fi)
				continue
			}
			child := fieldFromMap(fm)
			w.walkField(log, &child, repeaterFieldPath(path, si, fi), int64(f.ID), visit)
			// child.Meta aliases fm's meta bag; only the label needs copying back.
			if label, _ := fm["label"].(string); child.Label != label {
				fm["label"] = child.Label
			}
		}
	}
}

// cellText reads a choice cell. Numbers, such as sizes, are translatable
// text like any other option.
func cellText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// fieldFromMap views an untyped nested field as a model.Field. The returned
// field shares its meta bag with m.
func fieldFromMap(m map[string]any) model.Field {
	f := model.Field{ID: model.ID(idFromAny(m["id"]))}
	f.Type, _ = m["type"].(string)
	f.Label, _ = m["label"].(string)
	f.Meta, _ = m["meta"].(map[string]any)
	return f
}

func idFromAny(v any) int64 {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0
		}
		return n
	case float64:
		return int64(t)
	case int:
		return int64(t)
	case int64:
		return t
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func newLeaf(owner int64, kind PropertyKind, path, value, context string) Leaf {
	return Leaf{
		Key:     NewKey(owner, kind, path),
		OwnerID: owner,
		Kind:    kind,
		Path:    path,
		Value:   value,
		Context: context,
	}
}
