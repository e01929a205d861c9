// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package fieldpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned by ParsePath for malformed structural paths.
var ErrInvalidPath = errors.New("invalid field path")

// Step is one element of a structural path: a container or property name,
// optionally followed by an index.
type Step struct {
	Name     string
	Index    int
	HasIndex bool
}

// Path is a parsed structural path such as
// groups.0.sections.1.fields.2.meta.data_grid_select.groups.0.rows.3.data.0.
type Path []Step

// ParsePath parses a dotted structural path. Paths always start at a group.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}

	var p Path
	for _, tok := range strings.Split(s, ".") {
		if tok == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidPath, s)
		}
		if n, err := strconv.Atoi(tok); err == nil {
			if n < 0 || len(p) == 0 || p[len(p)-1].HasIndex {
				return nil, fmt.Errorf("%w: unexpected index %q in %q", ErrInvalidPath, tok, s)
			}
			p[len(p)-1].Index = n
			p[len(p)-1].HasIndex = true
			continue
		}
		if !isName(tok) {
			return nil, fmt.Errorf("%w: bad segment %q in %q", ErrInvalidPath, tok, s)
		}
		p = append(p, Step{Name: tok})
	}

	if p[0].Name != "groups" || !p[0].HasIndex {
		return nil, fmt.Errorf("%w: %q does not start at a group", ErrInvalidPath, s)
	}
	return p, nil
}

// String serializes the path back to its dotted form.
func (p Path) String() string {
	var sb strings.Builder
	for i, st := range p {
		if i > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(st.Name)
		if st.HasIndex {
			sb.WriteByte('.')
			sb.WriteString(strconv.Itoa(st.Index))
		}
	}
	return sb.String()
}

func isName(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// groupPath returns the path of group gi.
func groupPath(gi int) string {
	return "groups." + strconv.Itoa(gi)
}

// fieldPath returns the path of a top-level field.
func fieldPath(gi, si, fi int) string {
	return fmt.Sprintf("groups.%d.sections.%d.fields.%d", gi, si, fi)
}

// repeaterFieldPath returns the path of a field inside a repeater section.
func repeaterFieldPath(parent string, si, fi int) string {
	return fmt.Sprintf("%s.meta.%s.%d.fields.%d", parent, repeaterSectionsProp, si, fi)
}

// metaPath returns the path of a meta string property of a field.
func metaPath(field string, kind PropertyKind) string {
	return field + ".meta." + string(kind)
}

// optionPath returns the path of the translatable cell of a choice row.
func optionPath(field, gridProp string, gi, ri int) string {
	return fmt.Sprintf("%s.meta.%s.groups.%d.rows.%d.data.0", field, gridProp, gi, ri)
}

// OptionLocator returns the part of an option path that identifies the option
// within its owning field: everything from the grid property of the innermost
// field onwards. Paths without a grid segment are returned unchanged.
func OptionLocator(path string) string {
	marker := ".meta." + gridPrefix
	idx := strings.LastIndex(path, marker)
	if idx < 0 {
		return path
	}
	return path[idx+len(".meta."):]
}
