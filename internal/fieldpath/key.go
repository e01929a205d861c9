// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package fieldpath

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Key identifies one translatable leaf within a form.
//
// Owner id and kind are unique for every leaf except options, which share the
// owner of their field and are told apart by Locator. Locator is derived from
// the option's position inside its own field only, so a key survives the
// field being moved elsewhere in the form.
type Key struct {
	OwnerID int64
	Kind    PropertyKind
	Locator string
}

// NewKey computes the key of the leaf at path. Every reader and writer of
// translations goes through this function.
func NewKey(ownerID int64, kind PropertyKind, path string) Key {
	k := Key{OwnerID: ownerID, Kind: kind}
	if kind == KindOption {
		k.Locator = OptionLocator(path)
	}
	return k
}

// PathHash returns the storage form of the locator.
func (k Key) PathHash() string {
	sum := sha256.Sum256([]byte(k.Locator))
	return hex.EncodeToString(sum[:])
}

// String renders the key for logs and cache entries.
func (k Key) String() string {
	s := strconv.FormatInt(k.OwnerID, 10) + "::" + string(k.Kind)
	if k.Locator != "" {
		s += "::" + k.Locator
	}
	return s
}
