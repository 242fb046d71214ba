// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package arch

// PriorityList ranks architecture names by installation preference, higher
// ranks winning ties when the database selects among candidates for the
// same abstract package. It is populated from the host's configured
// supported-architecture list (spec.md §4.3).
type PriorityList struct {
	order map[string]int
}

// NewPriorityList builds a PriorityList from an ordered slice of
// architecture name strings, most preferred first. Architectures not
// present in names are not candidates when honorArch is requested by the
// caller (spec.md §3.6's last invariant).
func NewPriorityList(names []string) *PriorityList {
	order := make(map[string]int, len(names))
	for i, name := range names {
		// Earlier entries are more preferred; invert so the numeric
		// priority increases with preference.
		order[name] = len(names) - i
	}
	return &PriorityList{order: order}
}

// Priority returns the configured priority of a, and whether a is present
// in the list at all.
func (p *PriorityList) Priority(a Arch) (int, bool) {
	if p == nil {
		return 0, false
	}
	pr, ok := p.order[a.String()]
	return pr, ok
}

// Allowed reports whether a's architecture is in the configured list.
func (p *PriorityList) Allowed(a Arch) bool {
	_, ok := p.Priority(a)
	return ok
}
