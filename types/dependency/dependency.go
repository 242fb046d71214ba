// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 *
 * Portions of this file are based on code originally from: github.com/paultag/go-debian
 *
 * Copyright (c) Paul R. Tagliamonte <paultag@debian.org>, 2015
 */

// Package dependency parses and models the control-file dependency
// mini-language (spec.md §4.2/§6):
//
//	deplist  := compound ("," compound)*
//	compound := atom ("|" atom)*  ["*"]
//	atom     := NAME [ "(" op VERSION ")" ]
//	op       := "<<" | "<=" | "=" | ">=" | ">>" | "<" | ">"
package dependency

import (
	"strings"

	"github.com/tinylinux/opkg/types/version"
)

// Kind classifies a compound dependency by the control-file field it came
// from. Greedy is inferred from a trailing "*" rather than from the field
// name.
type Kind int

const (
	Depend Kind = iota
	PreDepend
	Recommend
	Suggest
	Conflict
	Greedy
)

func (k Kind) String() string {
	switch k {
	case PreDepend:
		return "Pre-Depends"
	case Recommend:
		return "Recommends"
	case Suggest:
		return "Suggests"
	case Conflict:
		return "Conflicts"
	case Greedy:
		return "Greedy"
	default:
		return "Depends"
	}
}

// Atom is a single dependency target: an abstract package name with an
// optional version constraint.
type Atom struct {
	Name       string
	Constraint version.Constraint
	Version    version.Version
}

func (a Atom) String() string {
	if a.Constraint == version.ConstraintNone {
		return a.Name
	}
	return a.Name + " (" + a.Constraint.String() + " " + a.Version.String() + ")"
}

// Satisfies reports whether pkgVersion satisfies this atom's constraint.
func (a Atom) Satisfies(pkgVersion version.Version) bool {
	return version.Satisfies(pkgVersion, a.Constraint, a.Version)
}

// Compound is a non-empty ordered list of atoms joined by OR ("|"),
// carrying a Kind (spec.md §3.2). It is satisfied when any one atom is.
type Compound struct {
	Atoms []Atom
	Kind  Kind
}

func (c Compound) String() string {
	parts := make([]string, len(c.Atoms))
	for i, a := range c.Atoms {
		parts[i] = a.String()
	}
	s := strings.Join(parts, " | ")
	if c.Kind == Greedy {
		s += " *"
	}
	return s
}

// List is the full, comma-separated set of compound dependencies parsed
// from one control-file field.
type List []Compound

func (l List) String() string {
	parts := make([]string, len(l))
	for i, c := range l {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func (l List) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *List) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text), Depend)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
