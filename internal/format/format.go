// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package format implements the package formatter (spec.md §4.5): it
// serializes a Package record back to stanza form with a fixed field
// order, for writing the installed-status database.
package format

import (
	"io"
	"strconv"
	"strings"

	"github.com/tinylinux/opkg/control"
	"github.com/tinylinux/opkg/types/arch"
	"github.com/tinylinux/opkg/types/dependency"
	"github.com/tinylinux/opkg/types/pkg"
)

// fieldOrder is the fixed field order mandated by spec.md §4.5.
var fieldOrder = []string{
	"Package", "Version", "Depends", "Recommends", "Suggests", "Provides",
	"Replaces", "Conflicts", "Status", "Section", "Essential", "Architecture",
	"Maintainer", "MD5sum", "Size", "Filename", "Conffiles", "Source",
	"Description", "Tags",
}

// Stanza renders p as a control.Stanza with the fixed field order. Empty
// fields are omitted. Pre-Depends atoms are folded into the Depends field
// alongside plain Depends atoms: the fixed field list has no separate
// Pre-Depends slot, so on re-parse they come back with Kind Depend.
func Stanza(p pkg.Package) control.Stanza {
	var stanza control.Stanza

	values := map[string]string{
		"Package":      p.Name,
		"Version":      nonEmptyVersion(p),
		"Depends":      dependsField(p.Depends, dependency.Depend, dependency.PreDepend),
		"Recommends":   dependsField(p.Depends, dependency.Recommend),
		"Suggests":     dependsField(p.Depends, dependency.Suggest),
		"Provides":     p.Provides.String(),
		"Replaces":     p.Replaces.String(),
		"Conflicts":    p.Conflicts.String(),
		"Status":       statusField(p),
		"Section":      p.Section,
		"Essential":    essentialField(p),
		"Architecture": nonWildcardArch(p),
		"Maintainer":   p.Maintainer,
		"MD5sum":       p.MD5Sum,
		"Size":         nonZeroInt(p.Size),
		"Filename":     p.RemoteFilename,
		"Conffiles":    conffilesField(p),
		"Source":       p.Source,
		"Description":  p.Description,
		"Tags":         tagsField(p),
	}

	for _, field := range fieldOrder {
		if v := values[field]; v != "" {
			stanza.Set(field, v)
		}
	}

	return stanza
}

// WriteTo writes p's stanza form to w, in fixed field order.
func WriteTo(w io.Writer, p pkg.Package) (int64, error) {
	stanza := Stanza(p)
	return stanza.WriteTo(w)
}

func nonEmptyVersion(p pkg.Package) string {
	if p.Version.Empty() {
		return ""
	}
	return p.Version.String()
}

func dependsField(deps dependency.List, kinds ...dependency.Kind) string {
	var filtered dependency.List
	for _, compound := range deps {
		for _, kind := range kinds {
			if compound.Kind == kind {
				filtered = append(filtered, compound)
				break
			}
		}
	}
	return filtered.String()
}

func statusField(p pkg.Package) string {
	return strings.Join([]string{p.StateWant.String(), p.StateFlag.String(), p.StateStatus.String()}, " ")
}

func essentialField(p pkg.Package) string {
	if !p.Essential {
		return ""
	}
	text, _ := p.Essential.MarshalText()
	return string(text)
}

func nonWildcardArch(p pkg.Package) string {
	if p.Architecture == (arch.Arch{}) || p.Architecture.IsWildcard() {
		return ""
	}
	return p.Architecture.String()
}

func nonZeroInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func conffilesField(p pkg.Package) string {
	if len(p.Conffiles) == 0 {
		return ""
	}
	lines := make([]string, len(p.Conffiles))
	for i, c := range p.Conffiles {
		lines[i] = c.String()
	}
	return "\n" + strings.Join(lines, "\n")
}

func tagsField(p pkg.Package) string {
	if len(p.Tags) == 0 {
		return ""
	}
	return strings.Join(p.Tags, ", ")
}
