// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package statusdb loads and saves the installed-status database file
// (spec.md §6): concatenated package stanzas, separated by single blank
// lines, terminated by a blank line.
package statusdb

import (
	"fmt"
	"io"

	"github.com/tinylinux/opkg/control"
	"github.com/tinylinux/opkg/internal/format"
	"github.com/tinylinux/opkg/types/pkg"
)

// Load reads every package stanza from r. Signature verification is not
// performed: r is read with a nil keyring, matching control.NewPackageReader's
// parse-only behavior.
func Load(r io.Reader) ([]pkg.Package, error) {
	reader, err := control.NewPackageReader(r, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("opening status database: %w", err)
	}

	return reader.All()
}

// Save writes packages to w in C5's fixed field order, one stanza per
// package, each separated by a blank line.
func Save(w io.Writer, packages []pkg.Package) error {
	for _, p := range packages {
		if _, err := format.WriteTo(w, p); err != nil {
			return fmt.Errorf("writing status database entry for %s: %w", p.Name, err)
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("writing status database separator: %w", err)
		}
	}

	return nil
}
