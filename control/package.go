// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package control

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"go.uber.org/zap"

	"github.com/tinylinux/opkg/errkind"
	"github.com/tinylinux/opkg/types/arch"
	"github.com/tinylinux/opkg/types/boolean"
	"github.com/tinylinux/opkg/types/dependency"
	"github.com/tinylinux/opkg/types/list"
	"github.com/tinylinux/opkg/types/pkg"
	"github.com/tinylinux/opkg/types/version"
)

// PackageReader decodes a stream of stanzas directly into Package records
// (spec.md §4.2), applying the dependency mini-language and the Provides
// self-provision rule as it goes. Malformed stanzas are reported to
// logger and skipped rather than failing the whole stream.
type PackageReader struct {
	stanzaReader *StanzaReader
	logger       *zap.Logger
}

// NewPackageReader wraps reader. A nil logger falls back to zap.NewNop().
func NewPackageReader(reader io.Reader, keyring openpgp.EntityList, logger *zap.Logger) (*PackageReader, error) {
	sr, err := NewStanzaReader(reader, keyring)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackageReader{stanzaReader: sr, logger: logger}, nil
}

// Next returns the next well-formed Package record, skipping (and logging)
// any malformed stanzas in between.
func (pr *PackageReader) Next() (*pkg.Package, error) {
	for {
		stanza, err := pr.stanzaReader.Next()
		if err != nil {
			return nil, err
		}

		p, err := ParsePackageStanza(*stanza)
		if err != nil {
			pr.logger.Warn("discarding malformed stanza", zap.Error(err))
			continue
		}
		return p, nil
	}
}

// All decodes every well-formed Package record in the stream.
func (pr *PackageReader) All() ([]pkg.Package, error) {
	var out []pkg.Package
	for {
		p, err := pr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		} else if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
}

// ParsePackageStanza converts one control.Stanza into a Package record. It
// returns an errkind.Malformed error if the stanza has no Package field or
// an ill-formed Status line, per spec.md §4.2/§7.
func ParsePackageStanza(stanza Stanza) (*pkg.Package, error) {
	name := strings.TrimSpace(stanza.Values["Package"])
	if name == "" {
		return nil, errkind.Malformedf("stanza has no Package field")
	}

	p := &pkg.Package{Name: name}

	if v, ok := stanza.Values["Version"]; ok {
		ver, err := version.Parse(v)
		if err != nil {
			return nil, errkind.Malformed(err)
		}
		p.Version = ver
	}

	if a, ok := stanza.Values["Architecture"]; ok {
		parsed, err := arch.Parse(a)
		if err != nil {
			return nil, errkind.Malformed(err)
		}
		p.Architecture = parsed
	}

	p.Maintainer = stanza.Values["Maintainer"]
	p.Section = stanza.Values["Section"]
	p.Priority = stanza.Values["Priority"]
	p.Source = stanza.Values["Source"]
	p.Description = stanza.Values["Description"]
	p.RemoteFilename = stanza.Values["Filename"]

	if s, ok := stanza.Values["Size"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, errkind.Malformed(err)
		}
		p.Size = n
	}

	if s, ok := stanza.Values["Installed-Size"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, errkind.Malformed(err)
		}
		p.InstalledSize = n
	}

	if md5, ok := stanza.Values["MD5sum"]; ok {
		p.MD5Sum = md5
	} else {
		p.MD5Sum = stanza.Values["MD5Sum"]
	}
	p.SHA256Sum = stanza.Values["SHA256sum"]

	if tags, ok := stanza.Values["Tags"]; ok {
		var t list.CommaDelimited[string]
		if err := t.UnmarshalText([]byte(tags)); err != nil {
			return nil, errkind.Malformed(err)
		}
		p.Tags = list.CommaDelimited[string](t)
	}

	if essential, ok := stanza.Values["Essential"]; ok {
		var b boolean.Boolean
		if err := b.UnmarshalText([]byte(essential)); err != nil {
			return nil, errkind.Malformed(err)
		}
		p.Essential = b
	}

	if autoInstalled, ok := stanza.Values["Auto-Installed"]; ok {
		var b boolean.Boolean
		if err := b.UnmarshalText([]byte(autoInstalled)); err != nil {
			return nil, errkind.Malformed(err)
		}
		p.AutoInstalled = bool(b)
	}

	if conffiles, ok := stanza.Values["Conffiles"]; ok {
		var nl list.NewLineDelimited[string]
		if err := nl.UnmarshalText([]byte(conffiles)); err != nil {
			return nil, errkind.Malformed(err)
		}
		for _, line := range nl {
			var c pkg.Conffile
			if err := c.UnmarshalText([]byte(line)); err != nil {
				return nil, errkind.Malformed(err)
			}
			p.Conffiles = append(p.Conffiles, c)
		}
	}

	if status, ok := stanza.Values["Status"]; ok {
		tokens := strings.Fields(status)
		if len(tokens) != 3 {
			return nil, errkind.Malformedf("Status line has %d tokens, want 3", len(tokens))
		}
		p.StateWant = pkg.ParseWant(tokens[0])
		p.StateFlag = pkg.ParseFlags(tokens[1])
		p.StateStatus = pkg.ParseStatus(tokens[2])
	}

	// Depends/Pre-Depends/Recommends/Suggests all feed the same Depends
	// list, tagged with their originating kind (spec.md §4.2). Order is a
	// fixed slice, not a map range, so p.Depends comes out in a
	// deterministic field order (spec.md §5).
	dependsFields := []struct {
		field string
		kind  dependency.Kind
	}{
		{"Pre-Depends", dependency.PreDepend},
		{"Depends", dependency.Depend},
		{"Recommends", dependency.Recommend},
		{"Suggests", dependency.Suggest},
	}
	for _, df := range dependsFields {
		if raw, ok := stanza.Values[df.field]; ok {
			parsed, err := dependency.Parse(raw, df.kind)
			if err != nil {
				return nil, errkind.Malformed(err)
			}
			p.Depends = append(p.Depends, parsed...)
		}
	}

	if raw, ok := stanza.Values["Conflicts"]; ok {
		parsed, err := dependency.Parse(raw, dependency.Conflict)
		if err != nil {
			return nil, errkind.Malformed(err)
		}
		p.Conflicts = parsed
	}

	if raw, ok := stanza.Values["Provides"]; ok {
		parsed, err := dependency.Parse(raw, dependency.Depend)
		if err != nil {
			return nil, errkind.Malformed(err)
		}
		p.Provides = parsed
	}
	p.Provides = ensureSelfProvision(p.Provides, name)

	if raw, ok := stanza.Values["Replaces"]; ok {
		parsed, err := dependency.Parse(raw, dependency.Depend)
		if err != nil {
			return nil, errkind.Malformed(err)
		}
		p.Replaces = parsed
	}

	return p, nil
}

// ensureSelfProvision guarantees the package's own name is the first entry
// of its Provides list (spec.md §3.3 invariant).
func ensureSelfProvision(provides dependency.List, name string) dependency.List {
	for i, compound := range provides {
		for _, atom := range compound.Atoms {
			if atom.Name == name {
				if i == 0 {
					return provides
				}
				out := append(dependency.List{compound}, provides[:i]...)
				return append(out, provides[i+1:]...)
			}
		}
	}

	self := dependency.Compound{Atoms: []dependency.Atom{{Name: name}}, Kind: dependency.Depend}
	return append(dependency.List{self}, provides...)
}
