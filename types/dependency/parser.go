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

package dependency

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tinylinux/opkg/types/version"
)

// Parse parses a comma-separated dependency-list string into a List. kind
// is applied to every compound, except that a trailing "*" on a compound
// always overrides it to Greedy (spec.md §3.2).
func Parse(in string, kind Kind) (List, error) {
	reader := bufio.NewReader(bytes.NewReader([]byte(in)))

	var out List
	eatWhitespace(reader)

	for {
		peek, err := peekRune(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}

		if peek == ',' {
			_, _, _ = reader.ReadRune()
			eatWhitespace(reader)
			continue
		}

		compound, err := parseCompound(reader, kind)
		if err != nil {
			return nil, err
		}
		if compound != nil {
			out = append(out, *compound)
		}
	}
}

// MustParse is like Parse, but panics on error.
func MustParse(in string, kind Kind) List {
	out, err := Parse(in, kind)
	if err != nil {
		panic(err)
	}
	return out
}

func parseCompound(reader *bufio.Reader, kind Kind) (*Compound, error) {
	eatWhitespace(reader)

	compound := &Compound{Kind: kind}

	for {
		atom, err := parseAtom(reader)
		if err != nil {
			return nil, err
		}
		if atom != nil {
			compound.Atoms = append(compound.Atoms, *atom)
		}

		peek, err := peekRune(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		switch peek {
		case '|':
			_, _, _ = reader.ReadRune()
			eatWhitespace(reader)
			continue
		case '*':
			_, _, _ = reader.ReadRune()
			compound.Kind = Greedy
			eatWhitespace(reader)
			goto DONE
		case ',':
			goto DONE
		}
		return nil, fmt.Errorf("trailing garbage in dependency compound: %q", string(peek))
	}

DONE:
	if len(compound.Atoms) == 0 {
		return nil, nil // e.g. a trailing comma
	}
	return compound, nil
}

func parseAtom(reader *bufio.Reader) (*Atom, error) {
	eatWhitespace(reader)

	name := strings.Builder{}
	for {
		peek, err := peekRune(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		switch peek {
		case ',', '|', '*':
			goto NAME_DONE
		case '(':
			_, _, _ = reader.ReadRune()
			return parseVersionedAtom(reader, strings.TrimSpace(name.String()))
		case ' ', '\t':
			_, _, _ = reader.ReadRune()
			continue
		}

		next, _, _ := reader.ReadRune()
		name.WriteRune(next)
	}

NAME_DONE:
	trimmed := strings.TrimSpace(name.String())
	if trimmed == "" {
		return nil, nil
	}
	return &Atom{Name: trimmed}, nil
}

func parseVersionedAtom(reader *bufio.Reader, name string) (*Atom, error) {
	eatWhitespace(reader)

	op := strings.Builder{}
	for {
		peek, err := peekRune(reader)
		if err != nil {
			return nil, fmt.Errorf("reached EOF before version operator finished: %w", err)
		}
		if peek == ' ' || peek == '\t' {
			if op.Len() == 0 {
				_, _, _ = reader.ReadRune()
				continue
			}
			break
		}
		if cisdigitOrAlpha(peek) {
			break
		}
		next, _, _ := reader.ReadRune()
		op.WriteRune(next)
	}

	constraint, err := version.ParseConstraint(op.String())
	if err != nil {
		return nil, err
	}

	eatWhitespace(reader)

	verStr := strings.Builder{}
	for {
		peek, err := peekRune(reader)
		if err != nil {
			return nil, fmt.Errorf("reached EOF before version number finished: %w", err)
		}
		if peek == ')' {
			_, _, _ = reader.ReadRune()
			break
		}
		next, _, _ := reader.ReadRune()
		verStr.WriteRune(next)
	}

	ver, err := version.Parse(strings.TrimSpace(verStr.String()))
	if err != nil {
		return nil, fmt.Errorf("atom %q: %w", name, err)
	}

	// Eat the closing of the possibility, up to the next control
	// character, discarding trailing garbage such as an architecture
	// qualifier this mini-language doesn't model.
	for {
		peek, err := peekRune(reader)
		if err != nil {
			break
		}
		if peek == ',' || peek == '|' || peek == '*' {
			break
		}
		_, _, _ = reader.ReadRune()
	}

	return &Atom{Name: name, Constraint: constraint, Version: ver}, nil
}

func cisdigitOrAlpha(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '~' || r == ':'
}

func peekRune(reader *bufio.Reader) (rune, error) {
	r, _, err := reader.ReadRune()
	if err != nil {
		return 0, err
	}
	return r, reader.UnreadRune()
}

func eatWhitespace(reader *bufio.Reader) {
	for {
		peek, err := peekRune(reader)
		if err != nil {
			return
		}
		switch peek {
		case '\r', '\n', ' ', '\t':
			_, _, _ = reader.ReadRune()
			continue
		}
		return
	}
}
