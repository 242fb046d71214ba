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
 * Copyright (c) 2012 Michael Stapelberg and contributors
 * All rights reserved.
 */

// Package version implements Debian-style version parsing and comparison:
// epoch, upstream and revision, compared with dpkg's verrevcmp algorithm.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Version represents a dpkg-style package version: epoch:upstream-revision.
type Version struct {
	Epoch    uint
	Upstream string
	Revision string
}

func (v Version) Empty() bool {
	return v.Epoch == 0 && v.Upstream == "" && v.Revision == ""
}

// IsNative reports whether the version has no revision (a package built
// directly from upstream, rather than repackaged downstream).
func (v Version) IsNative() bool {
	return len(v.Revision) == 0
}

func (v Version) StringWithoutEpoch() string {
	result := v.Upstream
	if len(v.Revision) > 0 {
		result += "-" + v.Revision
	}
	return result
}

func (v Version) String() string {
	if v.Epoch > 0 {
		return fmt.Sprintf("%d:%s", v.Epoch, v.StringWithoutEpoch())
	}
	return v.StringWithoutEpoch()
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Compare compares the two versions. It returns 0 if a and b are equal, a
// value < 0 if a is smaller than b and a value > 0 if a is greater than b.
func (a Version) Compare(b Version) int {
	if a.Epoch != b.Epoch {
		if a.Epoch > b.Epoch {
			return 1
		}
		return -1
	}

	if rc := verrevcmp(a.Upstream, b.Upstream); rc != 0 {
		return rc
	}

	// An absent revision sorts below any present one, "0" included.
	if (a.Revision == "") != (b.Revision == "") {
		if a.Revision == "" {
			return -1
		}
		return 1
	}

	return verrevcmp(a.Revision, b.Revision)
}

// Constraint is a dependency version relation operator.
type Constraint int

const (
	ConstraintNone Constraint = iota
	ConstraintLess
	ConstraintLessEqual
	ConstraintEqual
	ConstraintGreaterEqual
	ConstraintGreater
)

func (c Constraint) String() string {
	switch c {
	case ConstraintLess:
		return "<<"
	case ConstraintLessEqual:
		return "<="
	case ConstraintEqual:
		return "="
	case ConstraintGreaterEqual:
		return ">="
	case ConstraintGreater:
		return ">>"
	default:
		return ""
	}
}

// ParseConstraint parses one of the dependency-language relation operators,
// mapping the deprecated single-character forms "<" and ">" onto "<=" and
// ">=" respectively, per Debian policy §7.1.
func ParseConstraint(op string) (Constraint, error) {
	switch op {
	case "<<":
		return ConstraintLess, nil
	case "<=", "<":
		return ConstraintLessEqual, nil
	case "=":
		return ConstraintEqual, nil
	case ">=", ">":
		return ConstraintGreaterEqual, nil
	case ">>":
		return ConstraintGreater, nil
	default:
		return ConstraintNone, fmt.Errorf("unknown version constraint operator: %q", op)
	}
}

// Satisfies reports whether pkgVersion satisfies constraint relative to
// atomVersion. ConstraintNone is always satisfied.
func Satisfies(pkgVersion Version, constraint Constraint, atomVersion Version) bool {
	if constraint == ConstraintNone {
		return true
	}

	cmp := pkgVersion.Compare(atomVersion)
	switch constraint {
	case ConstraintLess:
		return cmp < 0
	case ConstraintLessEqual:
		return cmp <= 0
	case ConstraintEqual:
		return cmp == 0
	case ConstraintGreaterEqual:
		return cmp >= 0
	case ConstraintGreater:
		return cmp > 0
	default:
		return false
	}
}

// Parse parses a version string of the form "[epoch:]upstream[-revision]".
// Malformed epochs are logged and treated as 0; the version string itself
// is never rejected on that basis alone.
func Parse(input string) (Version, error) {
	var result Version
	return result, parseInto(&result, input)
}

// MustParse is like Parse, but panics on error. Intended for tests and
// package-level constants.
func MustParse(input string) Version {
	result, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return result
}

func parseInto(result *Version, input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return errors.New("version string is empty")
	}

	if strings.IndexFunc(trimmed, unicode.IsSpace) != -1 {
		return errors.New("version string has embedded spaces")
	}

	rest := trimmed
	if colon := strings.Index(trimmed, ":"); colon != -1 {
		epoch, err := strconv.ParseUint(trimmed[:colon], 10, 64)
		if err != nil {
			zap.L().Warn("malformed version epoch, assuming 0",
				zap.String("input", input), zap.Error(err))
			epoch = 0
		}
		result.Epoch = uint(epoch)
		rest = trimmed[colon+1:]
	}

	if len(rest) == 0 {
		return errors.New("nothing after colon in version number")
	}

	result.Upstream = rest
	if hyphen := strings.LastIndex(result.Upstream, "-"); hyphen != -1 {
		result.Revision = result.Upstream[hyphen+1:]
		result.Upstream = result.Upstream[:hyphen]
	}

	if len(result.Upstream) > 0 && !unicode.IsDigit(rune(result.Upstream[0])) {
		return errors.New("version number does not start with digit")
	}

	if strings.IndexFunc(result.Upstream, func(c rune) bool {
		return !cisdigit(c) && !cisalpha(c) && c != '.' && c != '-' && c != '+' && c != '~' && c != ':'
	}) != -1 {
		return errors.New("invalid character in version number")
	}

	if strings.IndexFunc(result.Revision, func(c rune) bool {
		return !cisdigit(c) && !cisalpha(c) && c != '.' && c != '+' && c != '~'
	}) != -1 {
		return errors.New("invalid character in revision number")
	}

	return nil
}

// verrevcmp implements dpkg's version-component comparison: alternating
// non-digit and digit runs, with tilde sorting before everything (including
// end-of-string), and digit runs compared numerically with leading zeros
// discarded.
func verrevcmp(a, b string) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var firstDiff int
		for (i < len(a) && !cisdigit(rune(a[i]))) || (j < len(b) && !cisdigit(rune(b[j]))) {
			ac, bc := 0, 0
			if i < len(a) {
				ac = order(rune(a[i]))
			}
			if j < len(b) {
				bc = order(rune(b[j]))
			}
			if ac != bc {
				return ac - bc
			}
			i++
			j++
		}

		for i < len(a) && a[i] == '0' {
			i++
		}
		for j < len(b) && b[j] == '0' {
			j++
		}

		for i < len(a) && cisdigit(rune(a[i])) && j < len(b) && cisdigit(rune(b[j])) {
			if firstDiff == 0 {
				firstDiff = int(a[i]) - int(b[j])
			}
			i++
			j++
		}

		if i < len(a) && cisdigit(rune(a[i])) {
			return 1
		}
		if j < len(b) && cisdigit(rune(b[j])) {
			return -1
		}
		if firstDiff != 0 {
			return firstDiff
		}
	}
	return 0
}

func cisdigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func cisalpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// order returns the sort weight of a non-digit rune under dpkg's rule: the
// tilde sorts before everything (including end-of-string, passed as the
// zero rune), letters sort in their natural order, and any other byte
// sorts after letters.
func order(r rune) int {
	if cisdigit(r) {
		return 0
	}
	if cisalpha(r) {
		return int(r)
	}
	if r == '~' {
		return -1
	}
	if r != 0 {
		return int(r) + 256
	}
	return 0
}
