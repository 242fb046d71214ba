// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package errkind defines the error kinds the core distinguishes
// (spec.md §7), each a typed, wrapped Go error so callers can dispatch on
// kind with errors.As while still getting a useful %w chain.
package errkind

import "fmt"

// MalformedError reports a stanza that could not be parsed into a valid
// record (no Package field, or a Status line with != 3 tokens).
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string { return fmt.Sprintf("malformed: %v", e.Err) }
func (e *MalformedError) Unwrap() error { return e.Err }

// Malformed wraps err as a MalformedError.
func Malformed(err error) error {
	return &MalformedError{Err: err}
}

// Malformedf is a convenience constructor for a formatted MalformedError.
func Malformedf(format string, args ...any) error {
	return &MalformedError{Err: fmt.Errorf(format, args...)}
}

// UnknownPackageError reports a name with no abstract entry and no
// provider.
type UnknownPackageError struct {
	Name string
}

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("unknown package: %s", e.Name)
}

func UnknownPackage(name string) error {
	return &UnknownPackageError{Name: name}
}

// UnsatisfiedError reports a required dependency the resolver could not
// satisfy, rendered via the dependency formatter.
type UnsatisfiedError struct {
	CompoundText string
}

func (e *UnsatisfiedError) Error() string {
	return fmt.Sprintf("unsatisfied dependency: %s", e.CompoundText)
}

func Unsatisfied(compoundText string) error {
	return &UnsatisfiedError{CompoundText: compoundText}
}

// ConflictError reports that p conflicts with installed q, and q is not
// replaced by p.
type ConflictError struct {
	Package   string
	Installed string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflicts with installed %s", e.Package, e.Installed)
}

func Conflict(pkgName, installedName string) error {
	return &ConflictError{Package: pkgName, Installed: installedName}
}

// VersionMismatchError is raised by the integrity-check collaborator when
// a downloaded artifact's digest doesn't match what was expected.
type VersionMismatchError struct {
	Package  string
	Expected string
	Actual   string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("%s: version mismatch: expected %s, got %s", e.Package, e.Expected, e.Actual)
}

func VersionMismatch(pkgName, expected, actual string) error {
	return &VersionMismatchError{Package: pkgName, Expected: expected, Actual: actual}
}

// IOError wraps a collaborator failure (download, archive extraction,
// filesystem access) with the path it was operating on.
type IOError struct {
	Kind string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func IO(kind, path string, err error) error {
	return &IOError{Kind: kind, Path: path, Err: err}
}
