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

// Package pkg models the concrete package record (spec.md §3.4): the fields
// every installed or repository-indexed package carries, along with its
// conffile entries and its parsed dependency expressions.
package pkg

import (
	"strings"

	"github.com/tinylinux/opkg/types/arch"
	"github.com/tinylinux/opkg/types/boolean"
	"github.com/tinylinux/opkg/types/dependency"
	"github.com/tinylinux/opkg/types/list"
	"github.com/tinylinux/opkg/types/version"
)

// Want is the user-requested disposition of a package (spec.md §3.4).
type Want int

const (
	WantUnknown Want = iota
	WantInstall
	WantDeinstall
	WantPurge
)

func (w Want) String() string {
	switch w {
	case WantInstall:
		return "install"
	case WantDeinstall:
		return "deinstall"
	case WantPurge:
		return "purge"
	default:
		return "unknown"
	}
}

// ParseWant parses one of the three dpkg status "want" tokens.
func ParseWant(s string) Want {
	switch s {
	case "install":
		return WantInstall
	case "deinstall":
		return WantDeinstall
	case "purge":
		return WantPurge
	default:
		return WantUnknown
	}
}

// Flag is a single bit of the state_flag bitset (spec.md §3.4).
type Flag uint16

const (
	FlagOk Flag = 1 << iota
	FlagReinstReq
	FlagHold
	FlagReplace
	FlagNoPrune
	FlagPrefer
	FlagObsolete
	FlagUser
	FlagFilelistChanged
	FlagNeedDetail
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagReinstReq, "reinstreq"},
	{FlagHold, "hold"},
	{FlagReplace, "replace"},
	{FlagNoPrune, "noprune"},
	{FlagPrefer, "prefer"},
	{FlagObsolete, "obsolete"},
	{FlagUser, "user"},
	{FlagFilelistChanged, "filelist-changed"},
	{FlagNeedDetail, "need-detail"},
}

// String renders the non-volatile flags as a comma-joined list, or "ok" if
// none are set, per the §4.5 Status line format.
func (f Flag) String() string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "ok"
	}
	return strings.Join(names, ",")
}

// ParseFlags parses a comma-joined flag list (or "ok") back into a Flag
// bitset.
func ParseFlags(s string) Flag {
	if s == "" || s == "ok" {
		return FlagOk
	}

	var f Flag
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		for _, fn := range flagNames {
			if fn.name == name {
				f |= fn.flag
			}
		}
	}
	return f
}

// Status is the installation status of a package (spec.md §3.4).
type Status int

const (
	StatusNotInstalled Status = iota
	StatusUnpacked
	StatusHalfConfigured
	StatusInstalled
	StatusHalfInstalled
	StatusConfigFiles
	StatusPostInstFailed
	StatusRemovalFailed
)

func (s Status) String() string {
	switch s {
	case StatusUnpacked:
		return "unpacked"
	case StatusHalfConfigured:
		return "half-configured"
	case StatusInstalled:
		return "installed"
	case StatusHalfInstalled:
		return "half-installed"
	case StatusConfigFiles:
		return "config-files"
	case StatusPostInstFailed:
		return "post-inst-failed"
	case StatusRemovalFailed:
		return "removal-failed"
	default:
		return "not-installed"
	}
}

// ParseStatus parses one of the dpkg status "status" tokens.
func ParseStatus(s string) Status {
	switch s {
	case "unpacked":
		return StatusUnpacked
	case "half-configured":
		return StatusHalfConfigured
	case "installed":
		return StatusInstalled
	case "half-installed":
		return StatusHalfInstalled
	case "config-files":
		return StatusConfigFiles
	case "post-inst-failed":
		return StatusPostInstFailed
	case "removal-failed":
		return StatusRemovalFailed
	default:
		return StatusNotInstalled
	}
}

// Conffile is a (path, recorded_digest) pair (spec.md §3.5).
type Conffile struct {
	Path           string
	RecordedDigest string
}

func (c Conffile) String() string {
	if c.RecordedDigest == "" {
		return c.Path
	}
	return c.Path + " " + c.RecordedDigest
}

func (c Conffile) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Conffile) UnmarshalText(text []byte) error {
	fields := strings.Fields(string(text))
	if len(fields) == 0 {
		return nil
	}
	c.Path = fields[0]
	if len(fields) > 1 {
		c.RecordedDigest = fields[1]
	}
	return nil
}

// Package is the concrete package record: name + version + architecture
// tuple, plus every field the database, resolver and formatter need
// (spec.md §3.4).
type Package struct {
	Name             string
	Version          version.Version
	Architecture     arch.Arch
	ArchPriority     int
	SourceRef        string
	DestRef          string
	RemoteFilename   string
	LocalFilename    string
	Size             int
	InstalledSize    int
	MD5Sum           string
	SHA256Sum        string
	Section          string
	Maintainer       string
	Description      string
	Priority         string
	Source           string
	Tags             list.CommaDelimited[string]
	Conffiles        []Conffile
	AutoInstalled    bool
	Essential        boolean.Boolean
	ProvidedByHand   bool
	StateWant        Want
	StateFlag        Flag
	StateStatus      Status
	Depends          dependency.List
	Conflicts        dependency.List
	Provides         dependency.List
	Replaces         dependency.List
}

// ID returns a stable identifier combining name, version and architecture.
func (p Package) ID() string {
	return p.Name + "_" + p.Version.String() + "_" + p.Architecture.String()
}

// Compare orders packages by name, then version, then architecture.
func (a Package) Compare(b Package) int {
	if cmp := strings.Compare(a.Name, b.Name); cmp != 0 {
		return cmp
	}
	if cmp := a.Version.Compare(b.Version); cmp != 0 {
		return cmp
	}
	if a.Architecture.Is(&b.Architecture) || b.Architecture.Is(&a.Architecture) {
		return 0
	}
	return strings.Compare(a.Architecture.String(), b.Architecture.String())
}

// SameIdentity reports whether a and b share the (name, version,
// architecture) identity the database merges on (spec.md §3.4 lifecycle).
func (a Package) SameIdentity(b Package) bool {
	return a.Name == b.Name && a.Version.Compare(b.Version) == 0 && a.Architecture.Is(&b.Architecture)
}

// Installed reports whether the package is considered present on disk for
// fetch_all_installed purposes (spec.md §4.3).
func (p Package) Installed() bool {
	return p.StateStatus == StatusInstalled || p.StateStatus == StatusUnpacked
}

// MergeFrom applies the §3.4 merge rule to a newly parsed record: existing
// non-zero fields of p win, and only fields absent in p are adopted from
// newer. p is the record already in the database; newer is the incoming
// parse of the same identity.
func (p *Package) MergeFrom(newer Package) {
	if p.Size == 0 {
		p.Size = newer.Size
	}
	if p.InstalledSize == 0 {
		p.InstalledSize = newer.InstalledSize
	}
	if p.MD5Sum == "" {
		p.MD5Sum = newer.MD5Sum
	}
	if p.SHA256Sum == "" {
		p.SHA256Sum = newer.SHA256Sum
	}
	if p.Section == "" {
		p.Section = newer.Section
	}
	if p.Maintainer == "" {
		p.Maintainer = newer.Maintainer
	}
	if p.Description == "" {
		p.Description = newer.Description
	}
	if p.Priority == "" {
		p.Priority = newer.Priority
	}
	if p.Source == "" {
		p.Source = newer.Source
	}
	if p.SourceRef == "" {
		p.SourceRef = newer.SourceRef
	}
	if p.DestRef == "" {
		p.DestRef = newer.DestRef
	}
	if p.RemoteFilename == "" {
		p.RemoteFilename = newer.RemoteFilename
	}
	if p.LocalFilename == "" {
		p.LocalFilename = newer.LocalFilename
	}
	if len(p.Tags) == 0 {
		p.Tags = newer.Tags
	}
	if len(p.Conffiles) == 0 {
		p.Conffiles = newer.Conffiles
	}
	if len(p.Depends) == 0 {
		p.Depends = newer.Depends
	}
	if len(p.Conflicts) == 0 {
		p.Conflicts = newer.Conflicts
	}
	if len(p.Provides) == 0 {
		p.Provides = newer.Provides
	}
	if len(p.Replaces) == 0 {
		p.Replaces = newer.Replaces
	}
	if p.ArchPriority == 0 {
		p.ArchPriority = newer.ArchPriority
	}
	if p.StateWant == WantUnknown {
		p.StateWant = newer.StateWant
	}
	if p.StateStatus == StatusNotInstalled {
		p.StateStatus = newer.StateStatus
	}
	if p.StateFlag == 0 {
		p.StateFlag = newer.StateFlag
	}
}
