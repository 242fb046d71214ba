// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package database implements the package database / provides graph
// (spec.md §3.3, §4.3): a bipartite relation between abstract packages
// (names) and concrete Package records, with indices for name lookup and
// architecture/version-ordered candidate selection.
package database

import (
	"go.uber.org/zap"

	"github.com/tinylinux/opkg/types/arch"
	"github.com/tinylinux/opkg/types/pkg"
)

// AbstractPackage is a name that may be referenced by dependencies. All
// cross-references are names (stable IDs), not owning pointers, since the
// abstract<->concrete<->provider graph is cyclic (spec.md §9).
type AbstractPackage struct {
	Name     string
	Concrete []*pkg.Package

	// Providers holds the names of other abstract packages that declare
	// this one in their Provides.
	Providers map[string]struct{}

	// ReplacedBy holds the names of packages that list this abstract in
	// both their own Replaces and their own Conflicts (the
	// replace-symmetry invariant, spec.md §3.6).
	ReplacedBy map[string]struct{}

	// DependenciesChecked is the resolver's transient cycle guard,
	// cleared by DB.Reset between top-level resolutions.
	DependenciesChecked bool

	// NeedDetail marks the abstract as needing on-demand stanza
	// expansion. Nothing in this package sets, reads or propagates it to
	// related abstracts.
	NeedDetail bool
}

// DB is the package database: the name -> AbstractPackage index plus the
// architecture-priority configuration used by candidate selection.
type DB struct {
	abstracts map[string]*AbstractPackage
	priority  *arch.PriorityList
	logger    *zap.Logger
}

// New creates an empty database. priority may be nil, in which case
// honor_arch candidate filtering always rejects (no architectures are
// known to be acceptable).
func New(priority *arch.PriorityList, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{
		abstracts: make(map[string]*AbstractPackage),
		priority:  priority,
		logger:    logger,
	}
}

// InternAbstract returns the abstract package for name, creating it on
// first use (spec.md §4.3, idempotent).
func (db *DB) InternAbstract(name string) *AbstractPackage {
	if a, ok := db.abstracts[name]; ok {
		return a
	}
	a := &AbstractPackage{
		Name:       name,
		Providers:  make(map[string]struct{}),
		ReplacedBy: make(map[string]struct{}),
	}
	db.abstracts[name] = a
	return a
}

// Lookup returns the abstract package for name, if interned.
func (db *DB) Lookup(name string) (*AbstractPackage, bool) {
	a, ok := db.abstracts[name]
	return a, ok
}

// Insert attaches a concrete package to its abstract (by name) and, for
// every abstract it Provides, records it as a provider. An existing record
// of the same identity is merged per Package.MergeFrom rather than
// duplicated (spec.md §3.4 lifecycle).
func (db *DB) Insert(p pkg.Package) *pkg.Package {
	a := db.InternAbstract(p.Name)

	for _, existing := range a.Concrete {
		if existing.SameIdentity(p) {
			existing.MergeFrom(p)
			db.logger.Debug("merged package record", zap.String("package", p.ID()))
			db.relateProvides(existing)
			db.relateReplaces(existing)
			return existing
		}
	}

	stored := p
	a.Concrete = append(a.Concrete, &stored)
	db.relateProvides(&stored)
	db.relateReplaces(&stored)

	return &stored
}

func (db *DB) relateProvides(p *pkg.Package) {
	for _, compound := range p.Provides {
		for _, atom := range compound.Atoms {
			provided := db.InternAbstract(atom.Name)
			provided.Providers[p.Name] = struct{}{}
		}
	}
}

// relateReplaces implements the replace-symmetry invariant (spec.md §3.6):
// for every abstract Q that p both Replaces and Conflicts, Q.replaced_by
// gains p's abstract.
func (db *DB) relateReplaces(p *pkg.Package) {
	conflicts := make(map[string]struct{}, len(p.Conflicts))
	for _, compound := range p.Conflicts {
		for _, atom := range compound.Atoms {
			conflicts[atom.Name] = struct{}{}
		}
	}

	for _, compound := range p.Replaces {
		for _, atom := range compound.Atoms {
			if _, conflicted := conflicts[atom.Name]; !conflicted {
				continue
			}
			q := db.InternAbstract(atom.Name)
			q.ReplacedBy[p.Name] = struct{}{}
		}
	}
}

// FetchInstalled returns the currently installed package for name, if any.
func (db *DB) FetchInstalled(name string) (*pkg.Package, bool) {
	a, ok := db.abstracts[name]
	if !ok {
		return nil, false
	}
	for _, p := range a.Concrete {
		if p.Installed() {
			return p, true
		}
	}
	return nil, false
}

// FetchAllInstalled returns a snapshot of every package with status
// Installed or Unpacked, across every abstract in the database.
func (db *DB) FetchAllInstalled() []*pkg.Package {
	var out []*pkg.Package
	for _, a := range db.abstracts {
		for _, p := range a.Concrete {
			if p.Installed() {
				out = append(out, p)
			}
		}
	}
	return out
}

// ProviderClosure returns abstract a plus every abstract whose Provides
// lists a (spec.md §9 glossary).
func (db *DB) ProviderClosure(a *AbstractPackage) []*AbstractPackage {
	closure := []*AbstractPackage{a}
	for name := range a.Providers {
		if provider, ok := db.abstracts[name]; ok {
			closure = append(closure, provider)
		}
	}
	return closure
}

// BestCandidate iterates the full provider-closure of a, collects every
// concrete matching predicate, and returns the one maximizing
// (architecture-priority, version). When honorArch is true, a concrete
// whose architecture is outside the configured priority list is never a
// candidate.
func (db *DB) BestCandidate(a *AbstractPackage, predicate func(*pkg.Package) bool, honorArch bool) (*pkg.Package, bool) {
	var best *pkg.Package
	var bestPriority int

	for _, abstract := range db.ProviderClosure(a) {
		for _, p := range abstract.Concrete {
			if !predicate(p) {
				continue
			}

			priority := 0
			if db.priority != nil {
				pr, ok := db.priority.Priority(p.Architecture)
				if !ok {
					if honorArch {
						continue
					}
				} else {
					priority = pr
				}
			} else if honorArch {
				continue
			}

			if best == nil || priority > bestPriority ||
				(priority == bestPriority && p.Version.Compare(best.Version) > 0) {
				best = p
				bestPriority = priority
			}
		}
	}

	return best, best != nil
}

// Reset clears the transient DependenciesChecked flag on every interned
// abstract, as required before a new top-level resolution (spec.md §4.4).
func (db *DB) Reset() {
	for _, a := range db.abstracts {
		a.DependenciesChecked = false
	}
}
