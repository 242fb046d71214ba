// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 *
 * Portions of this file are structurally grounded on the recursive,
 * visited-set dependency walk of github.com/dpeckett/debco's
 * internal/resolve package.
 */

// Package resolve implements the dependency resolver (spec.md §4.4):
// walking compound dependencies, choosing among alternatives, honoring
// Provides/Replaces/Conflicts, and producing an unsatisfied-dependency
// set rather than ever failing outright.
package resolve

import (
	"go.uber.org/zap"

	"github.com/tinylinux/opkg/internal/database"
	"github.com/tinylinux/opkg/types/dependency"
	"github.com/tinylinux/opkg/types/pkg"
)

// Resolver walks the dependency graph backed by db, honoring the
// architecture-priority ordering db was configured with.
type Resolver struct {
	db     *database.DB
	logger *zap.Logger
}

// New builds a Resolver over db. A nil logger falls back to zap.NewNop().
func New(db *database.DB, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{db: db, logger: logger}
}

// Reset clears the cycle-guard flag on every abstract package. Callers
// must invoke this before a new top-level Unsatisfied call (spec.md §4.4).
func (r *Resolver) Reset() {
	r.db.Reset()
}

// Unsatisfied walks p's compound dependencies and returns the packages
// that must additionally be installed, plus the printable form of every
// dependency that could not be satisfied. It never returns an error: every
// failure to satisfy surfaces as an unresolved entry.
func (r *Resolver) Unsatisfied(p *pkg.Package) (toInstall []*pkg.Package, unresolved []string) {
	abstract := r.db.InternAbstract(p.Name)
	if abstract.DependenciesChecked {
		return nil, nil
	}
	abstract.DependenciesChecked = true

	for _, compound := range p.Depends {
		var install []*pkg.Package
		var unres []string

		if compound.Kind == dependency.Greedy {
			install, unres = r.resolveGreedy(p, compound)
		} else {
			install, unres = r.resolveNormal(p, compound)
		}

		toInstall = append(toInstall, install...)
		unresolved = append(unresolved, unres...)
	}

	return toInstall, unresolved
}

// resolveGreedy implements the Greedy pass (spec.md §4.4.1): every
// satisfier not already wanted for install is recursively pulled in,
// provided the whole recursive closure resolves cleanly.
func (r *Resolver) resolveGreedy(p *pkg.Package, compound dependency.Compound) (toInstall []*pkg.Package, unresolved []string) {
	for _, atom := range compound.Atoms {
		providerAbstract := r.db.InternAbstract(atom.Name)

		for _, provider := range r.db.ProviderClosure(providerAbstract) {
			if provider.DependenciesChecked {
				continue
			}

			for _, candidate := range provider.Concrete {
				if candidate.StateWant == pkg.WantInstall {
					continue
				}
				if containsPackage(toInstall, candidate) {
					continue
				}

				recursiveInstall, recursiveUnresolved := r.Unsatisfied(candidate)

				if len(recursiveUnresolved) > 0 {
					continue
				}

				allWanted := true
				for _, dep := range recursiveInstall {
					if dep.StateWant != pkg.WantInstall {
						allWanted = false
						break
					}
				}
				if !allWanted {
					continue
				}

				r.logger.Info("Adding satisfier for greedy dependence",
					zap.String("for", p.Name), zap.String("satisfier", candidate.ID()))
				toInstall = append(toInstall, candidate)
			}
		}
	}

	return toInstall, unresolved
}

// resolveNormal implements the Pass A / Pass B walk for Depend, PreDepend,
// Recommend and Suggest compounds (spec.md §4.4.2).
func (r *Resolver) resolveNormal(p *pkg.Package, compound dependency.Compound) (toInstall []*pkg.Package, unresolved []string) {
	// Pass A: an already-installed satisfier.
	for _, atom := range compound.Atoms {
		abstract := r.db.InternAbstract(atom.Name)
		if _, ok := r.db.BestCandidate(abstract, func(c *pkg.Package) bool {
			return c.Installed() && atom.Satisfies(c.Version)
		}, false); ok {
			return nil, nil
		}
	}

	// Pass B: any satisfier at all.
	for _, atom := range compound.Atoms {
		abstract := r.db.InternAbstract(atom.Name)
		best, ok := r.db.BestCandidate(abstract, func(c *pkg.Package) bool {
			return atom.Satisfies(c.Version)
		}, false)
		if !ok {
			continue
		}

		if compound.Kind == dependency.Recommend || compound.Kind == dependency.Suggest {
			if best.StateWant == pkg.WantDeinstall || best.StateWant == pkg.WantPurge {
				continue
			}
		}

		if compound.Kind == dependency.Suggest {
			r.logger.Info("Suggested package available", zap.String("for", p.Name), zap.String("suggestion", best.ID()))
			return nil, nil
		}

		if compound.Kind == dependency.Recommend {
			best.AutoInstalled = true
		}

		recursiveInstall, recursiveUnresolved := r.Unsatisfied(best)
		unresolved = append(unresolved, recursiveUnresolved...)

		if best.ID() != p.ID() && !containsPackage(toInstall, best) {
			toInstall = append(toInstall, best)
		}
		toInstall = append(toInstall, recursiveInstall...)

		return toInstall, unresolved
	}

	// Both passes failed.
	if compound.Kind == dependency.Recommend || compound.Kind == dependency.Suggest {
		r.logger.Info("No satisfier found for recommended/suggested dependency",
			zap.String("for", p.Name), zap.String("compound", compound.String()))
		return nil, nil
	}

	return nil, []string{compound.String()}
}

// Conflicts returns every installed package (or one with state_want =
// Install) that matches any of p's conflict atoms and is not replaced by p
// (spec.md §4.4).
func (r *Resolver) Conflicts(p *pkg.Package) []*pkg.Package {
	var out []*pkg.Package

	for _, compound := range p.Conflicts {
		for _, atom := range compound.Atoms {
			abstract := r.db.InternAbstract(atom.Name)
			for _, provider := range r.db.ProviderClosure(abstract) {
				for _, candidate := range provider.Concrete {
					if !(candidate.Installed() || candidate.StateWant == pkg.WantInstall) {
						continue
					}
					if !atom.Satisfies(candidate.Version) {
						continue
					}
					if Replaces(p, candidate) {
						continue
					}
					out = append(out, candidate)
				}
			}
		}
	}

	return out
}

// Replaces reports whether any abstract in p.Replaces is also in
// other.Provides (spec.md §4.4). other's own name always counts as
// provided, whether or not its Provides list carries it.
func Replaces(p, other *pkg.Package) bool {
	provided := make(map[string]struct{}, len(other.Provides)+1)
	provided[other.Name] = struct{}{}
	for _, compound := range other.Provides {
		for _, atom := range compound.Atoms {
			provided[atom.Name] = struct{}{}
		}
	}

	for _, compound := range p.Replaces {
		for _, atom := range compound.Atoms {
			if _, ok := provided[atom.Name]; ok {
				return true
			}
		}
	}

	return false
}

func containsPackage(list []*pkg.Package, p *pkg.Package) bool {
	for _, existing := range list {
		if existing.ID() == p.ID() {
			return true
		}
	}
	return false
}
