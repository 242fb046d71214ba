// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package resolve_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tinylinux/opkg/internal/database"
	"github.com/tinylinux/opkg/internal/resolve"
	"github.com/tinylinux/opkg/types/dependency"
	"github.com/tinylinux/opkg/types/pkg"
	"github.com/tinylinux/opkg/types/version"
)

func atom(name, op, ver string) dependency.Atom {
	if op == "" {
		return dependency.Atom{Name: name}
	}
	constraint, err := version.ParseConstraint(op)
	if err != nil {
		panic(err)
	}
	return dependency.Atom{Name: name, Constraint: constraint, Version: version.MustParse(ver)}
}

// S1 -- simple install.
func TestUnsatisfiedSimpleInstall(t *testing.T) {
	db := database.New(nil, nil)
	db.Insert(pkg.Package{Name: "A", Version: version.MustParse("1.0"), StateStatus: pkg.StatusInstalled})
	b := pkg.Package{
		Name:    "B",
		Version: version.MustParse("2.0"),
		Depends: dependency.List{{Kind: dependency.Depend, Atoms: []dependency.Atom{atom("A", ">=", "1.0")}}},
	}
	db.Insert(b)

	r := resolve.New(db, nil)
	toInstall, unresolved := r.Unsatisfied(&b)
	require.Empty(t, toInstall)
	require.Empty(t, unresolved)
}

// S2 -- missing dep.
func TestUnsatisfiedMissingDep(t *testing.T) {
	db := database.New(nil, nil)
	db.Insert(pkg.Package{Name: "A", Version: version.MustParse("1.0"), StateStatus: pkg.StatusInstalled})
	b := pkg.Package{
		Name:    "B",
		Version: version.MustParse("2.0"),
		Depends: dependency.List{{Kind: dependency.Depend, Atoms: []dependency.Atom{atom("A", ">=", "2.0")}}},
	}
	db.Insert(b)

	r := resolve.New(db, nil)
	toInstall, unresolved := r.Unsatisfied(&b)
	require.Empty(t, toInstall)
	require.Equal(t, []string{"A (>= 2.0)"}, unresolved)
}

// S3 -- alternatives.
func TestUnsatisfiedAlternatives(t *testing.T) {
	db := database.New(nil, nil)
	db.Insert(pkg.Package{Name: "Y", Version: version.MustParse("1.0"), StateStatus: pkg.StatusInstalled})
	c := pkg.Package{
		Name: "C",
		Depends: dependency.List{{Kind: dependency.Depend, Atoms: []dependency.Atom{
			atom("X", "", ""), atom("Y", "", ""),
		}}},
	}
	db.Insert(c)

	r := resolve.New(db, nil)
	toInstall, unresolved := r.Unsatisfied(&c)
	require.Empty(t, toInstall)
	require.Empty(t, unresolved)
}

// S4 -- provides.
func TestUnsatisfiedProvides(t *testing.T) {
	db := database.New(nil, nil)
	db.Insert(pkg.Package{
		Name:        "postfix",
		Version:     version.MustParse("3.0"),
		StateStatus: pkg.StatusInstalled,
		Provides:    dependency.List{{Atoms: []dependency.Atom{{Name: "mail-transport-agent"}}}},
	})
	c := pkg.Package{
		Name:    "C",
		Depends: dependency.List{{Kind: dependency.Depend, Atoms: []dependency.Atom{atom("mail-transport-agent", "", "")}}},
	}
	db.Insert(c)

	r := resolve.New(db, nil)
	toInstall, unresolved := r.Unsatisfied(&c)
	require.Empty(t, toInstall)
	require.Empty(t, unresolved)
}

// S5 -- conflict with replaces.
func TestConflictsWithReplaces(t *testing.T) {
	db := database.New(nil, nil)
	db.Insert(pkg.Package{Name: "old-foo", Version: version.MustParse("1.0"), StateStatus: pkg.StatusInstalled})
	newFoo := pkg.Package{
		Name:      "new-foo",
		Version:   version.MustParse("2.0"),
		Conflicts: dependency.List{{Atoms: []dependency.Atom{{Name: "old-foo"}}}},
		Replaces:  dependency.List{{Atoms: []dependency.Atom{{Name: "old-foo"}}}},
	}
	db.Insert(newFoo)

	r := resolve.New(db, nil)
	require.Empty(t, r.Conflicts(&newFoo))
}

func TestConflictsWithoutReplaces(t *testing.T) {
	db := database.New(nil, nil)
	db.Insert(pkg.Package{Name: "old-foo", Version: version.MustParse("1.0"), StateStatus: pkg.StatusInstalled})
	newFoo := pkg.Package{
		Name:      "new-foo",
		Version:   version.MustParse("2.0"),
		Conflicts: dependency.List{{Atoms: []dependency.Atom{{Name: "old-foo"}}}},
	}
	db.Insert(newFoo)

	r := resolve.New(db, nil)
	conflicts := r.Conflicts(&newFoo)
	require.Len(t, conflicts, 1)
	require.Equal(t, "old-foo", conflicts[0].Name)
}

func TestAcceptedRecommendIsAutoInstalled(t *testing.T) {
	db := database.New(nil, nil)
	db.Insert(pkg.Package{Name: "bash", Version: version.MustParse("5.0")})
	c := pkg.Package{
		Name:    "C",
		Depends: dependency.List{{Kind: dependency.Recommend, Atoms: []dependency.Atom{atom("bash", "", "")}}},
	}
	db.Insert(c)

	r := resolve.New(db, nil)
	toInstall, unresolved := r.Unsatisfied(&c)
	require.Empty(t, unresolved)
	require.Len(t, toInstall, 1)
	require.True(t, toInstall[0].AutoInstalled)
}

func TestNoDependenciesReturnsEmpty(t *testing.T) {
	db := database.New(nil, nil)
	p := pkg.Package{Name: "standalone", Version: version.MustParse("1.0")}
	db.Insert(p)

	r := resolve.New(db, nil)
	toInstall, unresolved := r.Unsatisfied(&p)
	require.Empty(t, toInstall)
	require.Empty(t, unresolved)
}

func TestCycleTerminates(t *testing.T) {
	db := database.New(nil, nil)
	a := pkg.Package{
		Name:    "A",
		Version: version.MustParse("1.0"),
		Depends: dependency.List{{Kind: dependency.Depend, Atoms: []dependency.Atom{atom("B", "", "")}}},
	}
	b := pkg.Package{
		Name:    "B",
		Version: version.MustParse("1.0"),
		Depends: dependency.List{{Kind: dependency.Depend, Atoms: []dependency.Atom{atom("A", "", "")}}},
	}
	db.Insert(a)
	db.Insert(b)

	r := resolve.New(db, nil)

	done := make(chan struct{})
	go func() {
		r.Unsatisfied(&a)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unsatisfied did not terminate on a dependency cycle")
	}
}

func TestResetAllowsReResolution(t *testing.T) {
	db := database.New(nil, nil)
	p := pkg.Package{Name: "standalone", Version: version.MustParse("1.0")}
	db.Insert(p)

	r := resolve.New(db, nil)
	r.Unsatisfied(&p)

	abstract, ok := db.Lookup("standalone")
	require.True(t, ok)
	require.True(t, abstract.DependenciesChecked)

	r.Reset()
	require.False(t, abstract.DependenciesChecked)
}
