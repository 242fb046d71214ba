// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package dependency_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinylinux/opkg/types/dependency"
	"github.com/tinylinux/opkg/types/version"
)

func TestAtomString(t *testing.T) {
	t.Run("unversioned", func(t *testing.T) {
		a := dependency.Atom{Name: "busybox"}
		require.Equal(t, "busybox", a.String())
	})

	t.Run("versioned", func(t *testing.T) {
		a := dependency.Atom{
			Name:       "busybox",
			Constraint: version.ConstraintGreaterEqual,
			Version:    version.MustParse("1.36.1-2"),
		}
		require.Equal(t, "busybox (>= 1.36.1-2)", a.String())
	})
}

func TestAtomSatisfies(t *testing.T) {
	a := dependency.Atom{
		Name:       "busybox",
		Constraint: version.ConstraintGreaterEqual,
		Version:    version.MustParse("1.36.0"),
	}
	require.True(t, a.Satisfies(version.MustParse("1.36.1")))
	require.False(t, a.Satisfies(version.MustParse("1.35.0")))
}

func TestCompoundString(t *testing.T) {
	c := dependency.Compound{
		Atoms: []dependency.Atom{
			{Name: "libssl3"},
			{Name: "libssl1.1"},
		},
		Kind: dependency.Greedy,
	}
	require.Equal(t, "libssl3 | libssl1.1 *", c.String())
}

func TestKindString(t *testing.T) {
	require.Equal(t, "Depends", dependency.Depend.String())
	require.Equal(t, "Pre-Depends", dependency.PreDepend.String())
	require.Equal(t, "Recommends", dependency.Recommend.String())
	require.Equal(t, "Suggests", dependency.Suggest.String())
	require.Equal(t, "Conflicts", dependency.Conflict.String())
	require.Equal(t, "Greedy", dependency.Greedy.String())
}

func TestListRoundTrip(t *testing.T) {
	var l dependency.List
	require.NoError(t, l.UnmarshalText([]byte("libc, libssl3 | libssl1.1")))
	require.Len(t, l, 2)

	text, err := l.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "libc, libssl3 | libssl1.1", string(text))
}
