// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package version_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinylinux/opkg/types/version"
)

func v(epoch uint, upstream, revision string) version.Version {
	return version.Version{Epoch: epoch, Upstream: upstream, Revision: revision}
}

func TestParse(t *testing.T) {
	t.Run("no epoch or revision", func(t *testing.T) {
		got, err := version.Parse("1.0")
		require.NoError(t, err)
		require.Equal(t, v(0, "1.0", ""), got)
	})

	t.Run("epoch", func(t *testing.T) {
		got, err := version.Parse("1:2.0-1")
		require.NoError(t, err)
		require.Equal(t, v(1, "2.0", "1"), got)
	})

	t.Run("revision", func(t *testing.T) {
		got, err := version.Parse("2.0-3")
		require.NoError(t, err)
		require.Equal(t, v(0, "2.0", "3"), got)
	})

	t.Run("hyphen in upstream", func(t *testing.T) {
		got, err := version.Parse("2.0-beta-1")
		require.NoError(t, err)
		require.Equal(t, v(0, "2.0-beta", "1"), got)
	})

	t.Run("malformed epoch recovers as zero", func(t *testing.T) {
		got, err := version.Parse("x:2.0")
		require.NoError(t, err)
		require.Equal(t, v(0, "2.0", ""), got)
	})

	t.Run("empty string rejected", func(t *testing.T) {
		_, err := version.Parse("")
		require.Error(t, err)
	})

	t.Run("embedded space rejected", func(t *testing.T) {
		_, err := version.Parse("1.0 2")
		require.Error(t, err)
	})

	t.Run("does not start with digit rejected", func(t *testing.T) {
		_, err := version.Parse("a1.0")
		require.Error(t, err)
	})
}

func TestString(t *testing.T) {
	require.Equal(t, "1.0", v(0, "1.0", "").String())
	require.Equal(t, "1.0-2", v(0, "1.0", "2").String())
	require.Equal(t, "3:1.0-2", v(3, "1.0", "2").String())
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		expect int
	}{
		{"epoch dominates", "1:2.0-1", "2.0-1", 1},
		{"tilde sorts before release", "1.0~rc1", "1.0", -1},
		{"leading zeros ignored", "1.00", "1.0", 0},
		{"numeric comparison not lexical", "1.9", "1.10", -1},
		{"equal", "1.0-1", "1.0-1", 0},
		{"revision comparison", "1.0-1", "1.0-2", -1},
		{"null revision less than explicit zero", "1.0", "1.0-0", -1},
		{"letters sort before other bytes", "1.0a", "1.0+", -1},
		{"tilde less than empty", "1.0~", "1.0", -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := version.MustParse(tc.a)
			b := version.MustParse(tc.b)

			got := a.Compare(b)
			switch {
			case tc.expect < 0:
				require.Negative(t, got)
			case tc.expect > 0:
				require.Positive(t, got)
			default:
				require.Zero(t, got)
			}

			// Antisymmetry.
			require.Equal(t, -sign(got), sign(b.Compare(a)))
		})
	}

	t.Run("total order is transitive across a sorted chain", func(t *testing.T) {
		chain := []string{"1.0~~", "1.0~", "1.0", "1.0-1", "1.0-2", "1.0+b1", "1:0.1"}
		for i := 0; i < len(chain)-1; i++ {
			a := version.MustParse(chain[i])
			b := version.MustParse(chain[i+1])
			require.Negative(t, a.Compare(b), "%s should sort before %s", chain[i], chain[i+1])
		}
	})
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func TestSatisfies(t *testing.T) {
	pkg := version.MustParse("2.0-1")
	atom := version.MustParse("1.5")

	require.True(t, version.Satisfies(pkg, version.ConstraintNone, atom))
	require.True(t, version.Satisfies(pkg, version.ConstraintGreaterEqual, atom))
	require.True(t, version.Satisfies(pkg, version.ConstraintGreater, atom))
	require.False(t, version.Satisfies(pkg, version.ConstraintLess, atom))
	require.False(t, version.Satisfies(pkg, version.ConstraintEqual, atom))
	require.True(t, version.Satisfies(pkg, version.ConstraintEqual, pkg))
}

func TestParseConstraint(t *testing.T) {
	tests := map[string]version.Constraint{
		"<<": version.ConstraintLess,
		"<=": version.ConstraintLessEqual,
		"<":  version.ConstraintLessEqual,
		"=":  version.ConstraintEqual,
		">=": version.ConstraintGreaterEqual,
		">":  version.ConstraintGreaterEqual,
		">>": version.ConstraintGreater,
	}

	for op, want := range tests {
		got, err := version.ParseConstraint(op)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := version.ParseConstraint("!!")
	require.Error(t, err)
}
