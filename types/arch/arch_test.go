// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package arch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinylinux/opkg/types/arch"
)

func TestParse(t *testing.T) {
	t.Run("single flavor", func(t *testing.T) {
		a, err := arch.Parse("amd64")
		require.NoError(t, err)
		require.Equal(t, arch.Arch{ABI: "gnu", OS: "linux", CPU: "amd64"}, a)
	})

	t.Run("any", func(t *testing.T) {
		a, err := arch.Parse("any")
		require.NoError(t, err)
		require.True(t, a.IsWildcard())
	})

	t.Run("two flavors", func(t *testing.T) {
		a, err := arch.Parse("kfreebsd-amd64")
		require.NoError(t, err)
		require.Equal(t, arch.Arch{ABI: "gnu", OS: "kfreebsd", CPU: "amd64"}, a)
	})

	t.Run("three flavors", func(t *testing.T) {
		a, err := arch.Parse("bsd-openbsd-i386")
		require.NoError(t, err)
		require.Equal(t, arch.Arch{ABI: "bsd", OS: "openbsd", CPU: "i386"}, a)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := arch.Parse("a-b-c-d")
		require.Error(t, err)
	})
}

func TestString(t *testing.T) {
	require.Equal(t, "amd64", arch.MustParse("amd64").String())
	require.Equal(t, "kfreebsd-amd64", arch.MustParse("kfreebsd-amd64").String())
}

func TestIs(t *testing.T) {
	amd64 := arch.MustParse("amd64")
	any := arch.MustParse("any")

	require.True(t, amd64.Is(&any))
	require.True(t, any.Is(&amd64))

	arm64 := arch.MustParse("arm64")
	require.False(t, amd64.Is(&arm64))
}

func TestPriorityList(t *testing.T) {
	list := arch.NewPriorityList([]string{"arm64", "amd64", "all"})

	arm64Pri, ok := list.Priority(arch.MustParse("arm64"))
	require.True(t, ok)

	amd64Pri, ok := list.Priority(arch.MustParse("amd64"))
	require.True(t, ok)

	require.Greater(t, arm64Pri, amd64Pri, "earlier entries should rank higher")

	_, ok = list.Priority(arch.MustParse("mips"))
	require.False(t, ok)
	require.False(t, list.Allowed(arch.MustParse("mips")))
	require.True(t, list.Allowed(arch.MustParse("amd64")))
}
