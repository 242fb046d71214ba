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

package control_test

import (
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/stretchr/testify/require"

	"github.com/tinylinux/opkg/control"
)

func TestBasicStanzaReader(t *testing.T) {
	reader, err := control.NewStanzaReader(strings.NewReader(`Para: one

Para: two

Para: three
`), nil)
	require.NoError(t, err)

	blocks, err := reader.All()
	require.NoError(t, err)

	require.Len(t, blocks, 3)
}

func TestMultipleNewlines(t *testing.T) {
	reader, err := control.NewStanzaReader(strings.NewReader(`Para: one


Para: two

Para: three
 `), nil)
	require.NoError(t, err)

	blocks, err := reader.All()
	require.NoError(t, err)

	require.Len(t, blocks, 3)
}

func TestWhitespacePrefixedLines(t *testing.T) {
	reader, err := control.NewStanzaReader(strings.NewReader(`Key1: one
	 continuation
Key2: two
	 tabbed continuation
 `), nil)
	require.NoError(t, err)

	blocks, err := reader.All()
	require.NoError(t, err)

	require.Len(t, blocks, 1)
	require.Equal(t, "one\n continuation\n", blocks[0].Values["Key1"])
	require.Equal(t, "two\n tabbed continuation\n", blocks[0].Values["Key2"])
}

func TestCommentLines(t *testing.T) {
	reader, err := control.NewStanzaReader(strings.NewReader(`Key1: one
# comment
Key2: two
 `), nil)
	require.NoError(t, err)

	blocks, err := reader.All()
	require.NoError(t, err)

	require.Len(t, blocks, 1)
	require.Equal(t, "one", blocks[0].Values["Key1"])
	require.Equal(t, "two", blocks[0].Values["Key2"])
}

func TestStanzaOrderPreserved(t *testing.T) {
	reader, err := control.NewStanzaReader(strings.NewReader("Package: foo\nVersion: 1.0\nSection: utils\n"), nil)
	require.NoError(t, err)

	blocks, err := reader.All()
	require.NoError(t, err)

	require.Len(t, blocks, 1)
	require.Equal(t, []string{"Package", "Version", "Section"}, blocks[0].Order)
}

func TestEmptyKeyringOpenPGPStanzaReader(t *testing.T) {
	keyring := openpgp.EntityList{}

	_, err := control.NewStanzaReader(strings.NewReader("-----BEGIN PGP SIGNED MESSAGE-----\nnot a real clearsigned block\n"), keyring)
	require.Error(t, err)
}
