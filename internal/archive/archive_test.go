// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package archive_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/blakesmith/ar"
	"github.com/stretchr/testify/require"

	"github.com/tinylinux/opkg/internal/archive"
)

func buildTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var tarBuf bytes.Buffer
	gz := gzip.NewWriter(&tarBuf)
	tw := tar.NewWriter(gz)

	for name, contents := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Size:     int64(len(contents)),
			Typeflag: tar.TypeReg,
			Mode:     0o644,
		}))
		_, err := tw.Write([]byte(contents))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	return tarBuf.Bytes()
}

func buildIPK(t *testing.T, controlTarGz, dataTarGz []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := ar.NewWriter(&buf)
	require.NoError(t, w.WriteGlobalHeader())

	require.NoError(t, w.WriteHeader(&ar.Header{Name: "control.tar.gz", Size: int64(len(controlTarGz))}))
	_, err := w.Write(controlTarGz)
	require.NoError(t, err)

	require.NoError(t, w.WriteHeader(&ar.Header{Name: "data.tar.gz", Size: int64(len(dataTarGz))}))
	_, err = w.Write(dataTarGz)
	require.NoError(t, err)

	return buf.Bytes()
}

func TestExtractControl(t *testing.T) {
	controlTarGz := buildTarGz(t, map[string]string{
		"./control": "Package: busybox\nVersion: 1.36.1-2\nArchitecture: amd64\n",
	})
	dataTarGz := buildTarGz(t, map[string]string{
		"./bin/busybox": "binary contents",
	})

	ipk := buildIPK(t, controlTarGz, dataTarGz)

	a, err := archive.Open(bytes.NewReader(ipk))
	require.NoError(t, err)

	p, err := a.ExtractControl()
	require.NoError(t, err)
	require.Equal(t, "busybox", p.Name)
	require.Equal(t, "1.36.1-2", p.Version.String())
}

func TestExtractFileList(t *testing.T) {
	controlTarGz := buildTarGz(t, map[string]string{
		"./control": "Package: busybox\nVersion: 1.36.1-2\n",
	})
	dataTarGz := buildTarGz(t, map[string]string{
		"./bin/busybox": "binary contents",
		"./etc/busybox.conf": "conf contents",
	})

	ipk := buildIPK(t, controlTarGz, dataTarGz)

	a, err := archive.Open(bytes.NewReader(ipk))
	require.NoError(t, err)

	files, err := a.ExtractFileList()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"./bin/busybox", "./etc/busybox.conf"}, files)
}

func TestOpenMissingMember(t *testing.T) {
	var buf bytes.Buffer
	w := ar.NewWriter(&buf)
	require.NoError(t, w.WriteGlobalHeader())

	a, err := archive.Open(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	_, err = a.ExtractControl()
	require.Error(t, err)
}
