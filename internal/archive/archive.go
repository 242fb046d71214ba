// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package archive implements the "extract_control"/"extract_file_list"
// collaborator interfaces named in spec.md §6: reading an opkg .ipk, an ar
// container holding a control.tar.{gz,xz,zst} and a data.tar.{gz,xz,zst}
// member. It reads an existing archive format only; it does not create one
// (spec.md §1 non-goal: no new archive format).
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/tinylinux/opkg/control"
	"github.com/tinylinux/opkg/types/pkg"
)

// Archive is a fully-read .ipk, indexed by ar member name. .ipk members are
// small (control tarballs and filesystem trees for embedded targets), so
// reading the whole container into memory up front keeps the control/data
// extraction paths simple.
type Archive struct {
	members map[string][]byte
}

// Open reads every ar member of r into memory.
func Open(r io.Reader) (*Archive, error) {
	members := make(map[string][]byte)

	reader := ar.NewReader(r)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ar member: %w", err)
		}

		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("reading ar member %s: %w", header.Name, err)
		}

		members[strings.TrimSpace(header.Name)] = data
	}

	return &Archive{members: members}, nil
}

// ExtractControl decompresses the control.tar.{gz,xz,zst} member and parses
// its "./control" entry as a Package record.
func (a *Archive) ExtractControl() (*pkg.Package, error) {
	member, name, err := a.findMember("control.tar")
	if err != nil {
		return nil, err
	}

	tarReader, err := decompress(bytes.NewReader(member), name)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", name, err)
	}

	tr := tar.NewReader(tarReader)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("control archive %s has no control file", name)
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		if controlEntryName(header.Name) != "control" {
			continue
		}

		reader, err := control.NewPackageReader(tr, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("parsing control stanza: %w", err)
		}

		return reader.Next()
	}
}

// ExtractFileList decompresses the data.tar.{gz,xz,zst} member and returns
// every regular file path it contains.
func (a *Archive) ExtractFileList() ([]string, error) {
	member, name, err := a.findMember("data.tar")
	if err != nil {
		return nil, err
	}

	tarReader, err := decompress(bytes.NewReader(member), name)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", name, err)
	}

	var files []string
	tr := tar.NewReader(tarReader)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return files, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		if header.Typeflag == tar.TypeReg {
			files = append(files, header.Name)
		}
	}
}

func (a *Archive) findMember(prefix string) (data []byte, name string, err error) {
	for memberName, memberData := range a.members {
		if strings.HasPrefix(memberName, prefix) {
			return memberData, memberName, nil
		}
	}
	return nil, "", fmt.Errorf("archive has no %s.* member", prefix)
}

func controlEntryName(name string) string {
	return strings.TrimPrefix(strings.TrimPrefix(name, "./"), "/")
}

func decompress(r io.Reader, fileName string) (io.Reader, error) {
	switch {
	case strings.HasSuffix(fileName, ".gz"):
		return gzip.NewReader(r)
	case strings.HasSuffix(fileName, ".xz"):
		return xz.NewReader(r)
	case strings.HasSuffix(fileName, ".zst"):
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return decoder.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unrecognized compression for %s", fileName)
	}
}
