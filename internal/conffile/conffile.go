// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package conffile implements the conffile tracker (spec.md §4.6): it
// decides whether a declared configuration file has diverged from the
// digest recorded at install time.
package conffile

import (
	"crypto/md5"  //nolint:gosec // conffile digests are an integrity check, not a security boundary.
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"github.com/tinylinux/opkg/types/pkg"
)

// Digester computes a file's digest given its path. IsModified picks
// between its two methods by the recorded digest's length (32 hex chars
// -> MD5, 64 -> SHA-256), matching the only two digest algorithms the
// format ever records (spec.md §3.5). There is no example repo in the
// corpus layering a third-party hashing library over crypto/md5 or
// crypto/sha256 for this purpose; see DESIGN.md.
type Digester interface {
	MD5(path string) (string, error)
	SHA256(path string) (string, error)
}

// StdlibDigester computes digests with the standard library's crypto/md5
// and crypto/sha256 packages.
type StdlibDigester struct{}

func (StdlibDigester) MD5(path string) (string, error) {
	return digest(path, md5.New())
}

func (StdlibDigester) SHA256(path string) (string, error) {
	return digest(path, sha256.New())
}

func digest(path string, h hash.Hash) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// md5DigestLength is the recorded-digest length at or below which a digest is
// recognized as MD5 rather than SHA-256 (spec.md §3.5): 32 hex chars for
// MD5, 64 for SHA-256.
const md5DigestLength = 33

// IsModified reports whether conffile has diverged from its recorded
// digest. A missing recorded digest or an unreadable file counts as
// modified.
func IsModified(d Digester, c pkg.Conffile) bool {
	if c.RecordedDigest == "" {
		return true
	}

	var (
		computed string
		err      error
	)
	if len(c.RecordedDigest) <= md5DigestLength {
		computed, err = d.MD5(c.Path)
	} else {
		computed, err = d.SHA256(c.Path)
	}
	if err != nil {
		return true
	}

	return computed != c.RecordedDigest
}
