// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package downloader implements the thin "download(url, dest_path)" fetch
// collaborator named in spec.md §6. It is intentionally minimal: retrying,
// resuming, and FTP support are out of core scope (spec.md §1); this only
// exists so callers have something concrete to wire against.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// Downloader fetches a URL to a local destination path.
type Downloader struct {
	client *http.Client
}

// New returns a Downloader using client, or http.DefaultClient if client is
// nil.
func New(client *http.Client) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{client: client}
}

// Download fetches src into destPath, overwriting any existing file. It
// supports http(s):// and file:// schemes; any other scheme is rejected.
func (d *Downloader) Download(ctx context.Context, src, destPath string) error {
	u, err := url.Parse(src)
	if err != nil {
		return fmt.Errorf("parsing download url: %w", err)
	}

	var body io.ReadCloser
	switch u.Scheme {
	case "http", "https":
		body, err = d.fetchHTTP(ctx, src)
	case "file":
		body, err = os.Open(u.Path)
	default:
		return fmt.Errorf("unsupported download scheme %q", u.Scheme)
	}
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, body); err != nil {
		return fmt.Errorf("writing destination file: %w", err)
	}

	return nil
}

func (d *Downloader) fetchHTTP(ctx context.Context, src string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing download request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("download request failed: %s", resp.Status)
	}

	return resp.Body, nil
}
