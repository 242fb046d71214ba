// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package config defines the schema for the architecture-priority list and
// parse-field mask (spec.md §4.2, §4.3). Loading the config file from disk
// is an external collaborator's job (spec.md §6); this package only owns
// the schema and a small Load/Decode pair the host would call before
// handing the resulting architecture priority list to internal/database.
package config

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tinylinux/opkg/types/arch"
)

// Fields is the configured parse-field mask (spec.md §4.2): which stanza
// fields the host wants decoded. control.PackageReader does not consult it
// and always decodes every field it recognizes.
type Fields struct {
	Depends     bool `yaml:"depends"`
	Provides    bool `yaml:"provides"`
	Conffiles   bool `yaml:"conffiles"`
	Description bool `yaml:"description"`
}

// AllFields is a Fields mask with every field enabled.
var AllFields = Fields{Depends: true, Provides: true, Conffiles: true, Description: true}

// Config is the host's opkg configuration: which architectures are
// installable and in what preference order, plus which stanza fields to
// parse.
type Config struct {
	// Architectures lists installable architecture names, most preferred
	// first (spec.md §4.3's architecture-priority ordered selection).
	Architectures []string `yaml:"architectures"`

	// HonorArch records whether candidates whose architecture isn't
	// present in Architectures are to be rejected (spec.md §3.6's
	// architecture-priority invariant). Nothing reads it here:
	// database.DB.BestCandidate takes honorArch as an argument, and
	// resolve.Resolver always passes false.
	HonorArch bool `yaml:"honor_arch"`

	ParseFields Fields `yaml:"parse_fields"`
}

// Decode reads a YAML-encoded Config from r.
func Decode(r io.Reader) (Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load is an alias for Decode, matching the Load/Save naming used
// elsewhere in the module for file-shaped collaborators.
func Load(r io.Reader) (Config, error) {
	return Decode(r)
}

// PriorityList builds the arch.PriorityList the database uses for
// candidate selection from the configured architecture order.
func (c Config) PriorityList() *arch.PriorityList {
	return arch.NewPriorityList(c.Architectures)
}
