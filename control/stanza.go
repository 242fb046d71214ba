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

// Package control implements the stanza-based control-file format (spec.md
// §4.2): tokenizing `Field: value` blocks with continuation lines and
// comments, and decoding parsed stanzas into pkg.Package records.
package control

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// A Stanza is a block of RFC2822-like key/value pairs. Values holds the
// fields by name; Order preserves the order fields were first seen in, so
// re-serialization is stable.
type Stanza struct {
	Values map[string]string
	Order  []string
}

func (s *Stanza) Set(key, value string) {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}

	if _, found := s.Values[key]; found {
		s.Values[key] = value
		return
	}

	s.Order = append(s.Order, key)
	s.Values[key] = value
}

func (s *Stanza) WriteTo(w io.Writer) (total int64, err error) {
	for _, key := range s.Order {
		value := s.Values[key]

		value = strings.ReplaceAll(value, "\n", "\n ")
		value = strings.ReplaceAll(value, "\n \n", "\n .\n")
		value = strings.TrimRight(value, "\n ")

		n, err := w.Write([]byte(fmt.Sprintf("%s: %s\n", key, value)))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return
}

// MarshalJSON ensures the keys are marshaled in Order.
func (s Stanza) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	encoder := json.NewEncoder(&buf)
	first := true
	for _, key := range s.Order {
		if s.Values[key] == "" {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}
		first = false

		if err := encoder.Encode(key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')

		if err := encoder.Encode(s.Values[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON ensures the keys are unmarshaled and ordered as they appear
// in the JSON object.
func (s *Stanza) UnmarshalJSON(data []byte) error {
	if s.Values == nil {
		s.Values = make(map[string]string)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))

	if _, err := decoder.Token(); err != nil {
		return err
	}

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		key := token.(string)

		var value string
		if err := decoder.Decode(&value); err != nil {
			return err
		}

		if value != "" {
			s.Set(key, value)
		}
	}

	if _, err := decoder.Token(); err != nil {
		return err
	}

	return nil
}
