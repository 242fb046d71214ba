// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package list implements delimiter-based codecs for repeated control-file
// field values (Tags, Conffiles, architecture lists, ...).
package list

import (
	"encoding"
	"fmt"
	"strings"
)

// CommaDelimited is a list of T entries separated by commas, used for
// fields such as Tags.
type CommaDelimited[T any] []T

func (l CommaDelimited[T]) MarshalText() ([]byte, error) {
	return marshalDelimited[T](l, ", ")
}

func (l *CommaDelimited[T]) UnmarshalText(text []byte) error {
	return unmarshalDelimited[T]((*[]T)(l), string(text), ",")
}

func marshalDelimited[T any](entries []T, sep string) ([]byte, error) {
	var sb strings.Builder
	for i, entry := range entries {
		if i > 0 {
			sb.WriteString(sep)
		}

		switch v := any(entry).(type) {
		case string:
			sb.WriteString(v)
		case encoding.TextMarshaler:
			text, err := v.MarshalText()
			if err != nil {
				return nil, fmt.Errorf("failed to marshal entry: %w", err)
			}
			sb.Write(text)
		default:
			if ptr, ok := any(&entry).(encoding.TextMarshaler); ok {
				text, err := ptr.MarshalText()
				if err != nil {
					return nil, fmt.Errorf("failed to marshal entry: %w", err)
				}
				sb.Write(text)
			} else {
				sb.WriteString(fmt.Sprintf("%v", entry))
			}
		}
	}

	return []byte(sb.String()), nil
}

func unmarshalDelimited[T any](out *[]T, text, sep string) error {
	items := strings.Split(text, sep)
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		var entry T

		switch v := any(&entry).(type) {
		case *string:
			*v = item
		case encoding.TextUnmarshaler:
			if err := v.UnmarshalText([]byte(item)); err != nil {
				return fmt.Errorf("failed to unmarshal entry: %w", err)
			}
		default:
			if _, err := fmt.Sscanf(item, "%v", &entry); err != nil {
				return fmt.Errorf("unable to unmarshal entry: %w", err)
			}
		}

		*out = append(*out, entry)
	}

	return nil
}
