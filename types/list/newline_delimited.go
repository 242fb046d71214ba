// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package list

import (
	"encoding"
	"fmt"
	"strings"
)

// NewLineDelimited is a list of T entries separated by newlines, used for
// multi-line continuation fields such as Conffiles.
type NewLineDelimited[T any] []T

func (l NewLineDelimited[T]) MarshalText() ([]byte, error) {
	text, err := marshalDelimited[T](l, "\n")
	if err != nil {
		return nil, err
	}
	if len(l) == 0 {
		return text, nil
	}
	return append([]byte("\n"), text...), nil
}

func (l *NewLineDelimited[T]) UnmarshalText(text []byte) error {
	for _, line := range strings.Split(string(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var entry T

		switch v := any(&entry).(type) {
		case *string:
			*v = line
		case encoding.TextUnmarshaler:
			if err := v.UnmarshalText([]byte(line)); err != nil {
				return fmt.Errorf("failed to unmarshal entry: %w", err)
			}
		default:
			if _, err := fmt.Sscanf(line, "%v", &entry); err != nil {
				return fmt.Errorf("unable to unmarshal entry: %w", err)
			}
		}

		*l = append(*l, entry)
	}

	return nil
}
