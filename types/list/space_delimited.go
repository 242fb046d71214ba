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

// SpaceDelimited is a list of T entries separated by runs of whitespace,
// used for fields such as the dpkg status triple ("install ok installed").
type SpaceDelimited[T any] []T

func (l SpaceDelimited[T]) MarshalText() ([]byte, error) {
	return marshalDelimited[T](l, " ")
}

func (l *SpaceDelimited[T]) UnmarshalText(text []byte) error {
	for _, item := range strings.Fields(string(text)) {
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

		*l = append(*l, entry)
	}

	return nil
}
