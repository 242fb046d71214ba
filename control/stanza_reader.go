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

package control

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
)

// StanzaReader iterates over a stream of stanzas without consuming them all
// into memory at once. If the stream is OpenPGP clearsigned, the envelope
// is transparently unwrapped before tokenizing; Signer reports the signing
// entity once a non-nil keyring has verified it.
type StanzaReader struct {
	reader *bufio.Reader
	signer *openpgp.Entity
}

// NewStanzaReader wraps reader. If keyring is nil, clearsign verification
// is skipped entirely (the envelope is still unwrapped, parse-only, no
// trust decision -- signature verification is an external collaborator's
// job per spec.md §6).
func NewStanzaReader(reader io.Reader, keyring openpgp.EntityList) (*StanzaReader, error) {
	bufioReader := bufio.NewReader(reader)
	sr := StanzaReader{reader: bufioReader}

	line, _ := bufioReader.Peek(15)
	if string(line) != "-----BEGIN PGP " {
		return &sr, nil
	}

	if err := sr.decodeClearsig(keyring); err != nil {
		return nil, err
	}

	return &sr, nil
}

// Signer returns the entity that signed this stream, if any.
func (sr *StanzaReader) Signer() *openpgp.Entity {
	return sr.signer
}

func (sr *StanzaReader) All() ([]Stanza, error) {
	var ret []Stanza
	for {
		stanza, err := sr.Next()
		if errors.Is(err, io.EOF) {
			return ret, nil
		} else if err != nil {
			return nil, err
		}
		ret = append(ret, *stanza)
	}
}

// Next consumes the reader up to and including the next blank line,
// returning the parsed stanza. Comment lines (leading "#") are skipped;
// lines with leading whitespace continue the previous field's value.
func (sr *StanzaReader) Next() (*Stanza, error) {
	var stanza Stanza
	var lastKey string

	for {
		line, err := sr.reader.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
			line += "\n"
		}
		if err == io.EOF {
			if len(stanza.Order) > 0 {
				return &stanza, nil
			}
			return nil, err
		} else if err != nil {
			return nil, err
		}

		if strings.TrimSpace(line) == "" {
			if len(stanza.Order) == 0 {
				continue
			}
			return &stanza, nil
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			line = strings.TrimRightFunc(line[1:], unicode.IsSpace)

			if line == "." {
				line = ""
			}

			if stanza.Values[lastKey] == "" {
				stanza.Values[lastKey] = line + "\n"
			} else {
				if !strings.HasSuffix(stanza.Values[lastKey], "\n") {
					stanza.Values[lastKey] += "\n"
				}
				stanza.Values[lastKey] += line + "\n"
			}
			continue
		}

		els := strings.SplitN(line, ":", 2)
		if len(els) != 2 {
			return nil, fmt.Errorf("could not parse control line: %q", line)
		}

		lastKey = strings.TrimSpace(els[0])
		value := strings.TrimSpace(els[1])

		stanza.Set(lastKey, value)
	}
}

func (sr *StanzaReader) decodeClearsig(keyring openpgp.EntityList) error {
	signedData, err := io.ReadAll(sr.reader)
	if err != nil {
		return err
	}

	block, _ := clearsign.Decode(signedData)
	if block == nil {
		return errors.New("invalid clearsigned input")
	}

	if keyring != nil {
		signer, err := openpgp.CheckDetachedSignature(
			keyring,
			bytes.NewReader(block.Bytes),
			block.ArmoredSignature.Body,
			nil,
		)
		if err != nil {
			return err
		}

		sr.signer = signer
	}
	sr.reader = bufio.NewReader(bytes.NewBuffer(block.Bytes))

	return nil
}
