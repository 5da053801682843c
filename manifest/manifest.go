// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2014-2018 Canonical Ltd
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

// Package manifest parses the JSON document describing a candidate
// update and turns it into an AvailableUpdate ready for the install
// pipeline.
package manifest

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ErrIncomplete is returned by Parse when a required field is missing
// or has the wrong type.
type ErrIncomplete struct {
	Field string
}

func (e *ErrIncomplete) Error() string {
	return fmt.Sprintf("manifest is missing required field %q", e.Field)
}

// raw mirrors the on-the-wire manifest document.
type raw struct {
	BuildID      *string `json:"build_id"`
	Rootfs       *string `json:"rootfs"`
	RootfsSha512 *string `json:"rootfs_sha512"`
	Bootimg      *string `json:"bootimg"`
	BootimgSha512 *string `json:"bootimg_sha512"`
	RootfsDeltas *string `json:"rootfs_deltas"`
	BootimgDeltas *string `json:"bootimg_deltas"`
	Signature    *string `json:"signature"`
}

// AvailableUpdate is a value record describing one candidate update,
// replaced atomically on each successful check and zeroed when
// signature verification fails.
type AvailableUpdate struct {
	Version uint64

	BootimgURL      string
	RootfsURL       string
	BootimgDeltaURL string
	RootfsDeltaURL  string

	BootimgSha512 string
	RootfsSha512  string

	SignatureURL string
}

// Installable reports whether u is a non-zero update fit for install.
func (u AvailableUpdate) Installable() bool {
	return u.Version != 0
}

// Parse decodes a manifest document and builds the AvailableUpdate it
// describes. currentVersion is appended to the *_deltas base URLs
// (plus a ".vcdiff" extension) to get the version-specific delta URL,
// matching the convention the delta server uses to key patches by
// their source version.
func Parse(data []byte, currentVersion uint64) (AvailableUpdate, error) {
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return AvailableUpdate{}, fmt.Errorf("cannot parse manifest: %w", err)
	}

	required := map[string]*string{
		"build_id":       r.BuildID,
		"rootfs":         r.Rootfs,
		"rootfs_sha512":  r.RootfsSha512,
		"bootimg":        r.Bootimg,
		"bootimg_sha512": r.BootimgSha512,
		"rootfs_deltas":  r.RootfsDeltas,
		"bootimg_deltas": r.BootimgDeltas,
		"signature":      r.Signature,
	}
	for field, v := range required {
		if v == nil || *v == "" {
			return AvailableUpdate{}, &ErrIncomplete{Field: field}
		}
	}

	version, err := strconv.ParseUint(*r.BuildID, 10, 64)
	if err != nil {
		return AvailableUpdate{}, fmt.Errorf("build_id is not an unsigned integer: %q", *r.BuildID)
	}

	return AvailableUpdate{
		Version:         version,
		BootimgURL:      *r.Bootimg,
		RootfsURL:       *r.Rootfs,
		BootimgSha512:   *r.BootimgSha512,
		RootfsSha512:    *r.RootfsSha512,
		BootimgDeltaURL: deltaURL(*r.BootimgDeltas, currentVersion),
		RootfsDeltaURL:  deltaURL(*r.RootfsDeltas, currentVersion),
		SignatureURL:    *r.Signature,
	}, nil
}

func deltaURL(base string, currentVersion uint64) string {
	return fmt.Sprintf("%s%d.vcdiff", base, currentVersion)
}
