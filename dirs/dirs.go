// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2014-2015 Canonical Ltd
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

// Package dirs holds the well-known on-disk paths the updater reads
// from and writes to, the way snapd's dirs package centralizes its
// filesystem layout instead of scattering literal paths across packages.
package dirs

import "path/filepath"

var (
	// StagingDir is where the manifest and its detached signature are
	// staged before verification (spec: "On-disk staging").
	StagingDir = "/tmp"

	// ManifestPath is where the fetched manifest.json is persisted.
	ManifestPath = filepath.Join(StagingDir, "update.json")

	// SignaturePath is where the detached GPG signature is persisted.
	SignaturePath = filepath.Join(StagingDir, "update.json.sig")

	// MachineIdentityPath is the on-disk identity document read by the
	// file-backed Machine implementation.
	MachineIdentityPath = "/etc/nepos/machine.yaml"

	// TrustedKeyringPath is the GPG keyring used to verify manifest
	// signatures.
	TrustedKeyringPath = "/etc/nepos/trusted.gpg"
)

// SetRootDir re-roots every path above under the given directory, the
// way snapd's dirs.SetRootDir lets tests point the whole package at a
// scratch directory instead of the real filesystem.
func SetRootDir(root string) {
	StagingDir = filepath.Join(root, "tmp")
	ManifestPath = filepath.Join(StagingDir, "update.json")
	SignaturePath = filepath.Join(StagingDir, "update.json.sig")
	MachineIdentityPath = filepath.Join(root, "etc/nepos/machine.yaml")
	TrustedKeyringPath = filepath.Join(root, "etc/nepos/trusted.gpg")
}
