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

package updater

import (
	"os"

	"github.com/nepos-io/updater/dirs"
)

// Config is the Updater's knob set: the update channel, the manifest
// server base, the trusted keyring to verify against, and where to
// stage fetched artifacts. It plays the role snapd's dirs package
// plays for the rest of the tree, but scoped to the updater's own
// concerns rather than the whole filesystem layout.
type Config struct {
	// Channel selects which manifest to fetch, e.g. "stable".
	Channel string

	// ManifestServer is the scheme+host manifest URLs are built
	// against, e.g. "https://os.nepos.io".
	ManifestServer string

	// TrustedKeyringPath is the GPG keyring manifests are verified
	// against.
	TrustedKeyringPath string

	// ManifestPath and SignaturePath are where the fetched manifest
	// and detached signature are staged before verification.
	ManifestPath  string
	SignaturePath string
}

// DefaultManifestServer is the manifest server used when
// NEPOS_UPDATE_SERVER is unset.
const DefaultManifestServer = "https://os.nepos.io"

// DefaultChannel is used when NEPOS_UPDATE_CHANNEL is unset.
const DefaultChannel = "stable"

// LoadConfig builds a Config from environment variables rather than a
// config file, for knobs this small.
func LoadConfig() Config {
	cfg := Config{
		Channel:            DefaultChannel,
		ManifestServer:     DefaultManifestServer,
		TrustedKeyringPath: dirs.TrustedKeyringPath,
		ManifestPath:       dirs.ManifestPath,
		SignaturePath:      dirs.SignaturePath,
	}
	if v := os.Getenv("NEPOS_UPDATE_CHANNEL"); v != "" {
		cfg.Channel = v
	}
	if v := os.Getenv("NEPOS_UPDATE_SERVER"); v != "" {
		cfg.ManifestServer = v
	}
	return cfg
}
