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

// Package machine identifies the running device and exposes the
// block-device paths of the A/B slots, and flips the next-boot
// selector on a successful update.
package machine

// Machine is read-mostly device identity plus the A/B slot layout.
// CommitAltBoot is its one mutating operation.
type Machine interface {
	OSVersion() uint64
	Model() string
	ModelName() string
	DeviceRevision() string
	DeviceSerial() string
	MachineID() string

	CurrentBootDevice() string
	CurrentRootfsDevice() string
	AltBootDevice() string
	AltRootfsDevice() string

	// CommitAltBoot flips the next-boot selector to the alt slot,
	// atomically and durably (e.g. persisted in bootloader
	// environment). It must only be called after both alt partitions
	// have verified.
	CommitAltBoot() error
}

// knownModels maps a device's model string to the update-server model
// tag used in the manifest URL. Any model not in this table is
// reported as "unknown"; the fetch still proceeds under that tag.
var knownModels = map[string]string{
	"nepos1":           "nepos1",
	"dt410c-evalboard": "nepos1",
}

// ModelTag returns the update-server tag for a device's raw model
// string, or "unknown" if the model is not recognized.
func ModelTag(model string) string {
	if tag, ok := knownModels[model]; ok {
		return tag
	}
	return "unknown"
}
