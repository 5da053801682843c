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

import "fmt"

// CheckState is the ordered state of one check cycle.
type CheckState int

const (
	CheckUndefined CheckState = iota
	CheckDownloadJSON
	CheckDownloadSignature
	CheckVerifySignature
	CheckUpdateAvailable
	CheckAlreadyUpToDate
	CheckFailed
)

func (s CheckState) String() string {
	switch s {
	case CheckUndefined:
		return "undefined"
	case CheckDownloadJSON:
		return "download-json"
	case CheckDownloadSignature:
		return "download-signature"
	case CheckVerifySignature:
		return "verify-signature"
	case CheckUpdateAvailable:
		return "update-available"
	case CheckAlreadyUpToDate:
		return "already-up-to-date"
	case CheckFailed:
		return "failed"
	default:
		return fmt.Sprintf("CheckState(%d)", int(s))
	}
}

// InstallState is the ordered state of one install cycle.
type InstallState int

const (
	InstallIdle InstallState = iota
	InstallDownloadBoot
	InstallVerifyBoot
	InstallDownloadRootfs
	InstallVerifyRootfs
	InstallDone
	InstallFailed
)

func (s InstallState) String() string {
	switch s {
	case InstallIdle:
		return "idle"
	case InstallDownloadBoot:
		return "download-boot"
	case InstallVerifyBoot:
		return "verify-boot"
	case InstallDownloadRootfs:
		return "download-rootfs"
	case InstallVerifyRootfs:
		return "verify-rootfs"
	case InstallDone:
		return "done"
	case InstallFailed:
		return "failed"
	default:
		return fmt.Sprintf("InstallState(%d)", int(s))
	}
}

// CheckEvent is delivered on the Updater's check-event channel as the
// check cycle progresses.
type CheckEvent struct {
	State   CheckState
	Version uint64 // set on CheckUpdateAvailable
	Reason  string // set on CheckFailed
}

// ProgressEvent carries the overall install progress, quarter
// segmented: 0.00-0.25 boot download, 0.25-0.50 boot verify, 0.50-0.75
// rootfs download, 0.75-1.00 rootfs verify.
type ProgressEvent struct {
	State    InstallState
	Progress float64
}

// Result is the terminal event of one install cycle.
type Result struct {
	Success bool
	Reason  string
}
