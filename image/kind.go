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

// Package image opens a slot's backing file or block device read-only
// and parses its framing header to compute the logical image size,
// then exposes that range as a read-only memory mapping for hashing
// and delta-decoding.
package image

import "fmt"

// Kind names one of the supported image framings. It is a plain int
// type, so the compiler does not stop a caller from passing a value
// other than the two constants below; Open rejects such a value at
// run time with an "unsupported image kind" error.
type Kind int

const (
	// AndroidBoot frames an Android boot.img: two magic words followed
	// by kernel/initrd/second/dtb sizes and a page size.
	AndroidBoot Kind = iota
	// SquashFS frames a SquashFS superblock.
	SquashFS
)

func (k Kind) String() string {
	switch k {
	case AndroidBoot:
		return "android-boot"
	case SquashFS:
		return "squashfs"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
