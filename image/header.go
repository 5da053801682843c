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

package image

import (
	"encoding/binary"
	"fmt"
	"io"
)

// squashfsMagic is the little-endian SquashFS superblock magic "hsqs".
const squashfsMagic = 0x73717368

// androidBootMagic1/2 are the two little-endian magic words at the
// start of an Android boot image header.
const (
	androidBootMagic1 = 0x52444e41
	androidBootMagic2 = 0x2144494f
)

const androidBootHeaderSize = 608

// squashfsHeader mirrors the packed superblock prefix every SquashFS
// filesystem starts with; only the fields needed to compute the
// logical image size are kept.
type squashfsHeader struct {
	Magic      uint32
	Inodes     uint32
	MkfsTime   uint32
	BlockSize  uint32
	Fragments  uint32
	Compress   uint16
	BlockLog   uint16
	Flags      uint16
	NoIDs      uint16
	Major      uint16
	Minor      uint16
	RootInode  uint64
	BytesUsed  uint64
}

// androidBootHeader mirrors the packed prefix of an Android boot.img
// header; only the fields needed to compute the logical image size
// are kept, the rest of the 608-byte header is never read.
type androidBootHeader struct {
	Magic      uint32
	Magic2     uint32
	KernelSize uint32
	KernelAddr uint32
	InitrdSize uint32
	InitrdAddr uint32
	SecondSize uint32
	SecondAddr uint32
	TagsAddr   uint32
	PageSize   uint32
	DtbSize    uint32
}

func align(n, p uint64) uint64 {
	if p == 0 {
		return n
	}
	return (n + p - 1) / p * p
}

// logicalSize reads the framing header for kind from r (positioned at
// offset 0) and returns the logical image size it describes.
func logicalSize(kind Kind, r io.Reader) (uint64, error) {
	switch kind {
	case SquashFS:
		var hdr squashfsHeader
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			return 0, fmt.Errorf("cannot read squashfs header: %w", err)
		}
		if hdr.Magic != squashfsMagic {
			return 0, fmt.Errorf("wrong squashfs magic: %#x", hdr.Magic)
		}
		return align(hdr.BytesUsed, 4096), nil

	case AndroidBoot:
		var hdr androidBootHeader
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			return 0, fmt.Errorf("cannot read android boot header: %w", err)
		}
		if hdr.Magic != androidBootMagic1 || hdr.Magic2 != androidBootMagic2 {
			return 0, fmt.Errorf("wrong android boot magic")
		}
		pageSize := uint64(hdr.PageSize)
		size := align(androidBootHeaderSize, pageSize)
		size += align(uint64(hdr.KernelSize), pageSize)
		size += align(uint64(hdr.InitrdSize), pageSize)
		size += align(uint64(hdr.SecondSize), pageSize)
		size += align(uint64(hdr.DtbSize), pageSize)
		return size, nil

	default:
		return 0, fmt.Errorf("unsupported image kind: %v", kind)
	}
}
