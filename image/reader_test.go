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

package image_test

import (
	"os"
	"path/filepath"

	. "gopkg.in/check.v1"

	"github.com/nepos-io/updater/image"
)

type readerSuite struct{}

var _ = Suite(&readerSuite{})

// squashfsHeaderSize is the byte size of image's packed squashfsHeader
// (5 uint32 + 6 uint16 + 2 uint64 fields read sequentially, no padding).
const squashfsHeaderSize = 48

// squashfsBytesUsedOffset is where BytesUsed lands in that sequential
// layout: 5*4 (Magic..Fragments) + 6*2 (Compress..Minor) + 8 (RootInode).
const squashfsBytesUsedOffset = 40

func writeSquashfsFixture(c *C, path string, bytesUsed uint64, pad uint64) {
	f, err := os.Create(path)
	c.Assert(err, IsNil)
	defer f.Close()

	hdr := make([]byte, squashfsHeaderSize)
	copy(hdr[0:4], []byte{'h', 's', 'q', 's'})
	putLE64(hdr[squashfsBytesUsedOffset:squashfsBytesUsedOffset+8], bytesUsed)

	_, err = f.Write(hdr)
	c.Assert(err, IsNil)

	if pad > 0 {
		_, err = f.Write(make([]byte, pad))
		c.Assert(err, IsNil)
	}
}

func putLE64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}

func (s *readerSuite) TestOpenSquashfsComputesLogicalSize(c *C) {
	path := filepath.Join(c.MkDir(), "rootfs.squashfs")
	writeSquashfsFixture(c, path, 5000, 8192-squashfsHeaderSize)

	r, err := image.Open(image.SquashFS, path)
	c.Assert(err, IsNil)
	defer r.Close()

	c.Check(r.LogicalSize(), Equals, uint64(8192))
	c.Check(r.Kind(), Equals, image.SquashFS)
}

func (s *readerSuite) TestOpenRejectsImageLargerThanFile(c *C) {
	path := filepath.Join(c.MkDir(), "rootfs.squashfs")
	// bytes_used implies a logical size far larger than the file we wrote.
	writeSquashfsFixture(c, path, 10*1024*1024, 0)

	_, err := image.Open(image.SquashFS, path)
	c.Assert(err, ErrorMatches, ".*exceeds underlying size.*")
}

func (s *readerSuite) TestOpenMissingFile(c *C) {
	_, err := image.Open(image.SquashFS, filepath.Join(c.MkDir(), "missing"))
	c.Assert(err, NotNil)
}

func (s *readerSuite) TestMapAndCloseIdempotent(c *C) {
	path := filepath.Join(c.MkDir(), "rootfs.squashfs")
	writeSquashfsFixture(c, path, 4096, 4096-squashfsHeaderSize)

	r, err := image.Open(image.SquashFS, path)
	c.Assert(err, IsNil)

	buf, err := r.Map()
	c.Assert(err, IsNil)
	c.Check(len(buf), Equals, 4096)
	c.Check(buf[0:4], DeepEquals, []byte{'h', 's', 'q', 's'})

	c.Assert(r.Close(), IsNil)
	c.Assert(r.Close(), IsNil)
}
