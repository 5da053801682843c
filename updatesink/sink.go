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

// Package updatesink is the write destination for both full-image
// downloads and VCDIFF-reconstructed bytes: an alt-slot file or block
// device, written unbuffered and sequentially from offset 0.
package updatesink

import (
	"fmt"
	"os"
)

// Sink writes image bytes to an alt-slot target, sequentially from
// its current write position. It implements io.Writer so it composes
// directly with io.Copy and io.MultiWriter, the way store_download.go
// composes a plain io.Writer with a hasher and a progress meter.
type Sink struct {
	path string
	file *os.File
	pos  int64
}

// Open opens path for writing, truncating any existing regular file.
// Block devices are opened without O_TRUNC since truncation on a
// device node is meaningless.
func Open(path string) (*Sink, error) {
	flags := os.O_WRONLY | os.O_CREATE
	fi, err := os.Stat(path)
	if err == nil && fi.Mode()&os.ModeDevice == 0 {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, err
	}

	return &Sink{path: path, file: f}, nil
}

// Write appends p at the current position, advancing it. It
// implements io.Writer.
func (s *Sink) Write(p []byte) (int, error) {
	n, err := s.file.Write(p)
	s.pos += int64(n)
	return n, err
}

// PushBack appends a single byte, as the VCDIFF decoder's sink
// interface may do for literal-instruction bytes.
func (s *Sink) PushBack(b byte) error {
	_, err := s.Write([]byte{b})
	return err
}

// ReserveAdditional signals that n further bytes are coming. On a
// regular file this pre-sizes it with Truncate; on a block device it
// is a no-op since the device's size is fixed.
func (s *Sink) ReserveAdditional(n int64) error {
	fi, err := s.file.Stat()
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeDevice != 0 {
		return nil
	}
	return s.file.Truncate(s.pos + n)
}

// Clear resets the sink to an empty state and seeks back to the
// start. On a regular file it also truncates to 0 bytes: the
// original's UpdateWriter::clear() only seeks without truncating, but
// that leaves stale bytes beyond the new write position on a restart,
// so this truncates instead. On a block device Truncate(0) would fail
// with EINVAL, and there is nothing to shrink anyway since the
// device's size is fixed, so only the seek happens there.
func (s *Sink) Clear() error {
	fi, err := s.file.Stat()
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeDevice == 0 {
		if err := s.file.Truncate(0); err != nil {
			return err
		}
	}
	if _, err := s.file.Seek(0, os.SEEK_SET); err != nil {
		return err
	}
	s.pos = 0
	return nil
}

// Size returns the current write position.
func (s *Sink) Size() int64 {
	return s.pos
}

// Close closes the underlying file. Any bytes written so far remain
// on disk; the caller is responsible for not committing the alt slot
// on a partial write.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *Sink) String() string {
	return fmt.Sprintf("updatesink(%s, %d bytes written)", s.path, s.pos)
}
