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
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Reader opens a slot's backing file or block device read-only,
// parses its framing header, and exposes the logical image bytes as a
// read-only memory mapping. The mapping is lazily established on the
// first call to Map and torn down by Close.
type Reader struct {
	kind Kind
	path string

	file *os.File

	logicalSize    uint64
	underlyingSize uint64

	mu     sync.Mutex
	mapped []byte
}

// Open opens path read-only, parses the kind framing header at offset
// 0 and validates that the logical image size it describes does not
// exceed the underlying file or block device size.
func Open(kind Kind, path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	size, err := logicalSize(kind, f)
	if err != nil {
		f.Close()
		return nil, err
	}

	underlying, err := underlyingSize(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if underlying < size {
		f.Close()
		return nil, fmt.Errorf("reported image size %d exceeds underlying size %d of %s", size, underlying, path)
	}

	return &Reader{
		kind:           kind,
		path:           path,
		file:           f,
		logicalSize:    size,
		underlyingSize: underlying,
	}, nil
}

func underlyingSize(f *os.File) (uint64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}

	switch {
	case fi.Mode().IsRegular():
		return uint64(fi.Size()), nil
	case fi.Mode()&os.ModeDevice != 0:
		size, err := unix.IoctlGetUint64(int(f.Fd()), unix.BLKGETSIZE64)
		if err != nil {
			return 0, fmt.Errorf("cannot query block device size: %w", err)
		}
		return size, nil
	default:
		return 0, fmt.Errorf("unsupported file type for %s", f.Name())
	}
}

// Kind returns the image framing this reader was opened with.
func (r *Reader) Kind() Kind {
	return r.kind
}

// Path returns the path this reader was opened from.
func (r *Reader) Path() string {
	return r.path
}

// LogicalSize returns the logical image size computed from the
// framing header, stable across repeated opens of the same content.
func (r *Reader) LogicalSize() uint64 {
	return r.logicalSize
}

// UnderlyingSize returns the size of the backing file or block
// device.
func (r *Reader) UnderlyingSize() uint64 {
	return r.underlyingSize
}

// Map returns a read-only memory mapping of [0, LogicalSize()). The
// mapping is created on first call and reused afterwards; it remains
// valid until Close.
func (r *Reader) Map() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mapped != nil {
		return r.mapped, nil
	}
	if r.logicalSize == 0 {
		return nil, nil
	}

	m, err := unix.Mmap(int(r.file.Fd()), 0, int(r.logicalSize), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("cannot map %s: %w", r.path, err)
	}
	r.mapped = m
	return r.mapped, nil
}

// Close unmaps the image (if mapped) and closes the underlying file.
// Close is idempotent; calling it more than once is a no-op.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}

	var unmapErr error
	if r.mapped != nil {
		unmapErr = unix.Munmap(r.mapped)
		r.mapped = nil
	}

	closeErr := r.file.Close()
	r.file = nil

	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}
