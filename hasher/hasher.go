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

// Package hasher computes SHA-512 digests over a mapped image in
// fixed-size chunks, reporting progress as it goes.
package hasher

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
)

// ChunkSize is the block size the digest is computed over; chosen to
// match the original verifyImage()'s 1 MiB read buffer.
const ChunkSize = 1024 * 1024

// ProgressFunc is called after each chunk with the number of bytes
// hashed so far and the total to hash.
type ProgressFunc func(pos, total uint64)

// SHA512Hex computes the lowercase hex SHA-512 digest of buf, calling
// progress (if non-nil) after each ChunkSize-sized step. It returns
// ctx.Err() if the context is cancelled between chunks, so hashing of
// a large image can be interrupted at the next chunk boundary.
func SHA512Hex(ctx context.Context, buf []byte, progress ProgressFunc) (string, error) {
	h := sha512.New()
	total := uint64(len(buf))

	var pos uint64
	for pos < total {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		end := pos + ChunkSize
		if end > total {
			end = total
		}
		h.Write(buf[pos:end])
		pos = end

		if progress != nil {
			progress(pos, total)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
