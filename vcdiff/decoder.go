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

// Package vcdiff streams a VCDIFF/xdelta3 patch against a dictionary
// image into a Writer, the way store_download.go's applyDelta shells
// out to the xdelta3 binary rather than reimplementing RFC 3284.
package vcdiff

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/nepos-io/updater/osutil"
)

// ErrTargetTooLarge is returned when the reconstructed target would
// exceed MaxTargetSize.
var ErrTargetTooLarge = fmt.Errorf("vcdiff: reconstructed target exceeds size cap")

// MaxTargetSize is the hard cap on a reconstructed target image. It
// applies to delta decoding only; full-image downloads are not capped.
var MaxTargetSize int64 = 512 * 1024 * 1024

func xdelta3Cmd(args ...string) (*exec.Cmd, error) {
	if !osutil.ExecutableExists("xdelta3") {
		return nil, fmt.Errorf("xdelta3 binary not found in PATH")
	}
	return exec.Command("xdelta3", args...), nil
}

// limitedWriter aborts with ErrTargetTooLarge once more than limit
// bytes have been written to it, rather than silently truncating.
type limitedWriter struct {
	w       io.Writer
	limit   int64
	written int64
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if l.written+int64(len(p)) > l.limit {
		return 0, ErrTargetTooLarge
	}
	n, err := l.w.Write(p)
	l.written += int64(n)
	return n, err
}

// Decode reconstructs a target image by applying the VCDIFF patch at
// patchPath against the dictionary at dictionaryPath, streaming the
// reconstructed bytes into sink. The reconstructed size is capped at
// MaxTargetSize; exceeding it aborts the decode mid-stream.
func Decode(ctx context.Context, dictionaryPath, patchPath string, sink io.Writer) error {
	cmd, err := xdelta3Cmd("-d", "-s", dictionaryPath, patchPath)
	if err != nil {
		return err
	}

	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	cmd.Stdout = &limitedWriter{w: sink, limit: MaxTargetSize}

	if err := osutil.RunWithContext(ctx, cmd); err != nil {
		if err == ErrTargetTooLarge {
			return err
		}
		return osutil.OutputErr(stderr.Bytes(), err)
	}
	return nil
}
