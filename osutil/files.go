// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2014-2015 Canonical Ltd
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

package osutil

import (
	"bytes"
	"crypto"
	_ "crypto/sha512"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// FileExists returns true if the given path exists.
func FileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDirectory returns true if the given path is a directory.
func IsDirectory(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// ExecutableExists returns true if the given name can be found on PATH.
func ExecutableExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// OutputErr formats an error and the given command output for inclusion in
// an error message, trimming a trailing newline if there is one.
func OutputErr(output []byte, err error) error {
	output = bytes.TrimSpace(output)
	if len(output) > 0 {
		return fmt.Errorf("%v\n%s", err, output)
	}
	return err
}

// FileDigest computes the given hash algorithm's digest over the content of
// path, returning the raw digest bytes and the size read.
func FileDigest(path string, algo crypto.Hash) ([]byte, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	h := algo.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, 0, err
	}

	return h.Sum(nil), uint64(n), nil
}
