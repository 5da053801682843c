// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2016-2021 Canonical Ltd
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

// Package signature verifies a detached signature over a fetched
// manifest against a trusted keyring, either by shelling out to gpg
// (preferred, matching the original Updater::verifySignature) or, if
// no gpg binary is available, by checking the signature in-process
// with golang.org/x/crypto/openpgp.
package signature

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/crypto/openpgp"

	"github.com/nepos-io/updater/osutil"
)

// ErrVerificationFailed is returned when the signature does not
// verify against the trusted keyring.
var ErrVerificationFailed = fmt.Errorf("signature verification failed")

// Verify checks the detached signature at sigPath over the content at
// contentPath against the keys in the armored or binary keyring at
// keyringPath.
func Verify(contentPath, sigPath, keyringPath string) error {
	if osutil.ExecutableExists("gpg") {
		return verifyWithGPG(contentPath, sigPath, keyringPath)
	}
	return verifyWithOpenPGP(contentPath, sigPath, keyringPath)
}

func verifyWithGPG(contentPath, sigPath, keyringPath string) error {
	cmd := exec.Command("gpg", "--quiet", "--no-default-keyring", "--keyring", keyringPath, "--verify", sigPath, contentPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", ErrVerificationFailed, osutil.OutputErr(out, err))
	}
	return nil
}

func verifyWithOpenPGP(contentPath, sigPath, keyringPath string) error {
	keyringFile, err := os.Open(keyringPath)
	if err != nil {
		return err
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadKeyRing(keyringFile)
	if err != nil {
		// the trusted keyring is commonly stored in armored form
		keyringFile.Seek(0, os.SEEK_SET)
		keyring, err = openpgp.ReadArmoredKeyRing(keyringFile)
		if err != nil {
			return fmt.Errorf("cannot read trusted keyring: %w", err)
		}
	}

	content, err := os.Open(contentPath)
	if err != nil {
		return err
	}
	defer content.Close()

	sig, err := os.Open(sigPath)
	if err != nil {
		return err
	}
	defer sig.Close()

	_, err = openpgp.CheckDetachedSignature(keyring, content, sig)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrVerificationFailed, err)
	}
	return nil
}
