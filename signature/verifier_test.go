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

package signature_test

import (
	"os"
	"path/filepath"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/nepos-io/updater/signature"
	"github.com/nepos-io/updater/testutil"
)

func Test(t *testing.T) { TestingT(t) }

type verifierSuite struct {
	contentPath, sigPath, keyringPath string
}

var _ = Suite(&verifierSuite{})

func (s *verifierSuite) SetUpTest(c *C) {
	dir := c.MkDir()
	s.contentPath = filepath.Join(dir, "update.json")
	s.sigPath = filepath.Join(dir, "update.json.sig")
	s.keyringPath = filepath.Join(dir, "trusted.gpg")
	c.Assert(os.WriteFile(s.contentPath, []byte("manifest contents"), 0644), IsNil)
	c.Assert(os.WriteFile(s.sigPath, []byte("fake sig"), 0644), IsNil)
	c.Assert(os.WriteFile(s.keyringPath, []byte("fake keyring"), 0644), IsNil)
}

func (s *verifierSuite) TestVerifyUsesGPGWhenAvailable(c *C) {
	gpg := testutil.MockCommand(c, "gpg", "exit 0")
	defer gpg.Restore()

	err := signature.Verify(s.contentPath, s.sigPath, s.keyringPath)
	c.Assert(err, IsNil)

	calls := gpg.Calls()
	c.Assert(calls, HasLen, 1)
	c.Check(calls[0][0], Equals, "gpg")
	c.Check(calls[0][len(calls[0])-2:], DeepEquals, []string{s.sigPath, s.contentPath})
}

func (s *verifierSuite) TestVerifyFailsOnGPGNonZeroExit(c *C) {
	gpg := testutil.MockCommand(c, "gpg", "echo 'BAD signature' >&2; exit 1")
	defer gpg.Restore()

	err := signature.Verify(s.contentPath, s.sigPath, s.keyringPath)
	c.Assert(err, ErrorMatches, "(?s).*signature verification failed.*BAD signature.*")
}

func (s *verifierSuite) TestVerifyFallsBackToOpenPGPWithoutGPGBinary(c *C) {
	oldPath := os.Getenv("PATH")
	os.Setenv("PATH", c.MkDir())
	defer os.Setenv("PATH", oldPath)

	// the fixture keyring is not valid OpenPGP data, so the fallback
	// path surfaces a read error rather than silently succeeding
	err := signature.Verify(s.contentPath, s.sigPath, s.keyringPath)
	c.Assert(err, ErrorMatches, "cannot read trusted keyring.*")
}
