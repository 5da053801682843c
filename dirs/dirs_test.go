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

package dirs_test

import (
	"path/filepath"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/nepos-io/updater/dirs"
)

func Test(t *testing.T) { TestingT(t) }

type dirsSuite struct{}

var _ = Suite(&dirsSuite{})

func (s *dirsSuite) TestSetRootDir(c *C) {
	root := c.MkDir()
	dirs.SetRootDir(root)
	defer dirs.SetRootDir("/")

	c.Check(dirs.ManifestPath, Equals, filepath.Join(root, "tmp/update.json"))
	c.Check(dirs.SignaturePath, Equals, filepath.Join(root, "tmp/update.json.sig"))
	c.Check(dirs.MachineIdentityPath, Equals, filepath.Join(root, "etc/nepos/machine.yaml"))
}
