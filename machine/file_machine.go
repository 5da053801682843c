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

package machine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nepos-io/updater/bootloader/androidbootenv"
)

// identity is the on-disk document read from dirs.MachineIdentityPath,
// populated once at image build time and otherwise immutable.
type identity struct {
	OSVersion      uint64 `yaml:"os_version"`
	Model          string `yaml:"model"`
	ModelName      string `yaml:"model_name"`
	DeviceRevision string `yaml:"device_revision"`
	DeviceSerial   string `yaml:"device_serial"`
	MachineID      string `yaml:"machine_id"`

	CurrentBootDevice    string `yaml:"current_boot_device"`
	CurrentRootfsDevice  string `yaml:"current_rootfs_device"`
	AltBootDevice        string `yaml:"alt_boot_device"`
	AltRootfsDevice      string `yaml:"alt_rootfs_device"`

	// BootEnvPath is the bootloader environment file CommitAltBoot
	// flips the slot selector in.
	BootEnvPath string `yaml:"boot_env_path"`
}

// fileMachine is a Machine backed by a YAML identity document and an
// Android boot environment file for the slot selector, the Go
// generalization of androidbootenv.Env used for slot persistence.
type fileMachine struct {
	identity
}

// NewFromFile reads a Machine's identity from a YAML document at path.
func NewFromFile(path string) (Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read machine identity: %w", err)
	}

	var id identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("cannot parse machine identity: %w", err)
	}

	return &fileMachine{identity: id}, nil
}

func (m *fileMachine) OSVersion() uint64           { return m.identity.OSVersion }
func (m *fileMachine) Model() string               { return m.identity.Model }
func (m *fileMachine) ModelName() string           { return m.identity.ModelName }
func (m *fileMachine) DeviceRevision() string      { return m.identity.DeviceRevision }
func (m *fileMachine) DeviceSerial() string        { return m.identity.DeviceSerial }
func (m *fileMachine) MachineID() string           { return m.identity.MachineID }
func (m *fileMachine) CurrentBootDevice() string   { return m.identity.CurrentBootDevice }
func (m *fileMachine) CurrentRootfsDevice() string { return m.identity.CurrentRootfsDevice }
func (m *fileMachine) AltBootDevice() string       { return m.identity.AltBootDevice }
func (m *fileMachine) AltRootfsDevice() string     { return m.identity.AltRootfsDevice }

// CommitAltBoot flips the "boot_target" key in the boot environment
// file to "alt", the way androidbootenv.Env persists bootloader
// variables as a flat key=value file.
func (m *fileMachine) CommitAltBoot() error {
	env, err := androidbootenv.Load(m.identity.BootEnvPath)
	if err != nil {
		return fmt.Errorf("cannot load boot environment: %w", err)
	}
	env.Set("boot_target", "alt")
	return env.Save()
}
