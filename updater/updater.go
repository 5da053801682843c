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

// Package updater implements the check cycle (fetch manifest, fetch
// signature, verify, compare versions) and the install cycle (run an
// ImagePipeline for boot then rootfs, report progress, commit A/B on
// success), the way snapd's overlord drives its own state machines
// from channel/poll rather than blocking calls.
package updater

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"gopkg.in/tomb.v2"

	"github.com/nepos-io/updater/fetcher"
	"github.com/nepos-io/updater/image"
	"github.com/nepos-io/updater/logger"
	"github.com/nepos-io/updater/machine"
	"github.com/nepos-io/updater/manifest"
	"github.com/nepos-io/updater/pipeline"
	"github.com/nepos-io/updater/signature"
)

// errSuperseded is the tomb-kill reason used when a new Install call
// preempts one already in flight.
var errSuperseded = errors.New("install superseded by a newer request")

// manifestURL builds the per-model, per-channel manifest URL.
func manifestURL(cfg Config, model string) string {
	return fmt.Sprintf("%s/updates/%s/%s.json", cfg.ManifestServer, model, cfg.Channel)
}

// Updater runs the check and install cycles for one Machine. It owns
// no worker state beyond the single in-flight check/install request
// each of Check/Install supersedes.
type Updater struct {
	cfg     Config
	machine machine.Machine

	checkEvents    chan CheckEvent
	progressEvents chan ProgressEvent
	results        chan Result

	mu          sync.Mutex
	available   manifest.AvailableUpdate
	checkCancel context.CancelFunc
	installTomb *tomb.Tomb
}

// New builds an Updater for m using cfg.
func New(cfg Config, m machine.Machine) *Updater {
	return &Updater{
		cfg:            cfg,
		machine:        m,
		checkEvents:    make(chan CheckEvent, 8),
		progressEvents: make(chan ProgressEvent, 64),
		results:        make(chan Result, 4),
	}
}

// CheckEvents returns the channel check-cycle events are delivered on.
func (u *Updater) CheckEvents() <-chan CheckEvent { return u.checkEvents }

// ProgressEvents returns the channel install progress is delivered on.
func (u *Updater) ProgressEvents() <-chan ProgressEvent { return u.progressEvents }

// Results returns the channel install-cycle terminal results are
// delivered on.
func (u *Updater) Results() <-chan Result { return u.results }

// AvailableUpdate returns the update published by the most recently
// completed successful check, or the zero value if none is available.
func (u *Updater) AvailableUpdate() manifest.AvailableUpdate {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.available
}

// Close cancels any in-flight check and kills any in-flight install
// worker.
func (u *Updater) Close() {
	u.mu.Lock()
	if u.checkCancel != nil {
		u.checkCancel()
	}
	t := u.installTomb
	u.mu.Unlock()

	if t != nil {
		t.Kill(errSuperseded)
		t.Wait()
	}
}

// Check starts a new check cycle, aborting any previous one in
// flight. It returns immediately; progress is reported on
// CheckEvents.
func (u *Updater) Check(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)

	u.mu.Lock()
	if u.checkCancel != nil {
		u.checkCancel()
	}
	u.checkCancel = cancel
	u.mu.Unlock()

	go u.runCheck(ctx)
}

func (u *Updater) runCheck(ctx context.Context) {
	f := fetcher.New()

	model := machine.ModelTag(u.machine.Model())
	url := manifestURL(u.cfg, model)

	u.sendCheckEvent(CheckEvent{State: CheckDownloadJSON})

	manifestFile, err := os.Create(u.cfg.ManifestPath)
	if err != nil {
		u.failCheck(fmt.Sprintf("cannot create manifest file: %v", err))
		return
	}
	err = f.Get(ctx, url, fetcher.Options{
		Headers: map[string]string{
			"X-nepos-current":         strconv.FormatUint(u.machine.OSVersion(), 10),
			"X-nepos-machine-id":      u.machine.MachineID(),
			"X-nepos-device-model":    u.machine.ModelName(),
			"X-nepos-device-revision": u.machine.DeviceRevision(),
			"X-nepos-device-serial":   u.machine.DeviceSerial(),
		},
		MaxRedirects: 1,
		ChunkFunc: func(chunk []byte) error {
			_, err := manifestFile.Write(chunk)
			return err
		},
	})
	manifestFile.Close()
	if err != nil {
		u.failCheck(fmt.Sprintf("cannot fetch manifest: %v", err))
		return
	}

	data, err := os.ReadFile(u.cfg.ManifestPath)
	if err != nil {
		u.failCheck(fmt.Sprintf("cannot read manifest: %v", err))
		return
	}

	avail, err := manifest.Parse(data, u.machine.OSVersion())
	if err != nil {
		u.failCheck(fmt.Sprintf("cannot parse manifest: %v", err))
		return
	}

	u.sendCheckEvent(CheckEvent{State: CheckDownloadSignature})

	sigFile, err := os.Create(u.cfg.SignaturePath)
	if err != nil {
		u.failCheck(fmt.Sprintf("cannot create signature file: %v", err))
		return
	}
	err = f.Get(ctx, avail.SignatureURL, fetcher.Options{
		MaxRedirects: 0,
		ChunkFunc: func(chunk []byte) error {
			_, err := sigFile.Write(chunk)
			return err
		},
	})
	sigFile.Close()
	if err != nil {
		u.failCheck(fmt.Sprintf("cannot fetch signature: %v", err))
		return
	}

	u.sendCheckEvent(CheckEvent{State: CheckVerifySignature})

	if err := signature.Verify(u.cfg.ManifestPath, u.cfg.SignaturePath, u.cfg.TrustedKeyringPath); err != nil {
		u.mu.Lock()
		u.available = manifest.AvailableUpdate{}
		u.mu.Unlock()
		u.failCheck(fmt.Sprintf("signature verification failed: %v", err))
		return
	}

	if ctx.Err() != nil {
		u.failCheck("cancelled")
		return
	}

	if avail.Version > u.machine.OSVersion() {
		u.mu.Lock()
		u.available = avail
		u.mu.Unlock()
		u.sendCheckEvent(CheckEvent{State: CheckUpdateAvailable, Version: avail.Version})
	} else {
		u.sendCheckEvent(CheckEvent{State: CheckAlreadyUpToDate})
	}
}

func (u *Updater) failCheck(reason string) {
	u.sendCheckEvent(CheckEvent{State: CheckFailed, Reason: reason})
}

func (u *Updater) sendCheckEvent(ev CheckEvent) {
	u.checkEvents <- ev
}

// Install starts a new install cycle for the currently available
// update, killing any install already in flight first. It returns
// immediately; progress and the terminal result are delivered on
// ProgressEvents/Results.
func (u *Updater) Install(parent context.Context) {
	u.mu.Lock()
	avail := u.available
	prev := u.installTomb
	u.mu.Unlock()

	if prev != nil {
		prev.Kill(errSuperseded)
		prev.Wait()
	}

	t := new(tomb.Tomb)
	u.mu.Lock()
	u.installTomb = t
	u.mu.Unlock()

	t.Go(func() error {
		u.runInstall(t, parent, avail)
		return nil
	})
}

func (u *Updater) runInstall(t *tomb.Tomb, parent context.Context, avail manifest.AvailableUpdate) {
	if !avail.Installable() {
		u.sendResult(Result{Success: false, Reason: "no update available"})
		return
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	go func() {
		select {
		case <-t.Dying():
			cancel()
		case <-ctx.Done():
		}
	}()

	p := pipeline.New()

	bootOK, _, err := p.Run(ctx, pipeline.Params{
		Kind:             image.AndroidBoot,
		SeedPath:         u.machine.CurrentBootDevice(),
		TargetPath:       u.machine.AltBootDevice(),
		FullURL:          avail.BootimgURL,
		DeltaURL:         avail.BootimgDeltaURL,
		ExpectedSHA512:   avail.BootimgSha512,
		DownloadProgress: u.quarterMeter(InstallDownloadBoot, 0.00),
		VerifyProgress:   u.quarterMeter(InstallVerifyBoot, 0.25),
	})
	if err != nil {
		logger.Noticef("boot image pipeline error: %v", err)
	}
	if !bootOK {
		u.sendResult(Result{Success: false, Reason: "boot image update failed"})
		return
	}

	rootfsOK, _, err := p.Run(ctx, pipeline.Params{
		Kind:             image.SquashFS,
		SeedPath:         u.machine.CurrentRootfsDevice(),
		TargetPath:       u.machine.AltRootfsDevice(),
		FullURL:          avail.RootfsURL,
		DeltaURL:         avail.RootfsDeltaURL,
		ExpectedSHA512:   avail.RootfsSha512,
		DownloadProgress: u.quarterMeter(InstallDownloadRootfs, 0.50),
		VerifyProgress:   u.quarterMeter(InstallVerifyRootfs, 0.75),
	})
	if err != nil {
		logger.Noticef("rootfs image pipeline error: %v", err)
	}
	if !rootfsOK {
		u.sendResult(Result{Success: false, Reason: "rootfs update failed"})
		return
	}

	if err := u.machine.CommitAltBoot(); err != nil {
		u.sendResult(Result{Success: false, Reason: fmt.Sprintf("commit failed: %v", err)})
		return
	}

	u.sendResult(Result{Success: true})
}

func (u *Updater) sendResult(r Result) {
	u.results <- r
}
