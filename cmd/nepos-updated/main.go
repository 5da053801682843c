// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2015 Canonical Ltd
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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"

	"github.com/nepos-io/updater/dirs"
	"github.com/nepos-io/updater/logger"
	"github.com/nepos-io/updater/machine"
	"github.com/nepos-io/updater/updater"
)

// defaultCheckInterval is how often the daemon polls for an update
// when NEPOS_CHECK_INTERVAL is unset.
const defaultCheckInterval = time.Hour

func init() {
	if err := logger.SimpleSetup(); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: failed to activate logging: %s\n", err)
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func checkInterval() time.Duration {
	v := os.Getenv("NEPOS_CHECK_INTERVAL")
	if v == "" {
		return defaultCheckInterval
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		logger.Noticef("cannot parse NEPOS_CHECK_INTERVAL=%q, using default of %s", v, defaultCheckInterval)
		return defaultCheckInterval
	}
	return time.Duration(secs) * time.Second
}

func run() error {
	m, err := machine.NewFromFile(dirs.MachineIdentityPath)
	if err != nil {
		return fmt.Errorf("cannot load machine identity: %w", err)
	}

	u := updater.New(updater.LoadConfig(), m)
	defer u.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	sigusr1 := make(chan os.Signal, 1)
	signal.Notify(sigusr1, syscall.SIGUSR1)

	ticker := time.NewTicker(checkInterval())
	defer ticker.Stop()

	if sent, err := daemon.SdNotify(false, "READY=1"); err != nil {
		logger.Debugf("cannot notify systemd readiness: %v", err)
	} else if sent {
		logger.Debugf("notified systemd readiness")
	}

	logger.Noticef("nepos-updated starting, model=%s", m.Model())

	u.Check(ctx)

	for {
		select {
		case ev := <-u.CheckEvents():
			handleCheckEvent(ctx, u, ev)

		case ev := <-u.ProgressEvents():
			logger.Debugf("install progress: %s %.1f%%", ev.State, ev.Progress*100)

		case res := <-u.Results():
			if res.Success {
				logger.Noticef("install succeeded, alt slot committed for next boot")
			} else {
				logger.Noticef("install failed: %s", res.Reason)
			}

		case <-ticker.C:
			u.Check(ctx)

		case <-sigusr1:
			logger.Noticef("SIGUSR1 received, checking for an update now")
			u.Check(ctx)

		case s := <-sig:
			logger.Noticef("exiting on %s signal", s)
			return nil
		}
	}
}

// handleCheckEvent logs every check-cycle transition and kicks off an
// install as soon as an update is confirmed available.
func handleCheckEvent(ctx context.Context, u *updater.Updater, ev updater.CheckEvent) {
	switch ev.State {
	case updater.CheckUpdateAvailable:
		logger.Noticef("update available: build %d, starting install", ev.Version)
		u.Install(ctx)
	case updater.CheckAlreadyUpToDate:
		logger.Debugf("already up to date")
	case updater.CheckFailed:
		logger.Noticef("check failed: %s", ev.Reason)
	default:
		logger.Debugf("check: %s", ev.State)
	}
}
