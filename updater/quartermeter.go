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

package updater

import (
	"github.com/nepos-io/updater/logger"
)

// quarterMeter adapts one pipeline phase's [0,1] progress onto a
// quarter of the overall install progress (base..base+0.25) and
// republishes it as a ProgressEvent, the way taskProgressAdapter
// adapts a Meter onto a single state.Task's progress fields.
type quarterMeter struct {
	u     *Updater
	state InstallState
	base  float64

	total, current float64
}

func (u *Updater) quarterMeter(state InstallState, base float64) *quarterMeter {
	return &quarterMeter{u: u, state: state, base: base}
}

func (m *quarterMeter) Start(label string, total float64) {
	m.total = total
	m.current = 0
	m.emit()
}

func (m *quarterMeter) Set(current float64) {
	m.current = current
	m.emit()
}

func (m *quarterMeter) SetTotal(total float64) {
	m.total = total
	m.emit()
}

func (m *quarterMeter) Write(p []byte) (int, error) {
	m.current += float64(len(p))
	m.emit()
	return len(p), nil
}

func (m *quarterMeter) Finished() {
	m.current = m.total
	m.emit()
}

func (m *quarterMeter) Notify(msg string) {
	logger.Noticef("%s: %s", m.state, msg)
}

func (m *quarterMeter) Spin(msg string) {}

// emit reports overall progress for the quarter m owns. Fractions
// outside [0,1] are dropped rather than clamped, same as a download
// whose Content-Length lied about the total.
func (m *quarterMeter) emit() {
	var frac float64
	if m.total > 0 {
		frac = m.current / m.total
	}
	if frac < 0 || frac > 1 {
		return
	}

	select {
	case m.u.progressEvents <- ProgressEvent{State: m.state, Progress: m.base + frac/4}:
	default:
	}
}
