// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2016 Canonical Ltd
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

// Package progress provides a narrow progress-reporting interface the
// update pipeline feeds byte counts and phase labels into, without
// depending on how those counts are ultimately surfaced (log lines, a
// D-Bus signal, a task's progress field).
package progress

// Meter is driven by one long-running operation at a time: Start sets
// the label and total for a phase, Set/Write advance it, Finished
// closes it out.
type Meter interface {
	// Start begins a new phase with the given label and total size.
	Start(label string, total float64)

	// Set moves the current progress for the running phase to current.
	Set(current float64)

	// SetTotal adjusts the total for the running phase, for when the
	// size of a download only becomes known partway through it.
	SetTotal(total float64)

	// Write reports len(p) additional bytes of progress and never
	// fails; it satisfies io.Writer so a Meter can sit directly in a
	// download's io.Copy or io.TeeReader chain.
	Write(p []byte) (n int, err error)

	// Finished marks the running phase complete.
	Finished()

	// Notify surfaces an informational message unrelated to progress,
	// such as a retry or a fallback being taken.
	Notify(msg string)

	// Spin indicates indeterminate progress (total unknown).
	Spin(msg string)
}

// Null is a Meter that discards everything, for callers that have no
// interest in progress reporting.
var Null Meter = nullMeter{}

type nullMeter struct{}

func (nullMeter) Start(label string, total float64)  {}
func (nullMeter) Set(current float64)                {}
func (nullMeter) SetTotal(total float64)              {}
func (nullMeter) Write(p []byte) (int, error)         { return len(p), nil }
func (nullMeter) Finished()                           {}
func (nullMeter) Notify(msg string)                   {}
func (nullMeter) Spin(msg string)                     {}
