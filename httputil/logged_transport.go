// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2018 Canonical Ltd
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

package httputil

import (
	"net/http"
	stdhttputil "net/http/httputil"
	"time"

	"github.com/nepos-io/updater/logger"
	"github.com/nepos-io/updater/osutil"
)

// LoggedTransport wraps a http.RoundTripper and logs request/response
// metadata (and optionally bodies) when NEPOS_DEBUG_HTTP is set.
type LoggedTransport struct {
	Transport http.RoundTripper
	Key       string
	MayLogBody bool
}

func (t *LoggedTransport) mayLogBody() bool {
	return t.MayLogBody && osutil.GetenvBool("NEPOS_DEBUG_HTTP_BODY")
}

// RoundTrip implements http.RoundTripper.
func (t *LoggedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	addUserAgent(req)

	debug := osutil.GetenvBool("NEPOS_DEBUG_HTTP")
	if debug {
		dump, err := stdhttputil.DumpRequestOut(req, t.mayLogBody())
		if err == nil {
			logger.Debugf("%s request:\n%s", t.Key, dump)
		}
	}

	start := time.Now()
	resp, err := t.Transport.RoundTrip(req)
	if debug {
		if err != nil {
			logger.Debugf("%s error after %s: %v", t.Key, time.Since(start), err)
		} else {
			dump, derr := stdhttputil.DumpResponse(resp, t.mayLogBody())
			if derr == nil {
				logger.Debugf("%s response after %s:\n%s", t.Key, time.Since(start), dump)
			}
		}
	}
	return resp, err
}
