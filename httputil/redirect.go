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
	"fmt"
	"net/http"
)

// checkRedirect returns a http.Client.CheckRedirect func that follows
// at most maxRedirects redirects and strips credentials that must not
// cross a change of host.
func checkRedirect(maxRedirects int) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		fixupHeadersForRedirect(req, via[len(via)-1])
		return nil
	}
}

// fixupHeadersForRedirect carries forward the headers the previous
// request used to identify itself to the manifest/image server, but
// drops Authorization and Cookie when the redirect crosses to a
// different host, the way net/http itself does for those two headers
// since Go 1.8 (here applied to the whole client, not just those two,
// because the update servers put authorization in an X-nepos header).
func fixupHeadersForRedirect(req, prev *http.Request) {
	if req.URL.Host == prev.URL.Host {
		return
	}
	req.Header.Del("Authorization")
	req.Header.Del("Cookie")
	for key := range prev.Header {
		if len(key) > len("X-Nepos") && key[:len("X-Nepos")] == "X-Nepos" {
			req.Header.Del(key)
		}
	}
}
