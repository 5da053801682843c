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

// Package httputil provides the HTTP client shared by the fetcher:
// logged round trips, a bounded redirect policy and a small retry
// helper layered on top of gopkg.in/retry.v1.
package httputil

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"
)

var userAgent = "nepos-updated/unknown"

// SetUserAgent sets the User-Agent header sent on every request made
// with a client built by NewHTTPClient.
func SetUserAgent(ua string) {
	userAgent = ua
}

// MockUserAgent overrides the User-Agent for use in tests and returns
// a restore function.
func MockUserAgent(ua string) (restore func()) {
	old := userAgent
	userAgent = ua
	return func() { userAgent = old }
}

// ClientOptions controls the behavior of a client returned by
// NewHTTPClient. A nil *ClientOptions is equivalent to &ClientOptions{}.
type ClientOptions struct {
	// Timeout bounds the whole request/response cycle, including
	// reading the body. Zero means no timeout.
	Timeout time.Duration

	// TLSConfig is used verbatim for the underlying transport, when set.
	TLSConfig *tls.Config

	// MayLogBody allows the LoggedTransport to include request and
	// response bodies in debug output, when NEPOS_DEBUG_HTTP enables
	// dumps and NEPOS_DEBUG_HTTP_BODY enables body logging.
	MayLogBody bool

	// Proxy selects the proxy to use per request, as for
	// http.Transport.Proxy. Defaults to http.ProxyFromEnvironment.
	Proxy func(*http.Request) (*url.URL, error)

	// MaxRedirects caps the number of redirects the client will
	// follow. Zero means no redirects are followed (used for the
	// detached-signature fetch); a negative value uses the package
	// default (10).
	MaxRedirects int
}

const defaultMaxRedirects = 10

func newBaseTransport(opts *ClientOptions) *http.Transport {
	proxy := http.ProxyFromEnvironment
	var tlsConfig *tls.Config
	if opts != nil {
		if opts.Proxy != nil {
			proxy = opts.Proxy
		}
		tlsConfig = opts.TLSConfig
	}

	return &http.Transport{
		Proxy: proxy,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       tlsConfig,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   5,
	}
}

// NewHTTPClient returns a http.Client configured with a LoggedTransport,
// a bounded redirect policy and (if requested) an overall timeout. A
// nil opts is equivalent to &ClientOptions{}.
func NewHTTPClient(opts *ClientOptions) *http.Client {
	if opts == nil {
		opts = &ClientOptions{}
	}

	maxRedirects := opts.MaxRedirects
	if maxRedirects < 0 {
		maxRedirects = defaultMaxRedirects
	}

	transport := &LoggedTransport{
		Transport:  newBaseTransport(opts),
		Key:        "HTTP",
		MayLogBody: opts.MayLogBody,
	}

	return &http.Client{
		Transport:     transport,
		CheckRedirect: checkRedirect(maxRedirects),
		Timeout:       opts.Timeout,
	}
}

// BaseTransport returns the underlying *http.Transport of a client
// built by NewHTTPClient. It panics if cli was not built that way.
func BaseTransport(cli *http.Client) *http.Transport {
	lt, ok := cli.Transport.(*LoggedTransport)
	if !ok {
		panic(fmt.Sprintf("cannot extract base transport, expected *LoggedTransport, got %T", cli.Transport))
	}
	t, ok := lt.Transport.(*http.Transport)
	if !ok {
		panic(fmt.Sprintf("cannot extract base transport, expected *http.Transport, got %T", lt.Transport))
	}
	return t
}

var (
	uaMu sync.Mutex
)

// addUserAgent sets the User-Agent header on req, guarding against
// concurrent MockUserAgent calls in tests.
func addUserAgent(req *http.Request) {
	uaMu.Lock()
	ua := userAgent
	uaMu.Unlock()
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", ua)
	}
}
