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

// Package fetcher does a streaming HTTP GET with a per-chunk callback,
// progress reporting, a redirect budget and a wall-clock timeout,
// grounded on store.downloadImpl's request/retry/progress wiring.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/juju/ratelimit"
	"gopkg.in/retry.v1"

	"github.com/nepos-io/updater/httputil"
	"github.com/nepos-io/updater/i18n"
	"github.com/nepos-io/updater/progress"
)

// DefaultTimeout is the wall-clock budget for a single fetch.
const DefaultTimeout = 60 * time.Second

// DefaultMaxRedirects is the redirect budget for fetches that have no
// protocol-specified limit (image downloads); the manifest and
// signature fetches set Options.MaxRedirects explicitly instead.
const DefaultMaxRedirects = 10

// singleAttempt bounds a fetch to exactly one try, used whenever
// Options.RetryStrategy is left nil: the manifest, signature and delta
// fetches never retry, since a delta fetch falls through to a full
// download on any failure instead; only a full image download retries.
var singleAttempt retry.Strategy = retry.LimitCount(1, retry.Regular{})

// DefaultDownloadRetryStrategy is the backoff used for full-image
// downloads, the same shape as store.downloadRetryStrategy: up to 7
// attempts, capped at 90s total, exponential backoff from 500ms.
var DefaultDownloadRetryStrategy retry.Strategy = retry.LimitCount(7, retry.LimitTime(90*time.Second,
	retry.Exponential{
		Initial: 500 * time.Millisecond,
		Factor:  2.5,
	},
))

// StatusError is returned when the server responds with a non-2xx
// status after following redirects.
type StatusError struct {
	URL  string
	Code int

	// retryable records whether the attempt that produced this error
	// still had a retry left and the status looked transient (5xx),
	// per httputil.ShouldRetryHttpResponse.
	retryable bool
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.Code, e.URL)
}

// Options configures a single Get call.
type Options struct {
	// Headers are added to the outgoing request, used for the
	// X-nepos-* identification headers on the manifest fetch.
	Headers map[string]string

	// MaxRedirects bounds the number of redirects followed (1 for the
	// manifest, 0 for the detached signature).
	MaxRedirects int

	// ChunkFunc, if set, receives each chunk of the response body in
	// arrival order exactly once. An error aborts the fetch.
	ChunkFunc func(chunk []byte) error

	// Progress receives (received, total) updates; total is -1 when
	// the server did not send Content-Length.
	Progress progress.Meter

	// RateLimit caps the read rate in bytes/sec; 0 means unlimited.
	RateLimit int64

	// RetryStrategy governs retrying the whole request on a transient
	// failure (connection reset, 5xx). Nil means a single attempt, the
	// right choice for the manifest, signature and delta fetches;
	// DefaultDownloadRetryStrategy is used for full-image downloads.
	RetryStrategy retry.Strategy

	// Reset, when set, is called before each retry past the first
	// attempt so the destination can discard whatever a prior partial
	// attempt wrote, the way downloadImpl reseeds its hash and seeks
	// back to the resume offset before reissuing the request.
	Reset func() error
}

// Fetcher issues streaming HTTP GETs. A Fetcher holds no per-fetch
// state - each call builds its own client since the redirect policy is
// baked in at construction and varies per call - so two installers can
// each hold their own instance without a shared client.
type Fetcher struct{}

// New builds a Fetcher.
func New() *Fetcher {
	return &Fetcher{}
}

type chunkWriter struct {
	fn func([]byte) error
}

func (w chunkWriter) Write(p []byte) (int, error) {
	if w.fn != nil {
		if err := w.fn(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Get performs the GET, delivering the body to opts.ChunkFunc and
// opts.Progress as it arrives, retrying per opts.RetryStrategy on a
// transient failure. It returns when the body is fully consumed, ctx
// is done, or the retry budget is exhausted.
func (f *Fetcher) Get(ctx context.Context, url string, opts Options) error {
	cli := httputil.NewHTTPClient(&httputil.ClientOptions{
		Timeout:      DefaultTimeout,
		MaxRedirects: opts.MaxRedirects,
	})

	strategy := opts.RetryStrategy
	if strategy == nil {
		strategy = singleAttempt
	}

	pbar := opts.Progress
	if pbar == nil {
		pbar = progress.Null
	}

	startTime := time.Now()
	var finalErr error
	for attempt := retry.Start(strategy, nil); attempt.Next(); {
		httputil.MaybeLogRetryAttempt(url, attempt, startTime)

		if attempt.Count() > 1 && opts.Reset != nil {
			if err := opts.Reset(); err != nil {
				return err
			}
		}

		finalErr = f.doAttempt(ctx, cli, url, opts, pbar, attempt)
		if finalErr == nil {
			return nil
		}
		if !shouldRetry(attempt, finalErr) {
			return finalErr
		}
	}
	return finalErr
}

// shouldRetry classifies finalErr: a non-2xx response defers to the
// retryable flag doAttempt already computed via
// httputil.ShouldRetryHttpResponse, everything else (connection
// resets, truncated reads) goes through httputil.ShouldRetryAttempt.
func shouldRetry(attempt *retry.Attempt, err error) bool {
	if statusErr, ok := err.(*StatusError); ok {
		return statusErr.retryable
	}
	return httputil.ShouldRetryAttempt(attempt, err)
}

func (f *Fetcher) doAttempt(ctx context.Context, cli *http.Client, url string, opts Options, pbar progress.Meter, attempt *retry.Attempt) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := cli.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			URL:       url,
			Code:      resp.StatusCode,
			retryable: httputil.ShouldRetryHttpResponse(attempt, resp),
		}
	}

	pbar.Start(url, float64(resp.ContentLength))

	mw := io.MultiWriter(chunkWriter{opts.ChunkFunc}, pbar)

	var body io.Reader = resp.Body
	if opts.RateLimit > 0 {
		bucket := ratelimit.NewBucketWithRate(float64(opts.RateLimit), 2*opts.RateLimit)
		body = ratelimit.Reader(resp.Body, bucket)
	}

	_, err = io.Copy(mw, body)
	pbar.Finished()
	if err != nil {
		return fmt.Errorf(i18n.G("cannot fetch %s: %w"), url, err)
	}
	return nil
}
