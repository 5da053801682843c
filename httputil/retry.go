// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2016-2017 Canonical Ltd
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU License version 3 as
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
	"io"
	"net/http"
	"net/url"
	"time"

	"gopkg.in/retry.v1"

	"github.com/nepos-io/updater/logger"
)

// ShouldRetryAttempt returns true if another attempt is left in the
// retry strategy and err looks like a transient network failure worth
// retrying (connection reset, unexpected EOF, and the like).
func ShouldRetryAttempt(attempt *retry.Attempt, err error) bool {
	if !attempt.More() {
		return false
	}
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return true
	}
	if urlErr, ok := err.(*url.Error); ok {
		if urlErr.Timeout() {
			return false
		}
		return true
	}
	return false
}

// ShouldRetryHttpResponse returns true if another attempt is left in
// the retry strategy and resp's status code indicates a transient
// server-side failure (5xx) worth retrying.
func ShouldRetryHttpResponse(attempt *retry.Attempt, resp *http.Response) bool {
	if !attempt.More() {
		return false
	}
	return resp.StatusCode >= 500
}

// MaybeLogRetryAttempt logs a debug line for the second and later
// attempts at a given endpoint.
func MaybeLogRetryAttempt(url string, attempt *retry.Attempt, startTime time.Time) {
	if attempt.Count() > 1 {
		logger.Debugf("retrying %s, attempt %d, elapsed time=%v", url, attempt.Count(), time.Since(startTime))
	}
}

// RetryRequest performs doRequest, retrying per strategy whenever the
// request itself fails, the response status is 5xx, or
// readResponseBody reports an error while
// decoding the response (used for catching truncated JSON bodies that
// the status code alone would not reveal).
func RetryRequest(endpoint string, doRequest func() (*http.Response, error), readResponseBody func(*http.Response) error, strategy retry.Strategy) (*http.Response, error) {
	var resp *http.Response
	var err error

	startTime := time.Now()
	for attempt := retry.Start(strategy, nil); attempt.Next(); {
		MaybeLogRetryAttempt(endpoint, attempt, startTime)

		resp, err = doRequest()
		if err != nil {
			if ShouldRetryAttempt(attempt, err) {
				continue
			}
			return nil, err
		}

		if ShouldRetryHttpResponse(attempt, resp) {
			resp.Body.Close()
			continue
		}

		err = readResponseBody(resp)
		if err != nil {
			resp.Body.Close()
			if ShouldRetryAttempt(attempt, err) {
				continue
			}
			return nil, err
		}

		return resp, nil
	}

	return resp, err
}
