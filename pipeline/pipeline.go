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

// Package pipeline drives one image (boot or rootfs) through the
// delta-then-full install strategy: try a VCDIFF patch seeded by the
// running image, verify it, and fall back to a full image download on
// any failure along the way.
package pipeline

import (
	"context"
	"os"
	"strings"

	"github.com/nepos-io/updater/fetcher"
	"github.com/nepos-io/updater/hasher"
	"github.com/nepos-io/updater/image"
	"github.com/nepos-io/updater/logger"
	"github.com/nepos-io/updater/progress"
	"github.com/nepos-io/updater/updatesink"
	"github.com/nepos-io/updater/vcdiff"
)

// Params describes one image's install: where to read the running
// image from, where to write the new one, and what it must hash to.
type Params struct {
	Kind image.Kind

	SeedPath   string
	TargetPath string

	FullURL  string
	DeltaURL string

	ExpectedSHA512 string

	// DownloadProgress and VerifyProgress each report [0,1] over their
	// own phase; the caller is responsible for mapping them onto the
	// overall install progress.
	DownloadProgress progress.Meter
	VerifyProgress   progress.Meter
}

// Pipeline runs Params through the delta-then-full strategy using a
// shared Fetcher.
type Pipeline struct {
	Fetcher *fetcher.Fetcher
}

// New builds a Pipeline with its own Fetcher, so two Pipelines never
// share a client.
func New() *Pipeline {
	return &Pipeline{Fetcher: fetcher.New()}
}

// Run tries a delta patch first, then falls back to a full image
// download, each followed by a digest check. ok reports overall
// success; usedDelta is for logging only, never surfaced to callers of
// Run's caller, since a delta success and a full-download success must
// look identical downstream.
func (p *Pipeline) Run(ctx context.Context, params Params) (ok bool, usedDelta bool, err error) {
	if params.DownloadProgress == nil {
		params.DownloadProgress = progress.Null
	}
	if params.VerifyProgress == nil {
		params.VerifyProgress = progress.Null
	}

	if p.tryDelta(ctx, params) {
		if p.verify(ctx, params) {
			return true, true, nil
		}
		logger.Noticef("delta update for %s verified incorrectly, falling back to full image", params.Kind)
	}

	if err := p.downloadFull(ctx, params); err != nil {
		logger.Noticef("full image download for %s failed: %v", params.Kind, err)
		return false, false, err
	}

	if p.verify(ctx, params) {
		return true, false, nil
	}

	logger.Noticef("full image update failed as well.")
	return false, false, nil
}

// tryDelta attempts the seed-then-patch path. Any failure along the
// way (seed unopenable, transport error, decode error) is swallowed:
// the caller falls through to a full download.
func (p *Pipeline) tryDelta(ctx context.Context, params Params) bool {
	seed, err := image.Open(params.Kind, params.SeedPath)
	if err != nil {
		logger.Debugf("cannot open seed image %s: %v", params.SeedPath, err)
		return false
	}
	defer seed.Close()

	patchFile, err := os.CreateTemp("", "nepos-delta-*.vcdiff")
	if err != nil {
		logger.Debugf("cannot create delta staging file: %v", err)
		return false
	}
	patchPath := patchFile.Name()
	defer os.Remove(patchPath)

	writeErr := func() error {
		defer patchFile.Close()
		return p.Fetcher.Get(ctx, params.DeltaURL, fetcher.Options{
			ChunkFunc: func(chunk []byte) error {
				_, err := patchFile.Write(chunk)
				return err
			},
			Progress:     params.DownloadProgress,
			MaxRedirects: fetcher.DefaultMaxRedirects,
		})
	}()
	if writeErr != nil {
		logger.Debugf("cannot fetch delta %s: %v", params.DeltaURL, writeErr)
		return false
	}

	sink, err := updatesink.Open(params.TargetPath)
	if err != nil {
		logger.Debugf("cannot open update sink %s: %v", params.TargetPath, err)
		return false
	}
	defer sink.Close()

	if err := vcdiff.Decode(ctx, seed.Path(), patchPath, sink); err != nil {
		logger.Debugf("delta decode for %s failed: %v", params.Kind, err)
		return false
	}

	return true
}

// downloadFull writes fullURL directly to target, overwriting any
// partial delta attempt; this is intentional and safe because target
// is always the inactive slot.
func (p *Pipeline) downloadFull(ctx context.Context, params Params) error {
	sink, err := updatesink.Open(params.TargetPath)
	if err != nil {
		return err
	}
	defer sink.Close()

	if err := sink.Clear(); err != nil {
		return err
	}

	return p.Fetcher.Get(ctx, params.FullURL, fetcher.Options{
		ChunkFunc: func(chunk []byte) error {
			_, err := sink.Write(chunk)
			return err
		},
		Progress:      params.DownloadProgress,
		MaxRedirects:  fetcher.DefaultMaxRedirects,
		RetryStrategy: fetcher.DefaultDownloadRetryStrategy,
		Reset:         sink.Clear,
	})
}

// verify hashes target and compares it against ExpectedSHA512,
// reporting progress on VerifyProgress as it goes.
func (p *Pipeline) verify(ctx context.Context, params Params) bool {
	target, err := image.Open(params.Kind, params.TargetPath)
	if err != nil {
		logger.Debugf("cannot open target image %s for verification: %v", params.TargetPath, err)
		return false
	}
	defer target.Close()

	buf, err := target.Map()
	if err != nil {
		logger.Debugf("cannot map target image %s for verification: %v", params.TargetPath, err)
		return false
	}

	total := uint64(len(buf))
	params.VerifyProgress.Start(params.TargetPath, float64(total))
	digest, err := hasher.SHA512Hex(ctx, buf, func(pos, _ uint64) {
		if total > 0 {
			params.VerifyProgress.Set(float64(pos))
		}
	})
	params.VerifyProgress.Finished()
	if err != nil {
		logger.Debugf("hashing %s failed: %v", params.TargetPath, err)
		return false
	}

	return strings.EqualFold(digest, params.ExpectedSHA512)
}
