// service.go - Installer script resolution.
//
// This file implements the service layer: it fetches the requested release,
// picks a resolution strategy, builds the platform mapping and renders the
// installer script.
package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/egoist/bina/internal/manifest"
	"github.com/egoist/bina/internal/script"
)

// InstallerService struct holds dependencies for installer script generation.
type InstallerService struct {
	config   *Config
	releases ReleaseSource
	logger   *zap.SugaredLogger
}

// NewInstallerService creates a new InstallerService instance.
func NewInstallerService(cfg *Config, releases ReleaseSource, logger *zap.SugaredLogger) *InstallerService {
	return &InstallerService{
		config:   cfg,
		releases: releases,
		logger:   logger,
	}
}

func requestTimeout(cfg *Config) time.Duration {
	return time.Duration(cfg.RequestTimeout) * time.Second
}

// fetchToken returns the token used for provider requests: the requester's
// own token, or the server fallback when they supplied none.
func (s *InstallerService) fetchToken(req InstallRequest) string {
	if req.UserToken != "" {
		return req.UserToken
	}
	return s.config.GitHubToken
}

// BuildScript resolves req into an installer script.
func (s *InstallerService) BuildScript(ctx context.Context, req InstallRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout(s.config))
	defer cancel()

	fetchToken := s.fetchToken(req)

	release, err := s.releases.GetRelease(ctx, req.Ref, fetchToken)
	if err != nil {
		return "", err
	}
	if release == nil {
		return "", &manifest.NoReleaseError{Repo: req.Ref.Repo(), Version: req.Ref.Version}
	}
	if len(release.Assets) == 0 {
		return "", &manifest.NoAssetsError{Tag: release.TagName}
	}

	mode, manifestAsset := manifest.DetectMode(release)
	var file *manifest.File
	if mode == manifest.ModeExplicit {
		data, err := s.releases.FetchAsset(ctx, *manifestAsset, fetchToken)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", manifest.FileName, err)
		}
		if file, err = manifest.Parse(data); err != nil {
			return "", err
		}
	}

	resolver, err := manifest.NewResolver(mode, file)
	if err != nil {
		return "", err
	}
	mapping, err := resolver.Resolve(req.Ref, release)
	if err != nil {
		return "", err
	}

	var unrecognized []string
	for _, e := range mapping.Entries() {
		if !e.Key.Known() {
			unrecognized = append(unrecognized, e.Key.String())
		}
	}
	if len(unrecognized) > 0 {
		// Kept in the script; those branches can never match a checked platform.
		s.logger.Warnw("Unrecognized platforms in mapping",
			"request_id", req.RequestID,
			"repo", req.Ref.Repo(),
			"platforms", unrecognized,
		)
	}

	s.logger.Debugw("Resolved release",
		"request_id", req.RequestID,
		"repo", req.Ref.Repo(),
		"requested", req.Ref.Version,
		"tag", release.TagName,
		"mode", mode.String(),
		"platforms", mapping.Len(),
	)

	return script.Render(script.Params{
		OriginalVersion: req.Ref.Version,
		ResolvedVersion: release.TagName,
		APIBase:         s.config.PublicURL,
		Repo:            req.Ref,
		BinaryName:      req.BinaryName,
		InstallDir:      req.InstallDir,
		File:            req.File,
		AuthToken:       req.UserToken,
		Debug:           req.Debug,
	}, mapping)
}
