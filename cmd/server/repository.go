// repository.go - Release metadata source.
//
// This file defines the ReleaseSource interface the installer service reads
// releases through. The production implementation is the GitHub client.
package main

import (
	"context"

	"github.com/egoist/bina/internal/github"
	"github.com/egoist/bina/internal/manifest"
)

// ReleaseSource interface defines the release metadata operations the service needs.
type ReleaseSource interface {
	GetRelease(ctx context.Context, ref manifest.Ref, token string) (*manifest.Release, error)
	FetchAsset(ctx context.Context, asset manifest.Asset, token string) ([]byte, error)
}

var _ ReleaseSource = (*github.Client)(nil)

// NewGitHubReleaseSource creates the GitHub-backed ReleaseSource described by cfg.
func NewGitHubReleaseSource(cfg *Config) *github.Client {
	c := github.NewClient(cfg.GitHubAPI, github.UserAgent(ServerVersion), requestTimeout(cfg))
	c.MaxAssetBytes = cfg.MaxManifestBytes
	return c
}
