// model.go - Request and response structs.
//
// This file defines the per-request installer parameters parsed from the URL,
// query string and headers, and the JSON bodies returned by the service.
package main

import (
	"net/http"

	"github.com/egoist/bina/internal/manifest"
)

// InstallRequest is everything an installer script is built from.
type InstallRequest struct {
	Ref manifest.Ref
	// UserToken is the token supplied by the requester. It is the only token
	// that may be embedded in a generated script.
	UserToken  string
	BinaryName string
	InstallDir string
	File       string
	Debug      bool
	RequestID  string
}

// newInstallRequest parses the repository identifier and query parameters.
func newInstallRequest(r *http.Request, repo string, cfg *Config) (InstallRequest, error) {
	ref, err := manifest.ParseRef(repo)
	if err != nil {
		return InstallRequest{}, err
	}

	q := r.URL.Query()
	req := InstallRequest{
		Ref:        ref,
		UserToken:  extractUserToken(r),
		BinaryName: q.Get("name"),
		InstallDir: q.Get("dir"),
		File:       q.Get("file"),
		Debug:      q.Has("debug"),
		RequestID:  RequestIDFromContext(r.Context()),
	}
	if req.BinaryName == "" {
		req.BinaryName = ref.Name
	}
	if req.InstallDir == "" {
		req.InstallDir = cfg.DefaultInstallDir
	}
	return req, nil
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
