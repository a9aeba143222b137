package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/egoist/bina/internal/manifest"
)

var testLogger *zap.SugaredLogger

func TestMain(m *testing.M) {
	testLogger = zap.NewNop().Sugar()
	os.Exit(m.Run())
}

// mockReleaseSource is a ReleaseSource driven by func fields.
type mockReleaseSource struct {
	getRelease func(ctx context.Context, ref manifest.Ref, token string) (*manifest.Release, error)
	fetchAsset func(ctx context.Context, asset manifest.Asset, token string) ([]byte, error)
}

func (m *mockReleaseSource) GetRelease(ctx context.Context, ref manifest.Ref, token string) (*manifest.Release, error) {
	return m.getRelease(ctx, ref, token)
}

func (m *mockReleaseSource) FetchAsset(ctx context.Context, asset manifest.Asset, token string) ([]byte, error) {
	if m.fetchAsset == nil {
		return nil, errors.New("unexpected FetchAsset call")
	}
	return m.fetchAsset(ctx, asset, token)
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.GitHubToken = "server-secret"
	return cfg
}

func releaseWith(tag string, names ...string) *manifest.Release {
	rel := &manifest.Release{TagName: tag}
	for i, n := range names {
		rel.Assets = append(rel.Assets, manifest.Asset{
			Name: n,
			URL:  "https://api.github.com/repos/egoist/doko/releases/assets/" + string(rune('a'+i)),
		})
	}
	return rel
}

func testRequest(version string) InstallRequest {
	return InstallRequest{
		Ref:        manifest.Ref{Owner: "egoist", Name: "doko", Version: version},
		BinaryName: "doko",
		InstallDir: "/usr/local/bin",
	}
}

func TestBuildScriptHeuristic(t *testing.T) {
	var gotToken string
	src := &mockReleaseSource{
		getRelease: func(_ context.Context, ref manifest.Ref, token string) (*manifest.Release, error) {
			gotToken = token
			if ref.Repo() != "egoist/doko" || ref.Version != "latest" {
				t.Errorf("unexpected ref %+v", ref)
			}
			return releaseWith("v1.2.3", "doko-linux-amd64.tar.gz", "doko-darwin-arm64.tar.gz", "checksums.txt"), nil
		},
	}
	svc := NewInstallerService(testConfig(), src, testLogger)

	out, err := svc.BuildScript(context.Background(), testRequest("latest"))
	if err != nil {
		t.Fatalf("BuildScript error = %v", err)
	}

	if gotToken != "server-secret" {
		t.Errorf("release fetch should fall back to server token, got %q", gotToken)
	}
	if strings.Contains(out, "server-secret") {
		t.Fatal("server token leaked into script")
	}
	for _, want := range []string{
		"'linux-amd64')",
		"'darwin-arm64')",
		"Resolved latest to v1.2.3",
		"api='https://bina.egoist.sh'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("script missing %q", want)
		}
	}
}

func TestBuildScriptUserToken(t *testing.T) {
	var gotToken string
	src := &mockReleaseSource{
		getRelease: func(_ context.Context, _ manifest.Ref, token string) (*manifest.Release, error) {
			gotToken = token
			return releaseWith("v1", "doko-linux-amd64.tar.gz"), nil
		},
	}
	svc := NewInstallerService(testConfig(), src, testLogger)

	req := testRequest("v1")
	req.UserToken = "user-token"
	out, err := svc.BuildScript(context.Background(), req)
	if err != nil {
		t.Fatalf("BuildScript error = %v", err)
	}
	if gotToken != "user-token" {
		t.Errorf("release fetch token: got %q want user-token", gotToken)
	}
	if !strings.Contains(out, "github_token='user-token'") {
		t.Error("user token should be embedded")
	}
	if strings.Contains(out, "server-secret") {
		t.Error("server token leaked into script")
	}
	if strings.Contains(out, "Resolved") {
		t.Error("no resolved line expected when versions match")
	}
}

func TestBuildScriptExplicit(t *testing.T) {
	var fetched manifest.Asset
	src := &mockReleaseSource{
		getRelease: func(context.Context, manifest.Ref, string) (*manifest.Release, error) {
			return releaseWith("v2.0.0", "foo.zip", "doko-linux-amd64.tar.gz", "bina.json"), nil
		},
		fetchAsset: func(_ context.Context, asset manifest.Asset, token string) ([]byte, error) {
			fetched = asset
			if token != "server-secret" {
				t.Errorf("manifest fetch token: got %q", token)
			}
			return []byte(`{"platforms": {"windows-amd64": {"asset": "foo.zip", "file": "foo.exe"}}}`), nil
		},
	}
	svc := NewInstallerService(testConfig(), src, testLogger)

	out, err := svc.BuildScript(context.Background(), testRequest("v2.0.0"))
	if err != nil {
		t.Fatalf("BuildScript error = %v", err)
	}
	if fetched.Name != "bina.json" {
		t.Fatalf("fetched %q want bina.json", fetched.Name)
	}
	if !strings.Contains(out, "'windows-amd64')") || !strings.Contains(out, "bin_file='foo.exe'") {
		t.Error("explicit mapping missing from script")
	}
	if strings.Contains(out, "'linux-amd64')") {
		t.Error("explicit mode must not add heuristic platforms")
	}
}

func TestBuildScriptErrors(t *testing.T) {
	cases := []struct {
		name         string
		release      *manifest.Release
		releaseErr   error
		manifestBody string
		manifestErr  error
		check        func(t *testing.T, err error)
	}{
		{
			name:       "no release",
			releaseErr: &manifest.NoReleaseError{Repo: "egoist/doko", Version: "v9", Status: "404 Not Found"},
			check: func(t *testing.T, err error) {
				var target *manifest.NoReleaseError
				if !errors.As(err, &target) {
					t.Fatalf("got %v want NoReleaseError", err)
				}
			},
		},
		{
			name: "nil release",
			check: func(t *testing.T, err error) {
				var target *manifest.NoReleaseError
				if !errors.As(err, &target) {
					t.Fatalf("got %v want NoReleaseError", err)
				}
			},
		},
		{
			name:    "no assets",
			release: releaseWith("v1"),
			check: func(t *testing.T, err error) {
				var target *manifest.NoAssetsError
				if !errors.As(err, &target) || target.Tag != "v1" {
					t.Fatalf("got %v want NoAssetsError for v1", err)
				}
			},
		},
		{
			name:         "bad manifest",
			release:      releaseWith("v1", "bina.json"),
			manifestBody: `{"platforms": 1}`,
			check: func(t *testing.T, err error) {
				var target *manifest.ManifestParseError
				if !errors.As(err, &target) {
					t.Fatalf("got %v want ManifestParseError", err)
				}
			},
		},
		{
			name:         "manifest asset missing",
			release:      releaseWith("v1", "bina.json"),
			manifestBody: `{"platforms": {"linux-amd64": {"asset": "gone.tar.gz"}}}`,
			check: func(t *testing.T, err error) {
				var target *manifest.ManifestAssetMissingError
				if !errors.As(err, &target) {
					t.Fatalf("got %v want ManifestAssetMissingError", err)
				}
			},
		},
		{
			name:        "manifest fetch fails",
			release:     releaseWith("v1", "bina.json"),
			manifestErr: errors.New("connection reset"),
			check: func(t *testing.T, err error) {
				if err == nil || !strings.Contains(err.Error(), "fetch bina.json") {
					t.Fatalf("got %v want manifest fetch error", err)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &mockReleaseSource{
				getRelease: func(context.Context, manifest.Ref, string) (*manifest.Release, error) {
					return tc.release, tc.releaseErr
				},
				fetchAsset: func(context.Context, manifest.Asset, string) ([]byte, error) {
					return []byte(tc.manifestBody), tc.manifestErr
				},
			}
			svc := NewInstallerService(testConfig(), src, testLogger)
			_, err := svc.BuildScript(context.Background(), testRequest("v1"))
			tc.check(t, err)
		})
	}
}

func TestBuildScriptAppliesTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.RequestTimeout = 7
	src := &mockReleaseSource{
		getRelease: func(ctx context.Context, _ manifest.Ref, _ string) (*manifest.Release, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected a deadline on the provider context")
			}
			return releaseWith("v1", "doko-linux-amd64.tar.gz"), nil
		},
	}
	svc := NewInstallerService(cfg, src, testLogger)
	if _, err := svc.BuildScript(context.Background(), testRequest("v1")); err != nil {
		t.Fatalf("BuildScript error = %v", err)
	}
}
