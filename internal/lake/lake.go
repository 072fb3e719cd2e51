// Package lake implements the data-lake fetcher registry: named download
// operations against competition, government and civic-tech sources, each
// producing exactly one artifact file under a destination directory.
package lake

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nadlan-group/lake-cli/internal/config"
	"github.com/nadlan-group/lake-cli/internal/fetcher"
)

// ErrEndpointUnavailable marks a failure against one of the undocumented
// civic endpoints, which are checked for an exact 200 rather than the
// raise-on-4xx convention the documented sources use.
var ErrEndpointUnavailable = eris.New("endpoint not available or has changed")

// ErrNoArchive marks a Kaggle download that completed without producing an
// archive in the destination directory.
var ErrNoArchive = eris.New("no zip file found after kaggle download")

// Client performs source downloads for the data lake. It holds no state
// between invocations beyond its configuration.
type Client struct {
	cfg    config.LakeConfig
	http   fetcher.Fetcher
	kaggle *KaggleCLI
}

// New creates a Client from configuration, an HTTP fetcher and a Kaggle CLI
// wrapper.
func New(cfg config.LakeConfig, f fetcher.Fetcher, kaggle *KaggleCLI) *Client {
	return &Client{cfg: cfg, http: f, kaggle: kaggle}
}

// destDir resolves the destination directory for a fetch, defaulting to the
// configured data directory, and creates it recursively if absent.
func (c *Client) destDir(dest string) (string, error) {
	if dest == "" {
		dest = c.cfg.DataDir
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", eris.Wrapf(err, "lake: create dest dir %s", dest)
	}
	return dest, nil
}

// fetchToFile downloads url and writes the body verbatim to name under dest.
// Statuses of 400 and above fail with fetcher.ErrBadStatus.
func (c *Client) fetchToFile(ctx context.Context, url, dest, name string) (string, error) {
	dir, err := c.destDir(dest)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	n, err := c.http.DownloadToFile(ctx, url, path)
	if err != nil {
		return "", err
	}

	zap.L().Debug("artifact written",
		zap.String("url", url),
		zap.String("path", path),
		zap.Int64("bytes", n),
	)
	return path, nil
}

// fetchExact downloads url and writes the body to name under dest, failing
// with ErrEndpointUnavailable unless the status is exactly 200. Used for the
// two undocumented civic endpoints.
func (c *Client) fetchExact(ctx context.Context, url, dest, name string) (string, error) {
	dir, err := c.destDir(dest)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", eris.Wrapf(ErrEndpointUnavailable, "lake: status %d from %s", resp.StatusCode, url)
	}

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "lake: create %s", path)
	}
	defer file.Close() //nolint:errcheck

	if _, err := io.Copy(file, resp.Body); err != nil {
		return "", eris.Wrapf(err, "lake: write %s", path)
	}

	return path, nil
}
