package lake

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Kaggle slugs for the shortcut fetchers.
const (
	kaggleZillowCompetition   = "zillow-prize-1"
	kaggleCaliforniaDataset   = "camnugent/california-housing-prices"
	kaggleAmesIowaCompetition = "house-prices-advanced-regression-techniques"
)

// KaggleCLI shells out to the external kaggle tool, which carries its own
// authentication (~/.kaggle/kaggle.json).
type KaggleCLI struct {
	bin string
}

// NewKaggleCLI creates a KaggleCLI wrapper. If bin is empty, "kaggle" is used.
func NewKaggleCLI(bin string) *KaggleCLI {
	if bin == "" {
		bin = "kaggle"
	}
	return &KaggleCLI{bin: bin}
}

// DownloadDataset runs `kaggle datasets download -d <dataset> -p <dest>`.
func (k *KaggleCLI) DownloadDataset(ctx context.Context, dataset, dest string) error {
	return k.run(ctx, "datasets", "download", "-d", dataset, "-p", dest)
}

// DownloadCompetition runs `kaggle competitions download -c <competition> -p <dest>`.
func (k *KaggleCLI) DownloadCompetition(ctx context.Context, competition, dest string) error {
	return k.run(ctx, "competitions", "download", "-c", competition, "-p", dest)
}

func (k *KaggleCLI) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, k.bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return eris.Wrapf(err, "lake: kaggle %s failed: %s", args[0], stderr.String())
	}

	return nil
}

// KaggleDataset downloads a Kaggle dataset by slug (e.g. "zillow/zecon") and
// returns the path of the resulting zip archive in the destination directory.
func (c *Client) KaggleDataset(ctx context.Context, dataset string, dest string) (string, error) {
	dir, err := c.destDir(dest)
	if err != nil {
		return "", err
	}

	if err := c.kaggle.DownloadDataset(ctx, dataset, dir); err != nil {
		return "", err
	}

	return firstZip(dir)
}

// KaggleCompetition downloads the files of a Kaggle competition by slug and
// returns the path of the resulting zip archive in the destination directory.
func (c *Client) KaggleCompetition(ctx context.Context, competition string, dest string) (string, error) {
	dir, err := c.destDir(dest)
	if err != nil {
		return "", err
	}

	if err := c.kaggle.DownloadCompetition(ctx, competition, dir); err != nil {
		return "", err
	}

	return firstZip(dir)
}

// KaggleZillowPrize is a shortcut for the Kaggle Zillow Prize competition dataset.
func (c *Client) KaggleZillowPrize(ctx context.Context, dest string) (string, error) {
	return c.KaggleCompetition(ctx, kaggleZillowCompetition, dest)
}

// KaggleCaliforniaHousing is a shortcut for the Kaggle California Housing dataset.
func (c *Client) KaggleCaliforniaHousing(ctx context.Context, dest string) (string, error) {
	return c.KaggleDataset(ctx, kaggleCaliforniaDataset, dest)
}

// KaggleAmesIowa is a shortcut for the Kaggle Ames Iowa competition dataset.
func (c *Client) KaggleAmesIowa(ctx context.Context, dest string) (string, error) {
	return c.KaggleCompetition(ctx, kaggleAmesIowaCompetition, dest)
}

// firstZip returns the first zip archive in dir, or ErrNoArchive if the
// download left none behind.
func firstZip(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.zip"))
	if err != nil {
		return "", eris.Wrapf(err, "lake: glob %s", dir)
	}
	if len(matches) == 0 {
		return "", eris.Wrapf(ErrNoArchive, "lake: %s", dir)
	}
	sort.Strings(matches)

	zap.L().Debug("kaggle archive found", zap.String("path", matches[0]))
	return matches[0], nil
}
