package fetcher

import (
	"context"
	"io"
	"net/http"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Get issues a GET request and returns the raw response. The caller owns
	// the body and decides what to make of the status code.
	Get(ctx context.Context, url string) (*http.Response, error)

	// Download fetches the URL and returns the response body. Statuses of
	// 400 and above fail with ErrBadStatus.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}
