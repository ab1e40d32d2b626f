// Package fetcher downloads audit images from remote URLs before the
// pipeline runs. Downloads are bounded by a per-request timeout so a slow
// origin cannot eat into the job's processing window.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrImageFetch is returned when the remote image cannot be downloaded.
var ErrImageFetch = errors.New("image fetch failed")

const defaultTimeout = 30 * time.Second

// Fetcher downloads images over HTTP.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with the given per-request timeout. A zero timeout
// falls back to 30 seconds.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads the image at url and returns its raw bytes. Any transport
// failure or non-2xx status is reported as ErrImageFetch with the underlying
// cause in the message.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: Erro ao baixar imagem: %v", ErrImageFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: Erro ao baixar imagem: %v", ErrImageFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: Erro ao baixar imagem: status %d", ErrImageFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: Erro ao baixar imagem: %v", ErrImageFetch, err)
	}
	return body, nil
}
