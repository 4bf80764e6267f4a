package bills

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

const maxReceiptBytes = 10 << 20 // 10MB

// HTTPReceiptFetcher downloads receipts from the file-storage URL the form
// backend hands us.
type HTTPReceiptFetcher struct {
	HTTP *http.Client
}

func NewHTTPReceiptFetcher() *HTTPReceiptFetcher {
	return &HTTPReceiptFetcher{HTTP: &http.Client{}}
}

func (f *HTTPReceiptFetcher) Fetch(ctx context.Context, ref string) (Receipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return Receipt{}, err
	}
	resp, err := f.HTTP.Do(req)
	if err != nil {
		return Receipt{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Receipt{}, fmt.Errorf("receipt fetch returned %d", resp.StatusCode)
	}
	content, err := io.ReadAll(io.LimitReader(resp.Body, maxReceiptBytes+1))
	if err != nil {
		return Receipt{}, err
	}
	if len(content) > maxReceiptBytes {
		return Receipt{}, fmt.Errorf("receipt exceeds %d bytes", maxReceiptBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return Receipt{
		Filename:    receiptFilename(ref),
		ContentType: contentType,
		Content:     content,
	}, nil
}

func receiptFilename(ref string) string {
	u, err := url.Parse(ref)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "receipt"
	}
	return path.Base(u.Path)
}
