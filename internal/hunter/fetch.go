package hunter

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

// Player pages reject requests that do not look like an iframe load from
// a desktop Chrome.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	"Accept-Encoding":           "gzip, deflate, br",
	"Accept-Language":           "en-GB,en-US;q=0.9,en;q=0.8",
	"Sec-Ch-Ua":                 `"Not/A)Brand";v="99", "Google Chrome";v="115", "Chromium";v="115"`,
	"Sec-Ch-Ua-Mobile":          "?0",
	"Sec-Ch-Ua-Platform":        `"macOS"`,
	"Sec-Fetch-Dest":            "iframe",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "same-origin",
	"Upgrade-Insecure-Requests": "1",
}

// HTTPFetcher downloads player pages with fasthttp.
type HTTPFetcher struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &fasthttp.Client{
			Name:                     browserHeaders["User-Agent"],
			NoDefaultUserAgentHeader: true,
		},
		timeout: timeout,
	}
}

// Fetch GETs target with browser headers and the given cookies and returns
// the decoded body.
func (f *HTTPFetcher) Fetch(ctx context.Context, target, referer string, cookies []*http.Cookie) ([]byte, error) {
	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return nil, ctx.Err()
		}
		if left < timeout {
			timeout = left
		}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodGet)
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Referer", referer)
	for _, c := range cookies {
		req.Header.SetCookie(c.Name, c.Value)
	}

	if err := f.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("hunter: fetch %s: %w", target, err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, fmt.Errorf("hunter: fetch %s: status %d", target, code)
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		return nil, fmt.Errorf("hunter: decode %s: %w", target, err)
	}
	// body belongs to resp, which goes back to the pool.
	return append([]byte(nil), body...), nil
}
