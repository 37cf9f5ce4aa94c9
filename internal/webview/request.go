package webview

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrMalformedURL is reported through DidFailLoadWithError when a
	// request's URL cannot be loaded at all.
	ErrMalformedURL = errors.New("webview: malformed URL")

	// ErrNavigationCancelled is returned by engines when the delegate
	// vetoes a navigation that the running load depends on.
	ErrNavigationCancelled = errors.New("webview: navigation cancelled")
)

// Request is a pending page load.
type Request struct {
	ID     string
	RawURL string
	Header http.Header
}

// NewRequest creates a request for rawURL. It never fails; a malformed URL
// is reported when the request is loaded.
func NewRequest(rawURL string) *Request {
	return &Request{
		ID:     uuid.NewString(),
		RawURL: rawURL,
		Header: make(http.Header),
	}
}

// URL parses the request URL. Relative references, and http(s) URLs
// without a host, are rejected.
func (r *Request) URL() (*url.URL, error) {
	u, err := url.Parse(r.RawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: %q has no scheme", ErrMalformedURL, r.RawURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Hostname() == "" {
			return nil, fmt.Errorf("%w: %q has no host", ErrMalformedURL, r.RawURL)
		}
	}
	return u, nil
}

func (r *Request) String() string {
	return r.RawURL
}
