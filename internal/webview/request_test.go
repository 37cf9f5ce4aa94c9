package webview

import (
	"errors"
	"testing"
)

func TestRequestURL(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"https://example.com/live", false},
		{"http://127.0.0.1:8080/", false},
		{"about:blank", false},
		{"file:///tmp/index.html", false},
		{"http://%zz", true},
		{"example.com/page", true},
		{"https:///path-only", true},
		{"", true},
	}
	for _, tt := range tests {
		_, err := NewRequest(tt.raw).URL()
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedURL) {
				t.Errorf("URL(%q) error = %v, want ErrMalformedURL", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("URL(%q) error = %v, want nil", tt.raw, err)
		}
	}
}

func TestNewRequestAssignsUniqueIDs(t *testing.T) {
	a, b := NewRequest("https://a.example"), NewRequest("https://a.example")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("request IDs not unique: %q, %q", a.ID, b.ID)
	}
}
