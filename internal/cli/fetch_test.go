package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestImageFetcher(t *testing.T) {
	body := []byte("\x89PNG fake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/img/ok.png":
			w.Write(body)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		baseURL string
		url     string
		wantErr string
	}{
		{"absolute", "", srv.URL + "/img/ok.png", ""},
		{"relative with base", srv.URL, "/img/ok.png", ""},
		{"relative without base", "", "/img/ok.png", "--base-url"},
		{"not found", "", srv.URL + "/img/missing.png", "status 404"},
		{"bad scheme", "", "ftp://example.com/a.png", "unsupported image url scheme"},
		{"file scheme", "", "file:///etc/passwd", "unsupported image url scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImageFetcher(nil, tt.baseURL)
			data, err := f.Fetch(context.Background(), tt.url)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if !bytes.Equal(data, body) {
				t.Errorf("data = %q, want %q", data, body)
			}
		})
	}
}

func TestImageFetcherRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, maxImageBytes+1))
	}))
	defer srv.Close()

	f := newImageFetcher(nil, "")
	if _, err := f.Fetch(context.Background(), srv.URL+"/big.png"); err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("err = %v, want size error", err)
	}
}

func TestImageFetcherHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := newImageFetcher(nil, "")
	if _, err := f.Fetch(ctx, srv.URL+"/a.png"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
