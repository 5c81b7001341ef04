package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizeImageURL(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "gifv rewritten to gif",
			in:   "https://64.media.tumblr.com/clip.gifv",
			want: "https://64.media.tumblr.com/clip.gif",
		},
		{
			name: "pnj rewritten to jpg",
			in:   "https://64.media.tumblr.com/photo.pnj",
			want: "https://64.media.tumblr.com/photo.jpg",
		},
		{
			name: "jpg untouched",
			in:   "https://64.media.tumblr.com/photo.jpg",
			want: "https://64.media.tumblr.com/photo.jpg",
		},
		{
			name: "png untouched",
			in:   "https://64.media.tumblr.com/photo.png",
			want: "https://64.media.tumblr.com/photo.png",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeImageURL(tc.in); got != tc.want {
				t.Errorf("normalizeImageURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestMimeTypeFor(t *testing.T) {
	testCases := []struct {
		url  string
		want string
	}{
		{"https://example.com/a.png", "image/png"},
		{"https://example.com/a.gif", "image/gif"},
		{"https://example.com/a.webp", "image/webp"},
		{"https://example.com/a.jpg", "image/jpeg"},
		{"https://example.com/a.jpeg", "image/jpeg"},
		{"https://example.com/a.pnj", "image/jpeg"},
		{"https://example.com/noext", "image/jpeg"},
	}

	for _, tc := range testCases {
		if got := mimeTypeFor(tc.url); got != tc.want {
			t.Errorf("mimeTypeFor(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestCollapseLines(t *testing.T) {
	got := collapseLines("a cat\r\nsitting on\na sofa\n")
	if got != "a cat sitting on a sofa" {
		t.Errorf("collapseLines = %q", got)
	}
}

func TestDescribeImage(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ".gif") {
			// The .gifv alias must be normalized before the fetch.
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("GIF89a fake image bytes"))
	}))
	defer media.Close()

	var gotBody string
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		reply, _ := json.Marshal("a dog\nrunning in\na field")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%s}}]}`, reply)
	}))
	defer llm.Close()

	s := NewVisionService(&VisionConfig{
		Model:   "test-vision",
		APIKey:  "test-key",
		BaseURL: llm.URL,
	}, testLogger())

	got := s.DescribeImage(context.Background(), media.URL+"/clip.gifv")
	if got != "a dog running in a field" {
		t.Errorf("description = %q, want newlines collapsed", got)
	}
	if !strings.Contains(gotBody, `"data:image/gif;base64,`) {
		t.Error("request body should embed the image as a base64 data URI")
	}
	if !strings.Contains(gotBody, `"test-vision"`) {
		t.Error("request body should name the configured model")
	}
}

func TestDescribeImageDownloadFailure(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer media.Close()

	var llmCalled bool
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		llmCalled = true
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"unused"}}]}`)
	}))
	defer llm.Close()

	s := NewVisionService(&VisionConfig{Model: "test-vision", BaseURL: llm.URL}, testLogger())

	if got := s.DescribeImage(context.Background(), media.URL+"/gone.jpg"); got != "" {
		t.Errorf("description = %q, want empty on download failure", got)
	}
	if llmCalled {
		t.Error("model must not be called when the image payload is empty")
	}
}

func TestDescribeImageAPIFailure(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake image bytes"))
	}))
	defer media.Close()

	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
	}))
	defer llm.Close()

	s := NewVisionService(&VisionConfig{Model: "test-vision", BaseURL: llm.URL}, testLogger())

	if got := s.DescribeImage(context.Background(), media.URL+"/a.jpg"); got != "" {
		t.Errorf("description = %q, want empty on API failure", got)
	}
}
