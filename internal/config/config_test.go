package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Tumblr.APIBase != "https://api.tumblr.com" {
		t.Errorf("APIBase = %q, want default", cfg.Tumblr.APIBase)
	}
	if cfg.Tumblr.PageDelay != time.Second {
		t.Errorf("PageDelay = %v, want 1s", cfg.Tumblr.PageDelay)
	}
	if cfg.Run.Quota != 10 {
		t.Errorf("Quota = %d, want 10", cfg.Run.Quota)
	}
	if cfg.Run.PostDelay != time.Second {
		t.Errorf("PostDelay = %v, want 1s", cfg.Run.PostDelay)
	}
	if cfg.LLM.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("BaseURL = %q, want default", cfg.LLM.BaseURL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TUMBLR_API_KEY", "test-consumer-key")
	t.Setenv("TUMBLR_BLOG", "exampleblog")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:8000/v1")
	t.Setenv("TAG_MODEL", "qwen3:8b")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Tumblr.APIKey != "test-consumer-key" {
		t.Errorf("APIKey = %q, want env value", cfg.Tumblr.APIKey)
	}
	if cfg.Tumblr.Blog != "exampleblog" {
		t.Errorf("Blog = %q, want env value", cfg.Tumblr.Blog)
	}
	if cfg.LLM.BaseURL != "http://localhost:8000/v1" {
		t.Errorf("BaseURL = %q, want env value", cfg.LLM.BaseURL)
	}
	if cfg.LLM.TagModel != "qwen3:8b" {
		t.Errorf("TagModel = %q, want env value", cfg.LLM.TagModel)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("tumblr:\n  blog: myblog\n  page_delay: 2s\nrun:\n  quota: 3\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Tumblr.Blog != "myblog" {
		t.Errorf("Blog = %q, want myblog", cfg.Tumblr.Blog)
	}
	if cfg.Tumblr.PageDelay != 2*time.Second {
		t.Errorf("PageDelay = %v, want 2s", cfg.Tumblr.PageDelay)
	}
	if cfg.Run.Quota != 3 {
		t.Errorf("Quota = %d, want 3", cfg.Run.Quota)
	}
}
