package config

import (
	"strings"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxChunkSize != 1000 || cfg.ChunkOverlap != 200 {
		t.Errorf("chunking defaults = %d/%d", cfg.MaxChunkSize, cfg.ChunkOverlap)
	}
	if cfg.RetrievalTopK != 3 {
		t.Errorf("top-k default = %d", cfg.RetrievalTopK)
	}
	if cfg.HistoryWindow != 5 {
		t.Errorf("history window default = %d", cfg.HistoryWindow)
	}
	if cfg.GeminiModel != "gemini-2.0-flash" {
		t.Errorf("model default = %q", cfg.GeminiModel)
	}
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected missing API key to fail")
	}
}

func TestLoadConfigRejectsBadChunking(t *testing.T) {
	cases := []struct {
		name    string
		size    string
		overlap string
	}{
		{"overlap equals size", "500", "500"},
		{"overlap exceeds size", "500", "800"},
		{"negative overlap", "500", "-1"},
		{"zero size", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "test-key")
			t.Setenv("MAX_CHUNK_SIZE", tc.size)
			t.Setenv("CHUNK_OVERLAP", tc.overlap)

			_, err := LoadConfig()
			if err == nil {
				t.Fatalf("expected configuration error for size=%s overlap=%s", tc.size, tc.overlap)
			}
			if !strings.Contains(err.Error(), "CHUNK") {
				t.Fatalf("error should name the offending setting: %v", err)
			}
		})
	}
}

func TestLoadConfigPicksUpOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("RETRIEVAL_TOP_K", "7")
	t.Setenv("SESSION_STORE_PATH", "/tmp/chat/sessions.json")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RetrievalTopK != 7 {
		t.Errorf("top-k = %d, want 7", cfg.RetrievalTopK)
	}
	if cfg.SessionStorePath != "/tmp/chat/sessions.json" {
		t.Errorf("store path = %q", cfg.SessionStorePath)
	}
}
