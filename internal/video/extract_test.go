package video_test

import (
	"testing"

	"github.com/jonesrussell/assistant/internal/video"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch url with params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short url with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"mobile watch url", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"channel url", "https://www.youtube.com/@somechannel", "", false},
		{"unrelated url", "https://example.com/watch?v=nope", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := video.ExtractVideoID(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("ExtractVideoID(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestSearchDomains(t *testing.T) {
	defaults := video.SearchDomains(nil)
	if len(defaults) != 3 {
		t.Fatalf("SearchDomains(nil) = %v, want the 3 hosting domains", defaults)
	}

	merged := video.SearchDomains([]string{"example.com"})
	if len(merged) != 4 {
		t.Fatalf("SearchDomains() = %v, want hosting domains plus caller domain", merged)
	}
	if merged[len(merged)-1] != "example.com" {
		t.Errorf("SearchDomains() last = %s, want example.com", merged[len(merged)-1])
	}
}
