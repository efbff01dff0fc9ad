package services

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url with params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short url with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"shorts url", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed url", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"not a youtube url", "https://example.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no id", "https://www.youtube.com/", ""},
		{"garbage", "not a url at all", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractVideoID(tt.url); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestAudioExtension(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{`audio/webm; codecs="opus"`, ".webm"},
		{`audio/mp4; codecs="mp4a.40.2"`, ".m4a"},
		{"", ".m4a"},
		{"video/mp4", ".m4a"},
	}

	for _, tt := range tests {
		if got := audioExtension(tt.mime); got != tt.want {
			t.Fatalf("audioExtension(%q): expected %q, got %q", tt.mime, tt.want, got)
		}
	}
}
