package models

import (
	"fmt"
	"strings"
)

type SourceType string

const (
	SourceText    SourceType = "text"
	SourceFile    SourceType = "file"
	SourceImage   SourceType = "image"
	SourceAudio   SourceType = "audio"
	SourceVideo   SourceType = "video"
	SourceYouTube SourceType = "youtube"
	SourceWeb     SourceType = "web"
)

func ParseSourceType(s string) (SourceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return SourceText, nil
	case "file":
		return SourceFile, nil
	case "image":
		return SourceImage, nil
	case "audio":
		return SourceAudio, nil
	case "video":
		return SourceVideo, nil
	case "youtube":
		return SourceYouTube, nil
	case "web", "web link", "weblink", "url":
		return SourceWeb, nil
	default:
		return "", fmt.Errorf("unknown source type: %q", s)
	}
}

// ImageText is the per-image result of a batch OCR run. Exactly one of Text
// and Err is meaningful; a failed image never aborts the rest of the batch.
type ImageText struct {
	Path string
	Text string
	Err  error
}
