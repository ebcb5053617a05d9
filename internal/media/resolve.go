// Package media classifies audio sources and sniffs their content type.
package media

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// IsRemote reports whether source is an http(s) URL that the service can
// fetch itself. Anything else is treated as a local path.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// DetectMimeType sniffs the head of the file. Unrecognised content falls
// back to the audio type implied by the extension.
func DetectMimeType(path string) (string, error) {
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	if !detected.Is("application/octet-stream") {
		return detected.String(), nil
	}
	if byExt := mimeFromExtension(path); byExt != "" {
		return byExt, nil
	}
	return detected.String(), nil
}

// IsAudio reports whether mimeType is something a transcription service can
// decode. Video containers carry audio tracks and are accepted.
func IsAudio(mimeType string) bool {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.HasPrefix(base, "audio/") || strings.HasPrefix(base, "video/")
}

func mimeFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".ogg", ".oga", ".opus":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".flac":
		return "audio/flac"
	case ".aac":
		return "audio/aac"
	case ".webm":
		return "video/webm"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mkv":
		return "video/x-matroska"
	default:
		return ""
	}
}
