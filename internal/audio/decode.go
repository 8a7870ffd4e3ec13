// Package audio plays an optional ambient track and measures its loudness so the
// noise layer can pulse with it.
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// ErrUnsupported is returned for files that are not wav, mp3 or flac.
var ErrUnsupported = errors.New("audio: unsupported file type")

// Extensions lists the file patterns Decode understands.
var Extensions = []string{"*.wav", "*.mp3", "*.flac"}

// Decode opens path and picks a decoder by extension. Closing the streamer
// closes the file.
func Decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	s, format, err := DecodeReader(f, ext)
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return s, format, nil
}

// DecodeReader decodes r as the format named by ext (".wav", ".mp3", ".flac").
func DecodeReader(r io.ReadCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(ext) {
	case ".wav":
		return wav.Decode(r)
	case ".mp3":
		return mp3.Decode(r)
	case ".flac":
		return flac.Decode(r)
	}
	return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
}

func supported(ext string) bool {
	switch ext {
	case ".wav", ".mp3", ".flac":
		return true
	}
	return false
}
