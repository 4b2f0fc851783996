package preview

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/upload"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

const (
	MaxEdge     = 320
	JPEGQuality = 80
)

// Thumbnail renders a small JPEG data URI for an image so the UI can show
// the staged file without reading it from disk. Videos get an empty handle.
func Thumbnail(name string, content []byte) (string, error) {
	if !upload.IsImage(name) {
		return "", nil
	}

	src, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}

	thumb := src
	b := src.Bounds()
	if b.Dx() > MaxEdge || b.Dy() > MaxEdge {
		thumb = imaging.Fit(src, MaxEdge, MaxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
