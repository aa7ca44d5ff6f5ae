package storage

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// ShrinkImage downscales images wider than maxWidth, keeping the aspect ratio
// and the original format. Non-images, small images and maxWidth <= 0 are
// returned unchanged with resized=false.
func ShrinkImage(data []byte, filename string, maxWidth int) (out []byte, resized bool, err error) {
	ext := filepath.Ext(filename)
	if maxWidth <= 0 || !isImageExt(ext) {
		return data, false, nil
	}
	format, err := imaging.FormatFromFilename(filename)
	if err != nil {
		return data, false, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, false, fmt.Errorf("decode image %s: %w", filename, err)
	}
	if img.Bounds().Dx() <= maxWidth {
		return data, false, nil
	}

	img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(85)); err != nil {
		return nil, false, fmt.Errorf("encode image %s: %w", filename, err)
	}
	return buf.Bytes(), true, nil
}
