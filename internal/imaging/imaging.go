// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging downsizes uploaded raster images before they are stored.
// Portfolio images end up either in object storage or inline in the
// document as data URIs, and both favour small files.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// DefaultMaxWidth is the widest image kept as uploaded.
	DefaultMaxWidth = 1600

	// jpegQuality is the quality used when re-encoding JPEG output.
	jpegQuality = 82

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000
)

// Resizable reports whether contentType is a raster format Fit can shrink.
// GIF is excluded to preserve animation; SVG is vector.
func Resizable(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

// Fit scales an image down to maxWidth, preserving the aspect ratio. PNG
// stays PNG so transparency survives; JPEG and WebP become JPEG. Images that
// are already narrow enough, or not Resizable, are returned unchanged with
// resized=false.
func Fit(data []byte, contentType string, maxWidth int) (out []byte, outType string, resized bool, err error) {
	if !Resizable(contentType) || maxWidth <= 0 {
		return data, contentType, false, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", false, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, "", false, fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}
	if cfg.Width <= maxWidth {
		return data, contentType, false, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", false, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	newHeight := max(bounds.Dy()*maxWidth/bounds.Dx(), 1)
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if contentType == "image/png" {
		if err := png.Encode(&buf, dst); err != nil {
			return nil, "", false, fmt.Errorf("encode png: %w", err)
		}
		return buf.Bytes(), "image/png", true, nil
	}
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", false, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), "image/jpeg", true, nil
}
