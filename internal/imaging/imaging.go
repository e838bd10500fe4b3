// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging produces downscaled variants of uploaded images. Partner
// logos get a narrow "badge" variant sized for the floated block that sits
// beside a story's first paragraph.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Variant describes a single derived image size.
type Variant struct {
	Name  string // e.g. "badge"
	Width int    // target width in pixels
}

// Badge is the variant served when content asks for a logo at most 200px wide.
var Badge = Variant{Name: "badge", Width: 200}

// ProcessedImage holds one generated variant ready for upload.
type ProcessedImage struct {
	Name        string
	Width       int
	Height      int
	Data        []byte
	ContentType string
}

// Dimensions reports the pixel size of an encoded image without decoding
// the full bitmap.
func Dimensions(data []byte) (width, height int, err error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("imaging: probe failed: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Generate scales the source image to the variant width, keeping its aspect
// ratio, and encodes it as PNG so logo transparency survives. Images already
// narrower than the variant are re-encoded at their own size, never upscaled.
func Generate(original []byte, v Variant) (*ProcessedImage, error) {
	src, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	b := src.Bounds()
	w, h := FitWidth(b.Dx(), b.Dy(), v.Width)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("imaging: empty image")
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("imaging: encode %s: %w", v.Name, err)
	}

	return &ProcessedImage{
		Name:        v.Name,
		Width:       w,
		Height:      h,
		Data:        buf.Bytes(),
		ContentType: "image/png",
	}, nil
}

// FitWidth scales width x height down to maxWidth, preserving the aspect
// ratio. A maxWidth of 0 or one wider than the source leaves it unchanged.
func FitWidth(width, height, maxWidth int) (int, int) {
	if maxWidth <= 0 || width <= maxWidth {
		return width, height
	}
	h := (height*maxWidth + width/2) / width
	if h < 1 {
		h = 1
	}
	return maxWidth, h
}
