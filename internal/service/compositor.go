/*
 *  Copyright (c) 2025, WSO2 LLC. (http://www.wso2.org) All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 */

package service

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"credential-api/internal/constants"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Image fit modes for photo layers
const (
	FitCover   = "cover"   // crop to fill the target rectangle
	FitContain = "contain" // preserve aspect ratio, transparent padding
)

// ImageLayer paints decoded image bytes into a fixed rectangle on the canvas
type ImageLayer struct {
	Data      []byte
	X, Y      int
	Width     int
	Height    int
	Fit       string
	Grayscale bool
}

// TextLayer paints one text field, sized by the layout engine, into its box
type TextLayer struct {
	Text  string
	Box   LayoutBox
	Color string
	Bold  bool
}

// Layer is one element composited onto the template at a fixed rectangle
type Layer interface {
	isLayer()
}

func (ImageLayer) isLayer() {}
func (TextLayer) isLayer()  {}

// Compositor rasterizes a base template plus ordered image/text layers into
// one PNG at the template's fixed canvas size. Output is deterministic for
// identical inputs; any undecodable image layer fails the whole composition.
type Compositor struct {
	layout  *LayoutEngine
	regular *truetype.Font
	bold    *truetype.Font
}

// NewCompositor creates a compositor using the bundled Go font faces
func NewCompositor(layout *LayoutEngine) (*Compositor, error) {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bold font: %w", err)
	}
	return &Compositor{layout: layout, regular: regular, bold: bold}, nil
}

// Compose flattens the template and every layer, in order, into one PNG.
// Later layers paint over earlier ones at their exact rectangle; layers never
// reflow based on neighbors.
func (c *Compositor) Compose(template []byte, layers []Layer) ([]byte, error) {
	base, err := imaging.Decode(bytes.NewReader(template))
	if err != nil {
		return nil, fmt.Errorf("%w: template decode: %v", constants.ErrCompositionFailed, err)
	}

	dc := gg.NewContextForImage(base)

	for i, layer := range layers {
		switch l := layer.(type) {
		case ImageLayer:
			if err := c.drawImageLayer(dc, l); err != nil {
				return nil, fmt.Errorf("%w: layer %d: %v", constants.ErrCompositionFailed, i, err)
			}
		case TextLayer:
			c.drawTextLayer(dc, l)
		default:
			return nil, fmt.Errorf("%w: layer %d has unknown type %T", constants.ErrCompositionFailed, i, layer)
		}
	}

	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := encoder.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", constants.ErrCompositionFailed, err)
	}
	return buf.Bytes(), nil
}

func (c *Compositor) drawImageLayer(dc *gg.Context, layer ImageLayer) error {
	img, err := imaging.Decode(bytes.NewReader(layer.Data))
	if err != nil {
		// No partial output: a half-composited credential must never reach storage
		return fmt.Errorf("image decode: %w", err)
	}

	if layer.Grayscale {
		img = imaging.Grayscale(img)
	}

	switch layer.Fit {
	case FitContain:
		fitted := imaging.Fit(img, layer.Width, layer.Height, imaging.Lanczos)
		// Center inside the box, padding stays transparent
		offsetX := layer.X + (layer.Width-fitted.Bounds().Dx())/2
		offsetY := layer.Y + (layer.Height-fitted.Bounds().Dy())/2
		dc.DrawImage(fitted, offsetX, offsetY)
	case FitCover, "":
		filled := imaging.Fill(img, layer.Width, layer.Height, imaging.Center, imaging.Lanczos)
		dc.DrawImage(filled, layer.X, layer.Y)
	default:
		return fmt.Errorf("unknown fit mode %q", layer.Fit)
	}
	return nil
}

// drawTextLayer asks the layout engine for the font size and content, then
// renders the field as vectors and flattens it in the same raster pass.
// Raster compositing cannot itself shape text, hence the two-step.
func (c *Compositor) drawTextLayer(dc *gg.Context, layer TextLayer) {
	fit := c.layout.Fit(layer.Text, layer.Box)
	if fit.Text == "" {
		return
	}

	fnt := c.regular
	if layer.Bold {
		fnt = c.bold
	}
	face := truetype.NewFace(fnt, &truetype.Options{Size: fit.FontSize})
	dc.SetFontFace(face)

	color := layer.Color
	if color == "" {
		color = "#000000"
	}
	dc.SetHexColor(color)

	centerX := layer.Box.X + layer.Box.Width/2
	centerY := layer.Box.Y + layer.Box.Height/2
	dc.DrawStringAnchored(fit.Text, centerX, centerY, 0.5, 0.5)
}

// decodeImageSize reports the pixel dimensions of encoded image bytes
func decodeImageSize(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
