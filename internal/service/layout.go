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

// Ellipsis is appended when a string must be truncated to fit its box
const Ellipsis = "…"

// defaultSafetyMargin shrinks the usable width to avoid edge clipping
const defaultSafetyMargin = 0.95

// LayoutBox describes the rectangle a text field must fit into, in absolute
// canvas pixels, together with its font sizing bounds.
type LayoutBox struct {
	X             float64 `yaml:"x"`
	Y             float64 `yaml:"y"`
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	FontSize      float64 `yaml:"fontSize"`
	MinFontSize   float64 `yaml:"minFontSize"`
	LetterSpacing float64 `yaml:"letterSpacing"`
	Padding       float64 `yaml:"padding"`
}

// FitResult is the font size and (possibly truncated) text that fits the box
type FitResult struct {
	FontSize float64
	Text     string
}

// WidthEstimator estimates the rendered pixel width of text at a font size.
// It is a pluggable strategy so the character-count heuristic can later be
// replaced with true font-metrics measurement without touching callers.
type WidthEstimator func(text string, fontSize, letterSpacing float64) float64

// CharCountWidthEstimator approximates width as if the face were monospace:
// every character contributes the font size plus its letter-spacing share.
// Exact shaping is unavailable at layout time and the templates use a roughly
// fixed-width face, so this stays within the safety margin in practice.
func CharCountWidthEstimator(text string, fontSize, letterSpacing float64) float64 {
	return float64(len([]rune(text))) * (fontSize + fontSize*letterSpacing)
}

// LayoutEngine computes a font size (and, if necessary, a truncation) so a
// string fits a rectangle without overflow. Fit is pure and deterministic.
type LayoutEngine struct {
	estimator    WidthEstimator
	safetyMargin float64
}

// NewLayoutEngine creates a layout engine with the character-count estimator
func NewLayoutEngine() *LayoutEngine {
	return &LayoutEngine{
		estimator:    CharCountWidthEstimator,
		safetyMargin: defaultSafetyMargin,
	}
}

// WithEstimator replaces the width estimation strategy
func (e *LayoutEngine) WithEstimator(estimator WidthEstimator) *LayoutEngine {
	e.estimator = estimator
	return e
}

// Fit returns a font size between the box's minimum and base size, inclusive,
// whose estimated width never exceeds the box's usable width. If even the
// minimum size cannot hold the full string, the text is truncated and a single
// ellipsis appended. Empty input returns the base size and empty text.
func (e *LayoutEngine) Fit(text string, box LayoutBox) FitResult {
	if text == "" {
		return FitResult{FontSize: box.FontSize, Text: ""}
	}

	usable := (box.Width - 2*box.Padding) * e.safetyMargin
	if usable < 0 {
		usable = 0
	}

	required := e.estimator(text, box.FontSize, box.LetterSpacing)
	if required <= usable {
		return FitResult{FontSize: box.FontSize, Text: text}
	}

	// Scale down proportionally, clamped to the minimum size
	scaled := box.FontSize * (usable / required)
	if scaled >= box.MinFontSize {
		return FitResult{FontSize: scaled, Text: text}
	}

	// Even the minimum size overflows: truncate to what fits and add an ellipsis
	perChar := box.MinFontSize + box.MinFontSize*box.LetterSpacing
	maxChars := 0
	if perChar > 0 {
		maxChars = int(usable / perChar)
	}

	runes := []rune(text)
	switch {
	case maxChars <= 0:
		// Not even the ellipsis fits
		return FitResult{FontSize: box.MinFontSize, Text: ""}
	case maxChars >= len(runes):
		return FitResult{FontSize: box.MinFontSize, Text: text}
	default:
		return FitResult{FontSize: box.MinFontSize, Text: string(runes[:maxChars-1]) + Ellipsis}
	}
}
