// Package board holds the geometry and color rules of the free-form card
// board: where new cards land, how drags are bounded and which text tone
// stays readable on a card color.
package board

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	CardWidth  = 256
	CardHeight = 200

	// New cards land somewhere in the top-left square of this size.
	spawnRange = 100

	DefaultColor = "#ffffff"
)

var ErrInvalidColor = errors.New("color must be a hex value like #ffcc00")

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Area is the visible board size in pixels.
type Area struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Tone string

const (
	ToneDark  Tone = "dark"
	ToneLight Tone = "light"
)

// Source yields uniformly distributed values in [0, 1).
type Source interface {
	Float64() float64
}

func InitialPosition(src Source) Point {
	return Point{X: src.Float64() * spawnRange, Y: src.Float64() * spawnRange}
}

// Clamp moves pos by delta and keeps the whole card inside area. An area
// smaller than a card pins that axis to 0.
func Clamp(pos, delta Point, area Area) Point {
	return Point{
		X: bound(pos.X+delta.X, area.Width-CardWidth),
		Y: bound(pos.Y+delta.Y, area.Height-CardHeight),
	}
}

func bound(v, max float64) float64 {
	if max < 0 {
		max = 0
	}
	return math.Min(math.Max(v, 0), max)
}

// Luminance is the WCAG relative luminance of a #rgb or #rrggbb color.
func Luminance(hex string) (float64, error) {
	r, g, b, err := parseHex(hex)
	if err != nil {
		return 0, err
	}
	return 0.2126*linear(r) + 0.7152*linear(g) + 0.0722*linear(b), nil
}

// TextTone picks dark text for light backgrounds and light text otherwise.
// Unparseable colors get dark text, matching the default white card.
func TextTone(hex string) Tone {
	l, err := Luminance(hex)
	if err != nil || l > 0.5 {
		return ToneDark
	}
	return ToneLight
}

// NormalizeColor validates hex and returns it as lowercase #rrggbb.
func NormalizeColor(hex string) (string, error) {
	r, g, b, err := parseHex(hex)
	if err != nil {
		return "", err
	}
	return "#" + byteHex(r) + byteHex(g) + byteHex(b), nil
}

func linear(c uint8) float64 {
	v := float64(c) / 255
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func parseHex(hex string) (r, g, b uint8, err error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, ErrInvalidColor
	}
	v, perr := strconv.ParseUint(s, 16, 32)
	if perr != nil {
		return 0, 0, 0, ErrInvalidColor
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

func byteHex(v uint8) string {
	s := strconv.FormatUint(uint64(v), 16)
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
