// Package color validates user-supplied color tokens and derives a readable
// foreground for text drawn on top of them.
//
// Tokens are CSS-style hex colors, "#rgb" or "#rrggbb", case-insensitive.
// Contrast follows the WCAG relative-luminance formula: backgrounds brighter
// than 0.5 get black text, everything else white text.
package color

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var hexPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{3}){1,2}$`)

// Color is a validated color in lowercase "#rrggbb" form.
type Color string

// Contrast is the foreground color that reads best on a given background.
type Contrast string

// Foreground colors returned by ContrastOf.
const (
	Dark  Contrast = "#000000"
	Light Contrast = "#ffffff"
)

const luminanceThreshold = 0.5

// Parse validates a color token and normalises it to lowercase six-digit form.
// Anything other than exactly "#rgb" or "#rrggbb", including surrounding
// whitespace, is rejected.
func Parse(token string) (Color, bool) {
	if !hexPattern.MatchString(token) {
		return "", false
	}
	hex := strings.ToLower(token[1:])
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return Color("#" + hex), true
}

// MustParse is like Parse but panics on invalid input. Use it for constants.
func MustParse(token string) Color {
	c, ok := Parse(token)
	if !ok {
		panic(fmt.Sprintf("color: invalid token %q", token))
	}
	return c
}

// Valid reports whether token is an acceptable color.
func Valid(token string) bool {
	_, ok := Parse(token)
	return ok
}

// RGB returns the 8-bit channels of c.
func (c Color) RGB() (r, g, b uint8) {
	v, err := strconv.ParseUint(string(c)[1:], 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// String returns the normalised token.
func (c Color) String() string { return string(c) }

// Luminance returns the WCAG relative luminance of c in [0, 1].
func Luminance(c Color) float64 {
	r, g, b := c.RGB()
	return 0.2126*linear(r) + 0.7152*linear(g) + 0.0722*linear(b)
}

func linear(v uint8) float64 {
	s := float64(v) / 255
	if s <= 0.03928 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// ContrastOf returns the foreground that stays readable on background c.
func ContrastOf(c Color) Contrast {
	if Luminance(c) > luminanceThreshold {
		return Dark
	}
	return Light
}
