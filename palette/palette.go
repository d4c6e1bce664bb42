// Package palette lists the background color themes both surfaces offer.
package palette

import (
	"fmt"
	"image/color"
	"strings"
)

// Swatch is one selectable theme. Token is what the dispatcher carries
// and what is saved in preferences.
type Swatch struct {
	Label string
	Token string
	Color color.NRGBA
}

// Default is the window background before any theme is chosen.
var Default = Swatch{Label: "Default", Token: "default", Color: rgb(0xf0, 0xf4, 0xf7)}

// Swatches in menu order.
var Swatches = []Swatch{
	{"White", "white", rgb(0xff, 0xff, 0xff)},
	{"Black", "black", rgb(0x00, 0x00, 0x00)},
	{"Blue", "blue", rgb(0x00, 0x00, 0xff)},
	{"Navy Blue", "navyblue", rgb(0x00, 0x00, 0x80)},
	{"Orange", "orange", rgb(0xff, 0xa5, 0x00)},
	{"Pink", "pink", rgb(0xff, 0xc0, 0xcb)},
	{"Purple", "purple", rgb(0xa0, 0x20, 0xf0)},
	{"Sky Blue", "sky blue", rgb(0x87, 0xce, 0xeb)},
	{"Light Green", "light green", rgb(0x90, 0xee, 0x90)},
	{"Beige", "beige", rgb(0xf5, 0xf5, 0xdc)},
	{"Baby Pink", "#F4C2C2", rgb(0xf4, 0xc2, 0xc2)},
	{"Fuchsia", "fuchsia", rgb(0xff, 0x00, 0xff)},
	{"Aquamarine", "Aquamarine", rgb(0x7f, 0xff, 0xd4)},
}

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// Lookup finds a swatch by token, ignoring case and spaces.
func Lookup(token string) (Swatch, bool) {
	key := normalize(token)
	if key == normalize(Default.Token) {
		return Default, true
	}
	for _, s := range Swatches {
		if normalize(s.Token) == key {
			return s, true
		}
	}
	return Swatch{}, false
}

// Next returns the swatch after token, wrapping around. Unknown tokens
// start from the first swatch.
func Next(token string) Swatch {
	key := normalize(token)
	for i, s := range Swatches {
		if normalize(s.Token) == key {
			return Swatches[(i+1)%len(Swatches)]
		}
	}
	return Swatches[0]
}

// Dark reports whether light text reads better on the swatch.
func (s Swatch) Dark() bool {
	lum := 0.299*float64(s.Color.R) + 0.587*float64(s.Color.G) + 0.114*float64(s.Color.B)
	return lum < 128
}

// Hex returns the color as #rrggbb.
func (s Swatch) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", s.Color.R, s.Color.G, s.Color.B)
}

func normalize(token string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(token), " ", ""))
}
