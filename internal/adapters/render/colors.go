package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Escala rojo → amarillo → verde (extremos y centro de RdYlGn).
var (
	scaleLow  = mustHex("#d73027")
	scaleMid  = mustHex("#ffffbf")
	scaleHigh = mustHex("#1a9850")
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ScoreColor mapea un score normalizado (0 = lento, 1 = rápido) a un color
// interpolado en Lab. Fuera de [0, 1] se satura; NaN cuenta como 0.
func ScoreColor(score, alpha float64) color.NRGBA {
	s := score
	if math.IsNaN(s) {
		s = 0
	}
	s = math.Max(0, math.Min(1, s))

	var c colorful.Color
	if s < 0.5 {
		c = scaleLow.BlendLab(scaleMid, s*2)
	} else {
		c = scaleMid.BlendLab(scaleHigh, (s-0.5)*2)
	}

	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(math.Max(0, math.Min(1, alpha)) * 255))}
}
