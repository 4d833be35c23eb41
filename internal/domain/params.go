package domain

// Params es la tupla inmutable que siembra una simulación.
// Opacity siempre es ≥ 10 cuando viene del barrido.
type Params struct {
	Height  float64
	Width   float64
	Opacity float64
}

// Area deriva el área de la nube (width × height). No se almacena.
func (p Params) Area() float64 {
	return p.Width * p.Height
}

// LineWidth devuelve el grosor de línea en puntos que usa el renderer: width/3 + 5.
func (p Params) LineWidth() float64 {
	return p.Width/3 + 5
}
