package render

// plot.go: gráfico de trayectorias ajustadas con gonum/plot.
//
// Una línea por trayectoria con curva: grosor = width/3 + 5 pt, color según el
// score normalizado. Los ejes se fijan al área de juego después de añadir las
// líneas, porque plot.Add expande los rangos con los datos.

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alejandrodnm/cloudpaths/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	FormatPNG = "png"
	FormatSVG = "svg"

	defaultTitle = "Polynomial-fitted cloud paths (colour = early speed, width = shape width)"
)

// ErrUnsupportedFormat se devuelve para formatos distintos de png y svg.
var ErrUnsupportedFormat = errors.New("unsupported chart format")

// Options controla el lienzo del gráfico.
type Options struct {
	Format   string  // png | svg, para Render
	WidthIn  float64 // pulgadas
	HeightIn float64
	Title    string
	XMax     float64
	YMax     float64
	Alpha    float64
}

// DefaultOptions devuelve un lienzo 14×8 in sobre el área 1000×600.
func DefaultOptions() Options {
	return Options{
		Format:   FormatPNG,
		WidthIn:  14,
		HeightIn: 8,
		Title:    defaultTitle,
		XMax:     1000,
		YMax:     600,
		Alpha:    0.8,
	}
}

// Plot implementa ports.Renderer.
type Plot struct {
	opts Options
}

// NewPlot crea un renderer. Los campos vacíos toman el valor por defecto.
func NewPlot(opts Options) *Plot {
	def := DefaultOptions()
	if opts.Format == "" {
		opts.Format = def.Format
	}
	if opts.WidthIn <= 0 {
		opts.WidthIn = def.WidthIn
	}
	if opts.HeightIn <= 0 {
		opts.HeightIn = def.HeightIn
	}
	if opts.Title == "" {
		opts.Title = def.Title
	}
	if opts.XMax <= 0 {
		opts.XMax = def.XMax
	}
	if opts.YMax <= 0 {
		opts.YMax = def.YMax
	}
	if opts.Alpha <= 0 {
		opts.Alpha = def.Alpha
	}
	return &Plot{opts: opts}
}

// Render escribe el gráfico en w con el formato de Options.
func (r *Plot) Render(ctx context.Context, paths []domain.Path, w io.Writer) error {
	format, err := checkFormat(r.opts.Format)
	if err != nil {
		return fmt.Errorf("render.Render: %w", err)
	}
	return r.write(ctx, paths, format, w)
}

// RenderFile escribe el gráfico en path; el formato sale de la extensión.
func (r *Plot) RenderFile(ctx context.Context, paths []domain.Path, path string) (err error) {
	format := r.opts.Format
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		format = strings.ToLower(ext)
	}
	if format, err = checkFormat(format); err != nil {
		return fmt.Errorf("render.RenderFile: %q: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("render.RenderFile: mkdir %q: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render.RenderFile: create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("render.RenderFile: close %q: %w", path, cerr)
		}
	}()

	return r.write(ctx, paths, format, f)
}

func (r *Plot) write(ctx context.Context, paths []domain.Path, format string, w io.Writer) error {
	p, lines, err := r.build(ctx, paths)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(vg.Length(r.opts.WidthIn)*vg.Inch, vg.Length(r.opts.HeightIn)*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("render.write: canvas %s: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("render.write: %w", err)
	}

	slog.Debug("chart rendered", "format", format, "lines", lines, "paths", len(paths))
	return nil
}

// build arma el plot y devuelve cuántas líneas se dibujaron.
func (r *Plot) build(ctx context.Context, paths []domain.Path) (*plot.Plot, int, error) {
	p := plot.New()
	p.Title.Text = r.opts.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	dashes := []vg.Length{vg.Points(3), vg.Points(3)}
	grid := plotter.NewGrid()
	grid.Vertical.Width = vg.Points(0.3)
	grid.Vertical.Dashes = dashes
	grid.Horizontal.Width = vg.Points(0.3)
	grid.Horizontal.Dashes = dashes
	p.Add(grid)

	lines := 0
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, 0, fmt.Errorf("render.build: %w", err)
		}
		if path.Curve == nil {
			continue
		}

		pts := make(plotter.XYs, len(path.Curve.XSmooth))
		for j := range pts {
			pts[j].X = path.Curve.XSmooth[j]
			pts[j].Y = path.Curve.YSmooth[j]
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			// curvas con valores no finitos: se omiten, el resto del gráfico sigue siendo válido
			slog.Warn("skipping path", "index", i, "params", path.Trajectory.Params, "err", err)
			continue
		}
		line.LineStyle.Width = vg.Points(path.Trajectory.Params.LineWidth())
		line.LineStyle.Color = ScoreColor(path.Score, r.opts.Alpha)
		p.Add(line)
		lines++
	}

	p.X.Min, p.X.Max = 0, r.opts.XMax
	p.Y.Min, p.Y.Max = 0, r.opts.YMax

	return p, lines, nil
}

func checkFormat(format string) (string, error) {
	switch f := strings.ToLower(format); f {
	case FormatPNG, FormatSVG:
		return f, nil
	default:
		return "", fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
}
