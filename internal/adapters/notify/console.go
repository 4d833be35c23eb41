package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/cloudpaths/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el lote en el modo configurado.
func (c *Console) Notify(_ context.Context, paths []domain.Path) error {
	if len(paths) == 0 {
		fmt.Fprintf(c.out, "[%s] no paths simulated\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printFull(paths)
	} else {
		c.printCompact(paths)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(paths []domain.Path) {
	now := time.Now().Format("15:04:05")
	fitted := countFitted(paths)
	lo, hi := rawRange(paths)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d paths → fitted:%d raw:[%.2f … %.2f] rules %s",
		now, len(paths), fitted, lo, hi, ruleHistogram(paths))

	best := bestPath(paths)
	p := best.Trajectory.Params
	fmt.Fprintf(&sb, " | fastest h%.0f w%.0f o%.0f raw%.2f", p.Height, p.Width, p.Opacity, best.RawScore)

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime una fila por trayectoria.
func (c *Console) printFull(paths []domain.Path) {
	now := time.Now().Format("15:04:05")
	lo, hi := rawRange(paths)
	fmt.Fprintf(c.out, "\n[%s] %d paths — fitted:%d raw:[%.2f … %.2f]\n",
		now, len(paths), countFitted(paths), lo, hi)

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "H", "W", "O", "Ticks", "Final vx", "Raw", "Score", "Deg", "Rules")

	for i, path := range paths {
		tr := path.Trajectory
		deg := "-"
		if path.Curve != nil {
			deg = fmt.Sprintf("%d", path.Curve.Degree)
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.0f", tr.Params.Height),
			fmt.Sprintf("%.0f", tr.Params.Width),
			fmt.Sprintf("%.0f", tr.Params.Opacity),
			fmt.Sprintf("%d", tr.Ticks),
			fmt.Sprintf("%.2f", tr.FinalVX),
			fmt.Sprintf("%.2f", path.RawScore),
			fmt.Sprintf("%.3f", path.Score),
			deg,
			compactRules(tr.Rules, 16),
		)
	}

	table.Render()

	fmt.Fprintln(c.out, "  Raw = Σ(vx_final + vy[i]) / 10 sobre los 5 primeros vy | Score = min-max del lote")
	fmt.Fprintf(c.out, "  Rules: %s\n", ruleLegend())
	fmt.Fprintf(c.out, "  Totals: %s\n\n", ruleHistogram(paths))
}

// PrintRuns imprime el listado de lotes archivados.
func (c *Console) PrintRuns(runs []domain.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(c.out, "no archived runs")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Created", "Model", "Paths", "Fitted", "Best raw")
	for _, r := range runs {
		table.Append(
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			string(r.Model),
			fmt.Sprintf("%d", r.Paths),
			fmt.Sprintf("%d", r.Fitted),
			fmt.Sprintf("%.2f", r.BestRaw),
		)
	}
	table.Render()
}

// --- helpers ---

func countFitted(paths []domain.Path) int {
	n := 0
	for _, p := range paths {
		if p.Fitted() {
			n++
		}
	}
	return n
}

func rawRange(paths []domain.Path) (lo, hi float64) {
	for i, p := range paths {
		if i == 0 || p.RawScore < lo {
			lo = p.RawScore
		}
		if i == 0 || p.RawScore > hi {
			hi = p.RawScore
		}
	}
	return
}

func bestPath(paths []domain.Path) domain.Path {
	best := paths[0]
	for _, p := range paths[1:] {
		if p.RawScore > best.RawScore {
			best = p
		}
	}
	return best
}

// ruleHistogram formatea cuántas veces disparó cada regla en todo el lote.
func ruleHistogram(paths []domain.Path) string {
	counts := make(map[domain.Rule]int)
	for _, p := range paths {
		for r, n := range p.Trajectory.RuleCounts() {
			counts[r] += n
		}
	}

	parts := make([]string, 0, len(domain.AllRules()))
	for _, r := range domain.AllRules() {
		parts = append(parts, fmt.Sprintf("%s:%d", r, counts[r]))
	}
	return strings.Join(parts, " ")
}

// ruleLegend lista cada regla con su nombre: "A approach-left-low, B ...".
func ruleLegend() string {
	rules := domain.AllRules()
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = r.String() + " " + r.Name()
	}
	return strings.Join(parts, ", ")
}

// compactRules muestra la secuencia de reglas, truncada con "..." si es larga.
func compactRules(rules []domain.Rule, maxLen int) string {
	if len(rules) == 0 {
		return "-"
	}
	var sb strings.Builder
	for _, r := range rules {
		sb.WriteString(r.String())
	}
	s := sb.String()
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
