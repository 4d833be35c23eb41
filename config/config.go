package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de un lote.
type Config struct {
	Sweep      SweepConfig      `yaml:"sweep"`
	Simulation SimulationConfig `yaml:"simulation"`
	Fit        FitConfig        `yaml:"fit"`
	Render     RenderConfig     `yaml:"render"`
	Batch      BatchConfig      `yaml:"batch"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// SweepConfig define los conjuntos discretos del barrido.
type SweepConfig struct {
	Heights      []float64 `yaml:"heights"`
	Widths       []float64 `yaml:"widths"`
	OpacitySteps int       `yaml:"opacity_steps"` // opacidad = índice*10 + 10
}

// SimulationConfig contiene las constantes de integración.
type SimulationConfig struct {
	Model    string  `yaml:"model"` // branching | drift
	TimeStep float64 `yaml:"time_step"`
	MaxTime  float64 `yaml:"max_time"`
	BoundX   float64 `yaml:"bound_x"`
	BoundY   float64 `yaml:"bound_y"`
}

// FitConfig controla la evaluación de las curvas ajustadas.
type FitConfig struct {
	SmoothPoints int `yaml:"smooth_points"`
}

// RenderConfig controla el gráfico de salida.
type RenderConfig struct {
	Output   string  `yaml:"output"` // ruta .png o .svg; vacío = no dibujar
	Format   string  `yaml:"format"` // formato cuando la ruta no tiene extensión
	WidthIn  float64 `yaml:"width_in"`
	HeightIn float64 `yaml:"height_in"`
	Title    string  `yaml:"title"`
}

// BatchConfig controla la ejecución del lote.
type BatchConfig struct {
	Workers int `yaml:"workers"` // 0 = runtime.NumCPU()
}

// StorageConfig controla dónde se archivan los lotes.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o vacío para no archivar
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level      string `yaml:"level"`  // debug | info | warn | error
	Format     string `yaml:"format"` // text | json
	File       string `yaml:"file"`   // si no está vacío, copia JSON rotada con lumberjack
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default devuelve la configuración de referencia sin leer archivos.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Con path vacío parte de Default(). Los valores del entorno sobreescriben los del YAML.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Validate rechaza combinaciones que harían divergir o vaciar el lote.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Sweep.Heights) == 0 {
		errs = append(errs, errors.New("sweep.heights is empty"))
	}
	if len(c.Sweep.Widths) == 0 {
		errs = append(errs, errors.New("sweep.widths is empty"))
	}
	if c.Simulation.TimeStep <= 0 {
		errs = append(errs, fmt.Errorf("simulation.time_step must be > 0, got %g", c.Simulation.TimeStep))
	}
	if c.Simulation.MaxTime <= 0 {
		errs = append(errs, fmt.Errorf("simulation.max_time must be > 0, got %g", c.Simulation.MaxTime))
	}
	switch c.Simulation.Model {
	case "branching", "drift":
	default:
		errs = append(errs, fmt.Errorf("simulation.model %q: want branching or drift", c.Simulation.Model))
	}
	if c.Fit.SmoothPoints < 2 {
		errs = append(errs, fmt.Errorf("fit.smooth_points must be >= 2, got %d", c.Fit.SmoothPoints))
	}
	return errors.Join(errs...)
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("CLOUDPATHS_OUTPUT"); v != "" {
		cfg.Render.Output = v
	}
	if v := os.Getenv("CLOUDPATHS_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("CLOUDPATHS_MODEL"); v != "" {
		cfg.Simulation.Model = v
	}
	if v := os.Getenv("CLOUDPATHS_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CLOUDPATHS_WORKERS=%q: %w", v, err)
		}
		cfg.Batch.Workers = n
	}
	return nil
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if len(cfg.Sweep.Heights) == 0 {
		cfg.Sweep.Heights = []float64{20, 30, 40, 50}
	}
	if len(cfg.Sweep.Widths) == 0 {
		cfg.Sweep.Widths = []float64{20, 30, 40, 50, 60, 70}
	}
	if cfg.Sweep.OpacitySteps <= 0 {
		cfg.Sweep.OpacitySteps = 5
	}
	if cfg.Simulation.Model == "" {
		cfg.Simulation.Model = "branching"
	}
	if cfg.Simulation.TimeStep == 0 {
		cfg.Simulation.TimeStep = 0.2
	}
	if cfg.Simulation.MaxTime == 0 {
		cfg.Simulation.MaxTime = 3.0
	}
	if cfg.Simulation.BoundX <= 0 {
		cfg.Simulation.BoundX = 1000
	}
	if cfg.Simulation.BoundY <= 0 {
		cfg.Simulation.BoundY = 600
	}
	if cfg.Fit.SmoothPoints == 0 {
		cfg.Fit.SmoothPoints = 200
	}
	if cfg.Render.Format == "" {
		cfg.Render.Format = "png"
	}
	if cfg.Render.WidthIn <= 0 {
		cfg.Render.WidthIn = 14
	}
	if cfg.Render.HeightIn <= 0 {
		cfg.Render.HeightIn = 8
	}
	if cfg.Batch.Workers < 0 {
		cfg.Batch.Workers = 0
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 10
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = 3
	}
	if cfg.Log.MaxAgeDays <= 0 {
		cfg.Log.MaxAgeDays = 28
	}
}
