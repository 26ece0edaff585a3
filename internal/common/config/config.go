package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string `yaml:"port"`
	Environment  string `yaml:"env"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`

	Editor EditorConfig `yaml:"editor"`
}

// EditorConfig содержит настройки сервиса редактора холста.
type EditorConfig struct {
	URL            string        `yaml:"url"`
	DBPath         string        `yaml:"db_path"`
	MigrationsPath string        `yaml:"migrations_path"`
	ExportDir      string        `yaml:"export_dir"`
	CatalogPath    string        `yaml:"catalog_path"`
	GridSize       int           `yaml:"grid_size"`
	CanvasWidth    int           `yaml:"canvas_width"`
	CanvasHeight   int           `yaml:"canvas_height"`
	Background     string        `yaml:"background"`
	ClickThreshold float64       `yaml:"click_threshold"`
	ZoomMin        float64       `yaml:"zoom_min"`
	ZoomMax        float64       `yaml:"zoom_max"`
	ZoomStep       float64       `yaml:"zoom_step"`
	Autosave       time.Duration `yaml:"autosave_interval"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
		Editor: EditorConfig{
			URL:            getEnv("EDITOR_URL", "http://localhost:3003"),
			DBPath:         getEnv("EDITOR_DB_PATH", "data/db/editor.db"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations/001_init_layouts.sql"),
			ExportDir:      getEnv("EXPORT_DIR", "data/exports"),
			CatalogPath:    getEnv("CATALOG_PATH", ""),
			GridSize:       getEnvAsInt("GRID_SIZE", 64),
			CanvasWidth:    getEnvAsInt("CANVAS_WIDTH", 1024),
			CanvasHeight:   getEnvAsInt("CANVAS_HEIGHT", 768),
			Background:     getEnv("CANVAS_BACKGROUND", "#ffffff"),
			ClickThreshold: getEnvAsFloat("CLICK_THRESHOLD", 5),
			ZoomMin:        getEnvAsFloat("ZOOM_MIN", 0.5),
			ZoomMax:        getEnvAsFloat("ZOOM_MAX", 3),
			ZoomStep:       getEnvAsFloat("ZOOM_STEP", 0.1),
			Autosave:       getEnvAsDuration("AUTOSAVE_INTERVAL", 30*time.Second),
		},
	}
}

// LoadWithFile загружает окружение и накладывает YAML файл из CONFIG_FILE.
func LoadWithFile() (*Config, error) {
	cfg := Load()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.Overlay(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Overlay перекрывает поля значениями из YAML файла. Отсутствующие ключи не трогает.
func (c *Config) Overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	e := c.Editor
	if e.GridSize <= 0 {
		return fmt.Errorf("grid_size must be positive, got %d", e.GridSize)
	}
	if e.ClickThreshold < 0 {
		return fmt.Errorf("click_threshold must not be negative")
	}
	if e.ZoomMin <= 0 || e.ZoomMax < e.ZoomMin {
		return fmt.Errorf("invalid zoom range [%g, %g]", e.ZoomMin, e.ZoomMax)
	}
	if e.ZoomStep <= 0 {
		return fmt.Errorf("zoom_step must be positive")
	}
	if e.CanvasWidth%e.GridSize != 0 || e.CanvasHeight%e.GridSize != 0 {
		return fmt.Errorf("canvas %dx%d is not a multiple of grid %d", e.CanvasWidth, e.CanvasHeight, e.GridSize)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}
