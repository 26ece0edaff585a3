package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"floorplan-editor/internal/editor/grid"
	"floorplan-editor/internal/editor/models"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Palette catalog
// ============================================================

//go:embed catalog.yaml
var defaultCatalog []byte

// Entry описывает элемент палитры.
type Entry struct {
	Type   string `yaml:"type" json:"type"`
	Name   string `yaml:"name" json:"name"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	Color  string `yaml:"color" json:"color"`
	Depth  int    `yaml:"depth" json:"depth"`
}

// Tool превращает элемент палитры в payload инструмента.
func (e Entry) Tool() models.Tool {
	return models.Tool{Type: e.Type, Width: e.Width, Height: e.Height, Depth: e.Depth}
}

type file struct {
	GridSize int     `yaml:"grid_size"`
	Elements []Entry `yaml:"elements"`
}

// Catalog хранит упорядоченный список элементов палитры с поиском по типу.
type Catalog struct {
	gridSize int
	entries  []Entry
	byType   map[string]int
}

// Default возвращает встроенную палитру.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load читает палитру из YAML файла.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse разбирает YAML палитры. Неразрешённые размеры заменяются размером ячейки.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.GridSize <= 0 {
		f.GridSize = grid.DefaultSize
	}

	c := &Catalog{
		gridSize: f.GridSize,
		byType:   make(map[string]int, len(f.Elements)),
	}
	for _, e := range f.Elements {
		if e.Type == "" {
			return nil, fmt.Errorf("catalog entry %q has no type", e.Name)
		}
		if _, dup := c.byType[e.Type]; dup {
			return nil, fmt.Errorf("duplicate catalog type %q", e.Type)
		}
		fp := grid.Normalize(models.Footprint{Width: e.Width, Height: e.Height}, f.GridSize)
		e.Width, e.Height = fp.Width, fp.Height
		if e.Name == "" {
			e.Name = e.Type
		}
		c.byType[e.Type] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

func (c *Catalog) GridSize() int { return c.gridSize }

// Entries возвращает копию списка палитры.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup ищет элемент по типу.
func (c *Catalog) Lookup(elemType string) (Entry, bool) {
	i, ok := c.byType[elemType]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Footprint возвращает размер типа; неизвестный тип получает размер ячейки.
func (c *Catalog) Footprint(elemType string, gridSize int) models.Footprint {
	if e, ok := c.Lookup(elemType); ok {
		return models.Footprint{Width: e.Width, Height: e.Height}
	}
	return grid.Normalize(models.Footprint{}, gridSize)
}

// Color возвращает цвет типа для рендеринга.
func (c *Catalog) Color(elemType string) string {
	if e, ok := c.Lookup(elemType); ok && e.Color != "" {
		return e.Color
	}
	return "#9ca3af"
}
