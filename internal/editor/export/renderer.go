package export

import (
	"fmt"
	"html"
	"math"
	"sort"
	"strconv"
	"strings"

	"floorplan-editor/internal/editor/grid"
	"floorplan-editor/internal/editor/models"
)

// ============================================================
// SVG Renderer
// ============================================================

// Palette отдаёт цвет заливки по типу элемента.
type Palette interface {
	Color(elemType string) string
}

type Renderer struct {
	palette Palette
	canvas  models.CanvasConfig
}

func NewRenderer(palette Palette, canvas models.CanvasConfig) *Renderer {
	return &Renderer{palette: palette, canvas: canvas}
}

// Render собирает SVG раскладки: сетка, затем элементы по глубине.
func (r *Renderer) Render(elements []models.PlacedElement) (string, error) {
	if r.palette == nil {
		return "", fmt.Errorf("palette is nil")
	}

	width, height := r.sceneSize(elements)

	var body []string
	body = append(body, r.renderBackground(width, height))
	body = append(body, r.renderGrid(width, height)...)
	body = append(body, r.renderElements(elements)...)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		formatFloat(width), formatFloat(height), formatFloat(width), formatFloat(height)))
	builder.WriteString("\n")

	for _, elem := range body {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Sizing
// ============================================================

// sceneSize берёт размер холста из конфигурации и расширяет его,
// если элементы выходят за пределы.
func (r *Renderer) sceneSize(elements []models.PlacedElement) (float64, float64) {
	width := float64(r.canvas.Width)
	height := float64(r.canvas.Height)
	if width <= 0 {
		width = 1000
	}
	if height <= 0 {
		height = 1000
	}

	for _, e := range elements {
		b := grid.Bounds(e.X, e.Y, e.Footprint())
		width = math.Max(width, b.MaxX)
		height = math.Max(height, b.MaxY)
	}
	return width, height
}

// ============================================================
// Layers
// ============================================================

func (r *Renderer) renderBackground(width, height float64) string {
	bg := r.canvas.BackgroundColor
	if bg == "" {
		bg = "#f0f0f0"
	}
	return fmt.Sprintf(`<rect x="0" y="0" width="%s" height="%s" fill="%s" />`,
		formatFloat(width), formatFloat(height), html.EscapeString(bg))
}

func (r *Renderer) renderGrid(width, height float64) []string {
	step := r.canvas.GridSize
	if step <= 0 {
		return nil
	}

	var out []string
	for x := 0; float64(x) <= width; x += step {
		out = append(out, fmt.Sprintf(`<line x1="%d" y1="0" x2="%d" y2="%s" stroke="#aaaaaa" stroke-opacity="0.3" />`,
			x, x, formatFloat(height)))
	}
	for y := 0; float64(y) <= height; y += step {
		out = append(out, fmt.Sprintf(`<line x1="0" y1="%d" x2="%s" y2="%d" stroke="#aaaaaa" stroke-opacity="0.3" />`,
			y, formatFloat(width), y))
	}
	return out
}

// renderElements рисует элементы по возрастанию глубины;
// при равной глубине сохраняется порядок реестра.
func (r *Renderer) renderElements(elements []models.PlacedElement) []string {
	ordered := make([]models.PlacedElement, len(elements))
	copy(ordered, elements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Depth < ordered[j].Depth
	})

	var out []string
	for _, e := range ordered {
		b := grid.Bounds(e.X, e.Y, e.Footprint())
		out = append(out, fmt.Sprintf(`<rect id="%s" data-type="%s" x="%s" y="%s" width="%s" height="%s" fill="%s" fill-opacity="0.8" stroke="#000" />`,
			html.EscapeString(e.ID), html.EscapeString(e.Type),
			formatFloat(b.MinX), formatFloat(b.MinY),
			formatFloat(b.MaxX-b.MinX), formatFloat(b.MaxY-b.MinY),
			html.EscapeString(r.palette.Color(e.Type))))
	}
	return out
}

// ============================================================
// Formatting helpers
// ============================================================

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
