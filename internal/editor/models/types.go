package models

// ============================================================
// Placed elements
// ============================================================

// PlacedElement описывает элемент, размещённый на холсте.
// X/Y хранят привязанный к сетке центр, Width/Height хранят footprint в пикселях.
type PlacedElement struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Depth  int    `json:"depth"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Footprint задаёт занимаемый размер элемента в пикселях (кратен размеру ячейки).
type Footprint struct {
	Width  int `json:"footprintWidth"`
	Height int `json:"footprintHeight"`
}

// Footprint возвращает размер элемента.
func (e PlacedElement) Footprint() Footprint {
	return Footprint{Width: e.Width, Height: e.Height}
}

// ============================================================
// Tools & intents payload
// ============================================================

// Tool описывает активный инструмент палитры. Тот же формат приходит в drop-интенте.
type Tool struct {
	Type   string `json:"type"`
	Width  int    `json:"footprintWidth"`
	Height int    `json:"footprintHeight"`
	Depth  int    `json:"depth"`
}

// Footprint возвращает размер инструмента.
func (t Tool) Footprint() Footprint {
	return Footprint{Width: t.Width, Height: t.Height}
}

// ============================================================
// Canvas
// ============================================================

type CanvasConfig struct {
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	GridSize        int    `json:"gridSize"`
	BackgroundColor string `json:"backgroundColor"`
}

// Camera хранит состояние вьюпорта. Реестр от неё не зависит.
type Camera struct {
	ScrollX float64 `json:"scrollX"`
	ScrollY float64 `json:"scrollY"`
	Zoom    float64 `json:"zoom"`
}

// ============================================================
// Export
// ============================================================

// ExportDocument содержит снимок раскладки для выгрузки.
type ExportDocument struct {
	Elements   []PlacedElement `json:"elements"`
	ExportDate string          `json:"exportDate"`
}

// ExportFilename задаёт имя файла выгрузки по умолчанию.
const ExportFilename = "canvas-layout.json"
