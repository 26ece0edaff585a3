package grid

import (
	"math"

	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Grid snapping
// ============================================================

// DefaultSize задаёт размер ячейки по умолчанию.
const DefaultSize = 64

// Snap привязывает мировую точку к сетке с учётом чётности footprint.
// Элементы с нечётным числом ячеек центрируются на середине ячейки,
// с чётным ложатся на границу ячейки.
func Snap(worldX, worldY float64, footprintWidth, footprintHeight, gridSize int) (int, int) {
	if gridSize <= 0 {
		return int(math.Round(worldX)), int(math.Round(worldY))
	}
	return snapAxis(worldX, footprintWidth, gridSize), snapAxis(worldY, footprintHeight, gridSize)
}

// SnapFootprint вызывает Snap для готового footprint.
func SnapFootprint(worldX, worldY float64, fp models.Footprint, gridSize int) (int, int) {
	return Snap(worldX, worldY, fp.Width, fp.Height, gridSize)
}

func snapAxis(world float64, footprint, gridSize int) int {
	cell := int(math.Floor(world/float64(gridSize))) * gridSize
	if Cells(footprint, gridSize)%2 == 1 {
		return cell + gridSize/2
	}
	return cell
}

// Cells возвращает число ячеек, занимаемых стороной footprint.
// Неразрешённый (нулевой или отрицательный) размер считается одной ячейкой.
func Cells(footprint, gridSize int) int {
	if gridSize <= 0 {
		return 1
	}
	if footprint <= 0 {
		return 1
	}
	return footprint / gridSize
}

// Normalize подставляет размер ячейки вместо неразрешённых сторон footprint.
func Normalize(fp models.Footprint, gridSize int) models.Footprint {
	if gridSize <= 0 {
		gridSize = DefaultSize
	}
	if fp.Width <= 0 {
		fp.Width = gridSize
	}
	if fp.Height <= 0 {
		fp.Height = gridSize
	}
	return fp
}

// ============================================================
// Bounding boxes
// ============================================================

// Rect задаёт ограничивающий прямоугольник [MinX, MaxX) x [MinY, MaxY).
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Bounds строит прямоугольник элемента, якорь которого в центре изображения.
func Bounds(x, y int, fp models.Footprint) Rect {
	halfW := float64(fp.Width) / 2
	halfH := float64(fp.Height) / 2
	return Rect{
		MinX: float64(x) - halfW,
		MinY: float64(y) - halfH,
		MaxX: float64(x) + halfW,
		MaxY: float64(y) + halfH,
	}
}

// Contains проверяет попадание точки в прямоугольник.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x < r.MaxX && y >= r.MinY && y < r.MaxY
}

// Distance возвращает евклидово расстояние между двумя точками.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
