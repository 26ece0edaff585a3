package registry

import (
	"floorplan-editor/internal/editor/grid"
	"floorplan-editor/internal/editor/models"

	"github.com/google/uuid"
)

// ============================================================
// Element Registry
// ============================================================

// Registry хранит упорядоченный набор размещённых элементов с доступом по id.
// При равной глубине порядок вставки задаёт порядок отрисовки.
type Registry struct {
	elements []models.PlacedElement
	index    map[string]int
	newID    func() string
}

// Option настраивает Registry.
type Option func(*Registry)

// WithIDGenerator подменяет генератор идентификаторов.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) { r.newID = fn }
}

func New(opts ...Option) *Registry {
	r := &Registry{
		index: make(map[string]int),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert добавляет элемент и возвращает его новый id.
func (r *Registry) Insert(elemType string, x, y, depth int, fp models.Footprint) string {
	id := r.newID()
	for _, taken := r.index[id]; taken; _, taken = r.index[id] {
		id = r.newID()
	}

	r.index[id] = len(r.elements)
	r.elements = append(r.elements, models.PlacedElement{
		ID:     id,
		Type:   elemType,
		X:      x,
		Y:      y,
		Depth:  depth,
		Width:  fp.Width,
		Height: fp.Height,
	})
	return id
}

// MoveTo меняет позицию элемента. Отсутствующий id игнорируется.
func (r *Registry) MoveTo(id string, x, y int) bool {
	i, ok := r.index[id]
	if !ok {
		return false
	}
	r.elements[i].X = x
	r.elements[i].Y = y
	return true
}

// Remove удаляет элемент. Повторное удаление возвращает false.
func (r *Registry) Remove(id string) bool {
	i, ok := r.index[id]
	if !ok {
		return false
	}

	r.elements = append(r.elements[:i], r.elements[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.elements); j++ {
		r.index[r.elements[j].ID] = j
	}
	return true
}

// OccupiedBy ищет элемент того же типа ровно в этой привязанной точке.
func (r *Registry) OccupiedBy(x, y int, elemType string) (string, bool) {
	for _, e := range r.elements {
		if e.X == x && e.Y == y && e.Type == elemType {
			return e.ID, true
		}
	}
	return "", false
}

// HitTest возвращает первый (в порядке реестра) элемент, чей bounding box
// содержит точку.
func (r *Registry) HitTest(x, y float64) (string, bool) {
	for _, e := range r.elements {
		if grid.Bounds(e.X, e.Y, e.Footprint()).Contains(x, y) {
			return e.ID, true
		}
	}
	return "", false
}

// Get возвращает копию элемента.
func (r *Registry) Get(id string) (models.PlacedElement, bool) {
	i, ok := r.index[id]
	if !ok {
		return models.PlacedElement{}, false
	}
	return r.elements[i], true
}

func (r *Registry) Len() int {
	return len(r.elements)
}

// All возвращает снимок элементов в порядке реестра.
func (r *Registry) All() []models.PlacedElement {
	out := make([]models.PlacedElement, len(r.elements))
	copy(out, r.elements)
	return out
}

// Restore заменяет содержимое реестра снимком (undo/redo, загрузка).
// Повторяющиеся id в снимке отбрасываются, остаётся первое вхождение.
func (r *Registry) Restore(snapshot []models.PlacedElement) {
	r.elements = make([]models.PlacedElement, 0, len(snapshot))
	r.index = make(map[string]int, len(snapshot))
	for _, e := range snapshot {
		if _, dup := r.index[e.ID]; dup || e.ID == "" {
			continue
		}
		r.index[e.ID] = len(r.elements)
		r.elements = append(r.elements, e)
	}
}
