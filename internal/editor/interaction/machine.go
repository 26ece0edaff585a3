package interaction

import (
	"floorplan-editor/internal/editor/grid"
	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Interaction State Machine
// ============================================================

// Config задаёт пороги жестов и пределы камеры.
type Config struct {
	ClickThreshold float64 // экранные пиксели
	ZoomMin        float64
	ZoomMax        float64
	ZoomStep       float64
}

func DefaultConfig() Config {
	return Config{
		ClickThreshold: 5,
		ZoomMin:        0.5,
		ZoomMax:        3.0,
		ZoomStep:       0.1,
	}
}

// Target принимает мутации, вычисленные автоматом. Реализуется сессией холста.
type Target interface {
	// Place привязывает точку к сетке и вставляет элемент инструмента.
	// При dedupe вставка пропускается, если ячейка уже занята тем же типом.
	Place(tool models.Tool, worldX, worldY float64, dedupe bool) (string, bool)
	// DeleteAt удаляет первый элемент под точкой.
	DeleteAt(worldX, worldY float64) (string, bool)
	// SelectAt выделяет первый элемент под точкой (или снимает выделение).
	SelectAt(worldX, worldY float64) (string, bool)
	// MoveTo привязывает точку к сетке по footprint элемента и переносит его.
	// moved ложно, если ячейка не изменилась; exists ложно, если элемента уже нет.
	MoveTo(id string, worldX, worldY float64) (moved, exists bool)
}

// Outcome описывает эффекты одного события.
type Outcome struct {
	Placed      []string
	Removed     []string
	Moved       []string
	Selected    string
	CameraMoved bool
}

type point struct{ x, y float64 }

// Machine разбирает поток событий указателя на жесты.
// Всё состояние жеста хранится в полях, переходы идут только через Handle.
type Machine struct {
	cfg        Config
	camera     models.Camera
	tool       *models.Tool
	deleteMode bool

	gesture    Gesture
	panAnchor  point
	clickStart point // экранные координаты нажатия
	clickWorld point // мировые координаты нажатия

	moveID   string // перетаскиваемый элемент; пусто, если он удалён во время жеста
	dragging bool
}

func NewMachine(cfg Config) *Machine {
	if cfg.ZoomMin <= 0 || cfg.ZoomMax < cfg.ZoomMin {
		d := DefaultConfig()
		cfg.ZoomMin, cfg.ZoomMax = d.ZoomMin, d.ZoomMax
	}
	if cfg.ZoomStep <= 0 {
		cfg.ZoomStep = DefaultConfig().ZoomStep
	}
	return &Machine{
		cfg:    cfg,
		camera: models.Camera{Zoom: 1},
	}
}

// ============================================================
// Session flags
// ============================================================

// SetTool выбирает инструмент палитры; nil снимает выбор.
func (m *Machine) SetTool(tool *models.Tool) {
	if tool == nil {
		m.tool = nil
		return
	}
	t := *tool
	m.tool = &t
}

// Tool возвращает копию активного инструмента.
func (m *Machine) Tool() (models.Tool, bool) {
	if m.tool == nil {
		return models.Tool{}, false
	}
	return *m.tool, true
}

func (m *Machine) SetDeleteMode(on bool) { m.deleteMode = on }
func (m *Machine) DeleteMode() bool      { return m.deleteMode }
func (m *Machine) Gesture() Gesture      { return m.gesture }
func (m *Machine) Camera() models.Camera { return m.camera }

// SetCamera восстанавливает вьюпорт (например, после перезагрузки клиента).
func (m *Machine) SetCamera(cam models.Camera) {
	if cam.Zoom <= 0 {
		cam.Zoom = 1
	}
	if cam.Zoom < m.cfg.ZoomMin {
		cam.Zoom = m.cfg.ZoomMin
	}
	if cam.Zoom > m.cfg.ZoomMax {
		cam.Zoom = m.cfg.ZoomMax
	}
	m.camera = cam
}

// ToWorld переводит экранную точку в мировые координаты текущей камеры.
func (m *Machine) ToWorld(x, y float64) (float64, float64) {
	return ScreenToWorld(m.camera, x, y)
}

// Wheel меняет масштаб камеры. Реестр не трогает.
func (m *Machine) Wheel(deltaY float64) Outcome {
	before := m.camera
	m.camera = zoomBy(m.camera, deltaY, m.cfg)
	return Outcome{CameraMoved: before != m.camera}
}

// ============================================================
// Dispatch
// ============================================================

// Handle применяет событие указателя к автомату.
func (m *Machine) Handle(ev PointerEvent, t Target) Outcome {
	switch ev.Kind {
	case PointerDown:
		return m.down(ev, t)
	case PointerMove:
		return m.move(ev, t)
	case PointerUp:
		return m.up(ev, t)
	}
	return Outcome{}
}

func (m *Machine) down(ev PointerEvent, t Target) Outcome {
	if m.gesture != Idle {
		return Outcome{}
	}

	wx, wy := m.ToWorld(ev.X, ev.Y)

	switch ev.Button {
	case ButtonSecondary:
		m.gesture = Panning
		m.panAnchor = point{ev.X, ev.Y}
		return Outcome{}

	case ButtonPrimary:
		if m.deleteMode {
			m.gesture = DeleteDragging
			return m.deleteAt(wx, wy, t)
		}
		if m.tool != nil {
			m.gesture = ClickPlacing
			m.clickStart = point{ev.X, ev.Y}
			m.clickWorld = point{wx, wy}
			return Outcome{}
		}
		id, hit := t.SelectAt(wx, wy)
		if hit {
			m.gesture = Moving
			m.moveID = id
			m.dragging = false
			m.clickStart = point{ev.X, ev.Y}
		}
		return Outcome{Selected: id}
	}

	return Outcome{}
}

func (m *Machine) move(ev PointerEvent, t Target) Outcome {
	switch m.gesture {
	case Panning:
		before := m.camera
		m.camera = pan(m.camera, ev.X-m.panAnchor.x, ev.Y-m.panAnchor.y)
		m.panAnchor = point{ev.X, ev.Y}
		return Outcome{CameraMoved: before != m.camera}

	case DeleteDragging:
		wx, wy := m.ToWorld(ev.X, ev.Y)
		return m.deleteAt(wx, wy, t)

	case ClickPlacing:
		if grid.Distance(m.clickStart.x, m.clickStart.y, ev.X, ev.Y) < m.cfg.ClickThreshold {
			return Outcome{}
		}
		m.gesture = PaintDragging
		out := m.paint(m.clickWorld.x, m.clickWorld.y, t)
		wx, wy := m.ToWorld(ev.X, ev.Y)
		next := m.paint(wx, wy, t)
		out.Placed = append(out.Placed, next.Placed...)
		return out

	case PaintDragging:
		wx, wy := m.ToWorld(ev.X, ev.Y)
		return m.paint(wx, wy, t)

	case Moving:
		return m.drag(ev, t)
	}

	return Outcome{}
}

func (m *Machine) up(ev PointerEvent, t Target) Outcome {
	gesture := m.gesture
	m.gesture = Idle
	m.moveID = ""
	m.dragging = false

	if gesture != ClickPlacing || ev.Button != ButtonPrimary || m.tool == nil {
		return Outcome{}
	}
	if grid.Distance(m.clickStart.x, m.clickStart.y, ev.X, ev.Y) >= m.cfg.ClickThreshold {
		return Outcome{}
	}

	wx, wy := m.ToWorld(ev.X, ev.Y)
	if id, ok := t.Place(*m.tool, wx, wy, false); ok {
		return Outcome{Placed: []string{id}}
	}
	return Outcome{}
}

func (m *Machine) paint(wx, wy float64, t Target) Outcome {
	if m.tool == nil {
		return Outcome{}
	}
	if id, ok := t.Place(*m.tool, wx, wy, true); ok {
		return Outcome{Placed: []string{id}}
	}
	return Outcome{}
}

// drag переносит выделенный элемент, когда указатель ушёл дальше порога клика.
func (m *Machine) drag(ev PointerEvent, t Target) Outcome {
	if m.moveID == "" {
		return Outcome{}
	}
	if !m.dragging && grid.Distance(m.clickStart.x, m.clickStart.y, ev.X, ev.Y) < m.cfg.ClickThreshold {
		return Outcome{}
	}
	m.dragging = true

	wx, wy := m.ToWorld(ev.X, ev.Y)
	moved, exists := t.MoveTo(m.moveID, wx, wy)
	if !exists {
		m.moveID = ""
		return Outcome{}
	}
	if moved {
		return Outcome{Moved: []string{m.moveID}}
	}
	return Outcome{}
}

func (m *Machine) deleteAt(wx, wy float64, t Target) Outcome {
	if id, ok := t.DeleteAt(wx, wy); ok {
		return Outcome{Removed: []string{id}}
	}
	return Outcome{}
}
