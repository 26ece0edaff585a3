package interaction

import "fmt"

// ============================================================
// Pointer events
// ============================================================

// Button кодирует кнопку указателя.
type Button int

const (
	// левая кнопка: размещение и удаление
	ButtonPrimary Button = iota
	// правая кнопка: панорамирование камеры
	ButtonSecondary
	// ButtonMiddle не используется холстом.
	ButtonMiddle
)

// Kind кодирует тип события указателя.
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
)

// PointerEvent приходит в экранных координатах поверхности.
// Мировые координаты вычисляются через камеру автомата.
type PointerEvent struct {
	Kind   Kind
	Button Button
	X      float64
	Y      float64
}

// ParseButton разбирает имя кнопки из транспортного формата.
func ParseButton(s string) (Button, error) {
	switch s {
	case "", "primary", "left":
		return ButtonPrimary, nil
	case "secondary", "right":
		return ButtonSecondary, nil
	case "middle":
		return ButtonMiddle, nil
	}
	return 0, fmt.Errorf("unknown button %q", s)
}

// ParseKind разбирает тип события из транспортного формата.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "down":
		return PointerDown, nil
	case "move":
		return PointerMove, nil
	case "up":
		return PointerUp, nil
	}
	return 0, fmt.Errorf("unknown pointer kind %q", s)
}

// ============================================================
// Gestures
// ============================================================

// Gesture обозначает текущий жест автомата.
type Gesture int

const (
	Idle Gesture = iota
	Panning
	ClickPlacing
	PaintDragging
	DeleteDragging
	Moving
)

func (g Gesture) String() string {
	switch g {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case ClickPlacing:
		return "click-placing"
	case PaintDragging:
		return "paint-dragging"
	case DeleteDragging:
		return "delete-dragging"
	case Moving:
		return "moving"
	}
	return fmt.Sprintf("gesture(%d)", int(g))
}
