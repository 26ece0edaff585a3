package session

import (
	"floorplan-editor/internal/editor/interaction"
	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Intents
// ============================================================

// Intent приходит от поверхности отрисовки или UI.
// Все интенты обрабатываются одной функцией Session.Dispatch.
type Intent interface {
	isIntent()
}

// Pointer несёт сырое событие указателя в экранных координатах.
type Pointer struct {
	Event interaction.PointerEvent
}

// Wheel меняет только масштаб камеры.
type Wheel struct {
	DeltaY float64
}

// Drop размещает элемент палитры в точке поверхности.
type Drop struct {
	Tool models.Tool
	X, Y float64
}

// SelectTool выбирает инструмент палитры. Пустой Type снимает выбор.
type SelectTool struct {
	Tool models.Tool
}

type ToggleDeleteMode struct{}

// ClearSelectedOnly переключает режим удаления перетаскиванием.
type ClearSelectedOnly struct{}

// ClearAll очищает реестр, историю и хранилище. Не отменяется.
type ClearAll struct{}

type Undo struct{}

type Redo struct{}

// Select выделяет элемент по id; пустой id снимает выделение.
type Select struct {
	ID string
}

// Remove удаляет элемент по id. Пустой id означает выделенный элемент.
type Remove struct {
	ID string
}

// Duplicate копирует элемент со сдвигом на одну ячейку.
type Duplicate struct {
	ID string
}

// Move переносит элемент в мировую точку с привязкой к сетке.
type Move struct {
	ID   string
	X, Y float64
}

// Rotate оставлен заглушкой: поворот не поддерживается.
type Rotate struct {
	ID string
}

// Save явно пишет раскладку в хранилище. OnlyDirty пропускает запись,
// если последняя уже прошла успешно (автосохранение).
type Save struct {
	OnlyDirty bool
}

func (Pointer) isIntent()           {}
func (Wheel) isIntent()             {}
func (Drop) isIntent()              {}
func (SelectTool) isIntent()        {}
func (ToggleDeleteMode) isIntent()  {}
func (ClearSelectedOnly) isIntent() {}
func (ClearAll) isIntent()          {}
func (Undo) isIntent()              {}
func (Redo) isIntent()              {}
func (Select) isIntent()            {}
func (Remove) isIntent()            {}
func (Duplicate) isIntent()         {}
func (Move) isIntent()              {}
func (Rotate) isIntent()            {}
func (Save) isIntent()              {}
