package history

import "floorplan-editor/internal/editor/models"

// ============================================================
// History Log
// ============================================================

// Snapshot хранит неизменяемую копию содержимого реестра.
type Snapshot []models.PlacedElement

func clone(s []models.PlacedElement) Snapshot {
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

// Log ведёт линейную историю снимков с курсором.
// Инвариант: 0 <= cursor < len(entries), текущее состояние = entries[cursor].
type Log struct {
	entries []Snapshot
	cursor  int
}

// New создаёт историю с единственным пустым снимком.
func New() *Log {
	return &Log{entries: []Snapshot{{}}}
}

// Reset начинает историю заново с данного снимка (загрузка сохранённой раскладки).
func (l *Log) Reset(initial []models.PlacedElement) {
	l.entries = []Snapshot{clone(initial)}
	l.cursor = 0
}

// Record отбрасывает redo-хвост и добавляет снимок.
func (l *Log) Record(snapshot []models.PlacedElement) {
	l.entries = append(l.entries[:l.cursor+1], clone(snapshot))
	l.cursor = len(l.entries) - 1
}

// Undo сдвигает курсор назад. На нижней границе возвращает false.
func (l *Log) Undo() (Snapshot, bool) {
	if l.cursor == 0 {
		return nil, false
	}
	l.cursor--
	return clone(l.entries[l.cursor]), true
}

// Redo сдвигает курсор вперёд. На верхней границе возвращает false.
func (l *Log) Redo() (Snapshot, bool) {
	if l.cursor >= len(l.entries)-1 {
		return nil, false
	}
	l.cursor++
	return clone(l.entries[l.cursor]), true
}

// Clear сбрасывает историю к одному пустому снимку. Не отменяется.
func (l *Log) Clear() {
	l.Reset(nil)
}

// Current возвращает копию текущего снимка.
func (l *Log) Current() Snapshot {
	return clone(l.entries[l.cursor])
}

func (l *Log) Cursor() int   { return l.cursor }
func (l *Log) Len() int      { return len(l.entries) }
func (l *Log) CanUndo() bool { return l.cursor > 0 }
func (l *Log) CanRedo() bool { return l.cursor < len(l.entries)-1 }
