package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"floorplan-editor/internal/editor/interaction"
	"floorplan-editor/internal/editor/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore records every call so tests can count persistence writes.
type memStore struct {
	blobs    map[string][]byte
	saves    int
	deletes  int
	failSave bool
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (m *memStore) Load(_ context.Context, key string) ([]byte, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (m *memStore) Save(_ context.Context, key string, data []byte) error {
	if m.failSave {
		return errors.New("disk full")
	}
	m.saves++
	m.blobs[key] = data
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.deletes++
	delete(m.blobs, key)
	return nil
}

func (m *memStore) stored(t *testing.T, key string) []models.PlacedElement {
	t.Helper()
	data, ok := m.blobs[key]
	if !ok {
		return nil
	}
	elems, err := Decode(data)
	require.NoError(t, err)
	return elems
}

const key = "canvas-layout:test"

func newSession(store Store) *Session {
	return New(Config{Key: key, GridSize: 64}, store, nil)
}

var ctx = context.Background()

func pointer(kind interaction.Kind, b interaction.Button, x, y float64) Pointer {
	return Pointer{Event: interaction.PointerEvent{Kind: kind, Button: b, X: x, Y: y}}
}

func click(s *Session, x, y float64) Result {
	s.Dispatch(ctx, pointer(interaction.PointerDown, interaction.ButtonPrimary, x, y))
	return s.Dispatch(ctx, pointer(interaction.PointerUp, interaction.ButtonPrimary, x, y))
}

func TestScenarioA_DropSnapsByParity(t *testing.T) {
	store := newMemStore()
	s := newSession(store)

	res := s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "table", Width: 64, Height: 64}, X: 100, Y: 100})

	require.True(t, res.Changed)
	require.Len(t, res.Elements, 1)
	e := res.Elements[0]
	assert.Equal(t, "table", e.Type)
	assert.Equal(t, 96, e.X)
	assert.Equal(t, 96, e.Y)
	assert.Equal(t, []string{e.ID}, res.Placed)
	assert.Equal(t, 1, store.saves)
}

func TestScenarioB_PaintDragFiveCells(t *testing.T) {
	store := newMemStore()
	s := newSession(store)
	s.Dispatch(ctx, SelectTool{Tool: models.Tool{Type: "wall"}})

	s.Dispatch(ctx, pointer(interaction.PointerDown, interaction.ButtonPrimary, 10, 10))
	for _, x := range []float64{30, 50, 80, 120, 150, 190, 230, 270} {
		s.Dispatch(ctx, pointer(interaction.PointerMove, interaction.ButtonPrimary, x, 10))
	}
	s.Dispatch(ctx, pointer(interaction.PointerUp, interaction.ButtonPrimary, 270, 10))

	assert.Len(t, s.Elements(), 5)
	assert.Equal(t, 6, s.HistoryLen(), "one initial snapshot + one per painted cell")
	assert.Equal(t, 5, store.saves)
	assert.Equal(t, interaction.Idle, s.Gesture())

	for i := 0; i < 5; i++ {
		s.Dispatch(ctx, Undo{})
	}
	assert.Empty(t, s.Elements(), "per-cell undo granularity")
}

func TestScenarioC_DeleteDragRemovesCrossedElements(t *testing.T) {
	store := newMemStore()
	s := newSession(store)
	var ids []string
	for _, x := range []float64{10, 80, 150, 220} {
		res := s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "chair"}, X: x, Y: 10})
		ids = append(ids, res.Placed...)
	}
	other := s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "chair"}, X: 10, Y: 300}).Placed[0]

	s.Dispatch(ctx, ToggleDeleteMode{})
	var removed []string
	for _, ev := range []Pointer{
		pointer(interaction.PointerDown, interaction.ButtonPrimary, 70, 20),
		pointer(interaction.PointerMove, interaction.ButtonPrimary, 140, 20),
		pointer(interaction.PointerMove, interaction.ButtonPrimary, 145, 20),
		pointer(interaction.PointerMove, interaction.ButtonPrimary, 200, 20),
		pointer(interaction.PointerUp, interaction.ButtonPrimary, 200, 20),
	} {
		removed = append(removed, s.Dispatch(ctx, ev).Removed...)
	}

	assert.Equal(t, ids[1:], removed)
	remaining := s.Elements()
	require.Len(t, remaining, 2)
	assert.Equal(t, ids[0], remaining[0].ID)
	assert.Equal(t, other, remaining[1].ID)
	assert.Len(t, store.stored(t, key), 2)
}

func TestScenarioD_ClearAll(t *testing.T) {
	store := newMemStore()
	s := newSession(store)
	s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "bed"}, X: 300, Y: 300})
	s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "plant"}, X: 10, Y: 10})
	s.Dispatch(ctx, Undo{})

	res := s.Dispatch(ctx, ClearAll{})

	assert.True(t, res.Changed)
	assert.Empty(t, s.Elements())
	assert.Equal(t, 1, s.HistoryLen())
	assert.NotContains(t, store.blobs, key)
	assert.Equal(t, 1, store.deletes)

	undo := s.Dispatch(ctx, Undo{})
	assert.False(t, undo.Changed)
	assert.Equal(t, NoticeNothingToUndo, undo.Notice)
	assert.Equal(t, NoticeNothingToRedo, s.Dispatch(ctx, Redo{}).Notice)
}

func TestScenarioE_ClickPlacesExactlyOne(t *testing.T) {
	store := newMemStore()
	s := newSession(store)
	s.Dispatch(ctx, SelectTool{Tool: models.Tool{Type: "chair", Width: 64, Height: 64}})

	s.Dispatch(ctx, pointer(interaction.PointerDown, interaction.ButtonPrimary, 100, 100))
	s.Dispatch(ctx, pointer(interaction.PointerMove, interaction.ButtonPrimary, 102, 103))
	res := s.Dispatch(ctx, pointer(interaction.PointerUp, interaction.ButtonPrimary, 103, 103))

	assert.Len(t, res.Placed, 1)
	assert.Len(t, s.Elements(), 1)
	assert.Equal(t, 2, s.HistoryLen())
	assert.Equal(t, 1, store.saves)
}

func TestUndoRedo_RoundTrip(t *testing.T) {
	s := newSession(newMemStore())
	s.Dispatch(ctx, SelectTool{Tool: models.Tool{Type: "wall"}})
	click(s, 10, 10)
	click(s, 100, 10)
	before := s.Elements()

	s.Dispatch(ctx, Undo{})
	assert.Len(t, s.Elements(), 1)
	res := s.Dispatch(ctx, Redo{})

	assert.True(t, res.Changed)
	assert.Equal(t, before, s.Elements())
}

func TestMutationAfterUndo_DropsRedo(t *testing.T) {
	s := newSession(newMemStore())
	s.Dispatch(ctx, SelectTool{Tool: models.Tool{Type: "wall"}})
	click(s, 10, 10)
	click(s, 100, 10)
	click(s, 200, 10)

	s.Dispatch(ctx, Undo{})
	s.Dispatch(ctx, Undo{})
	click(s, 300, 300)

	res := s.Dispatch(ctx, Redo{})
	assert.Equal(t, NoticeNothingToRedo, res.Notice)
	assert.False(t, res.CanRedo)
	assert.Len(t, s.Elements(), 2)
}

func TestUndoPersistsRestoredState(t *testing.T) {
	store := newMemStore()
	s := newSession(store)
	s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "wall"}, X: 10, Y: 10})
	s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "wall"}, X: 100, Y: 10})

	s.Dispatch(ctx, Undo{})

	assert.Len(t, store.stored(t, key), 1)
}

func TestDropRejectedInDeleteMode(t *testing.T) {
	store := newMemStore()
	s := newSession(store)
	s.Dispatch(ctx, ClearSelectedOnly{})

	res := s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "wall"}, X: 10, Y: 10})

	assert.True(t, res.Rejected)
	assert.Equal(t, NoticeDeleteMode, res.Notice)
	assert.Empty(t, s.Elements())
	assert.Equal(t, 0, store.saves)

	s.Dispatch(ctx, ClearSelectedOnly{})
	assert.False(t, s.View().DeleteMode)
}

func TestDrop_MalformedPayloadDegrades(t *testing.T) {
	s := newSession(newMemStore())

	res := s.Dispatch(ctx, Drop{Tool: models.Tool{Type: ""}, X: 10, Y: 10})
	assert.Equal(t, NoticeEmptyType, res.Notice)
	assert.Empty(t, s.Elements())

	res = s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "hovercraft"}, X: 10, Y: 10})
	require.Len(t, res.Elements, 1)
	assert.Equal(t, 64, res.Elements[0].Width)
	assert.Equal(t, 64, res.Elements[0].Height)
}

func TestPersistenceFailureKeepsMutation(t *testing.T) {
	store := newMemStore()
	store.failSave = true
	s := newSession(store)

	res := s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "wall"}, X: 10, Y: 10})

	assert.Len(t, s.Elements(), 1, "no rollback on persistence failure")
	assert.True(t, res.Dirty)
	assert.Equal(t, 2, s.HistoryLen())

	assert.Equal(t, NoticeSaveFailed, s.Dispatch(ctx, Save{}).Notice)

	store.failSave = false
	res = s.Dispatch(ctx, Save{OnlyDirty: true})
	assert.False(t, res.Dirty)
	assert.Len(t, store.stored(t, key), 1)

	res = s.Dispatch(ctx, Save{OnlyDirty: true})
	assert.Equal(t, 1, store.saves, "clean session skips autosave")
}

func TestLoad_RepopulatesRegistry(t *testing.T) {
	store := newMemStore()
	store.blobs[key] = []byte(`[{"id":"a","type":"table","x":64,"y":64,"depth":2},{"id":"b","type":"mystery","x":32,"y":32,"depth":-1}]`)
	s := newSession(store)

	require.NoError(t, s.Load(ctx))

	elems := s.Elements()
	require.Len(t, elems, 2)
	assert.Equal(t, 128, elems[0].Width, "footprint from catalog")
	assert.Equal(t, 64, elems[1].Width, "unknown type falls back to grid size")
	assert.Equal(t, 1, s.HistoryLen())
	assert.Equal(t, NoticeNothingToUndo, s.Dispatch(ctx, Undo{}).Notice)
}

func TestLoad_MissingAndCorruptBlobs(t *testing.T) {
	store := newMemStore()
	assert.NoError(t, newSession(store).Load(ctx))

	store.blobs[key] = []byte("{not json")
	assert.Error(t, newSession(store).Load(ctx))
}

func TestReentrantDispatchIsRejected(t *testing.T) {
	s := newSession(newMemStore())
	var inner Result
	s.OnChange(func(Result) {
		inner = s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "wall"}, X: 500, Y: 500})
	})

	s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "wall"}, X: 10, Y: 10})

	assert.True(t, inner.Rejected)
	assert.Equal(t, NoticeReentrant, inner.Notice)
	assert.Len(t, s.Elements(), 1)
	assert.Equal(t, 2, s.HistoryLen())
}

func TestInspectorIntents(t *testing.T) {
	store := newMemStore()
	s := newSession(store)
	id := s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "table"}, X: 100, Y: 100}).Placed[0]

	// no tool selected: primary click selects the element under the pointer
	res := click(s, 70, 70)
	assert.Equal(t, id, res.Selected)

	dup := s.Dispatch(ctx, Duplicate{})
	require.Len(t, dup.Placed, 1)
	copyID := dup.Placed[0]
	assert.Equal(t, copyID, dup.Selected)
	e, _ := findElement(dup.Elements, copyID)
	assert.Equal(t, 128, e.X, "offset by one grid cell")
	assert.Equal(t, 128, e.Y)

	assert.Equal(t, NoticeNoRotation, s.Dispatch(ctx, Rotate{ID: id}).Notice)

	moved := s.Dispatch(ctx, Move{ID: id, X: 300, Y: 10})
	assert.True(t, moved.Changed)
	e, _ = findElement(moved.Elements, id)
	assert.Equal(t, 256, e.X)
	assert.Equal(t, 0, e.Y)
	assert.False(t, s.Dispatch(ctx, Move{ID: id, X: 300, Y: 10}).Changed)
	assert.Equal(t, NoticeNotFound, s.Dispatch(ctx, Move{ID: "ghost", X: 1, Y: 1}).Notice)

	removed := s.Dispatch(ctx, Remove{})
	assert.Equal(t, []string{copyID}, removed.Removed)
	assert.Empty(t, removed.Selected)
	assert.Equal(t, NoticeNoSelection, s.Dispatch(ctx, Remove{}).Notice)
	assert.Equal(t, NoticeNotFound, s.Dispatch(ctx, Remove{ID: copyID}).Notice)

	assert.Equal(t, NoticeNotFound, s.Dispatch(ctx, Select{ID: "ghost"}).Notice)
	assert.Len(t, store.stored(t, key), 1)
}

func TestWheelAndPanNeverMutateRegistry(t *testing.T) {
	store := newMemStore()
	s := newSession(store)

	s.Dispatch(ctx, Wheel{DeltaY: -100})
	s.Dispatch(ctx, pointer(interaction.PointerDown, interaction.ButtonSecondary, 100, 100))
	s.Dispatch(ctx, pointer(interaction.PointerMove, interaction.ButtonSecondary, 50, 100))
	s.Dispatch(ctx, pointer(interaction.PointerUp, interaction.ButtonSecondary, 50, 100))

	assert.InDelta(t, 1.1, s.Camera().Zoom, 1e-9)
	assert.InDelta(t, 50/1.1, s.Camera().ScrollX, 1e-9)
	assert.Empty(t, s.Elements())
	assert.Equal(t, 0, store.saves)
	assert.Equal(t, 1, s.HistoryLen())
}

func TestExport(t *testing.T) {
	s := New(Config{Key: key}, newMemStore(), nil, WithClock(func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	}))
	s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "door"}, X: 10, Y: 10})

	doc := s.Export()

	assert.Equal(t, "2026-01-02T03:04:05Z", doc.ExportDate)
	assert.Len(t, doc.Elements, 1)

	svg, err := s.RenderSVG()
	require.NoError(t, err)
	assert.Contains(t, svg, `data-type="door"`)
}

func TestPointerDrag_MovesElementUnderPointer(t *testing.T) {
	store := newMemStore()
	s := newSession(store)
	id := s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "chair"}, X: 10, Y: 10}).Placed[0]
	require.Equal(t, 2, s.HistoryLen())

	down := s.Dispatch(ctx, pointer(interaction.PointerDown, interaction.ButtonPrimary, 32, 32))
	assert.Equal(t, id, down.Selected)
	assert.Equal(t, interaction.Moving, s.Gesture())

	first := s.Dispatch(ctx, pointer(interaction.PointerMove, interaction.ButtonPrimary, 150, 150))
	assert.Equal(t, []string{id}, first.Moved)
	// та же ячейка
	same := s.Dispatch(ctx, pointer(interaction.PointerMove, interaction.ButtonPrimary, 155, 150))
	assert.Empty(t, same.Moved)
	s.Dispatch(ctx, pointer(interaction.PointerMove, interaction.ButtonPrimary, 290, 290))
	s.Dispatch(ctx, pointer(interaction.PointerUp, interaction.ButtonPrimary, 290, 290))

	e, ok := findElement(s.Elements(), id)
	require.True(t, ok)
	assert.Equal(t, 288, e.X)
	assert.Equal(t, 288, e.Y)
	assert.Equal(t, interaction.Idle, s.Gesture())
	assert.Equal(t, 4, s.HistoryLen(), "one entry per cell change")

	reloaded := newSession(store)
	require.NoError(t, reloaded.Load(ctx))
	e, ok = findElement(reloaded.Elements(), id)
	require.True(t, ok)
	assert.Equal(t, 288, e.X)

	s.Dispatch(ctx, Undo{})
	e, _ = findElement(s.Elements(), id)
	assert.Equal(t, 160, e.X)
}

func TestPointerDrag_ElementRemovedMidGesture(t *testing.T) {
	s := newSession(newMemStore())
	id := s.Dispatch(ctx, Drop{Tool: models.Tool{Type: "chair"}, X: 10, Y: 10}).Placed[0]

	s.Dispatch(ctx, pointer(interaction.PointerDown, interaction.ButtonPrimary, 32, 32))
	s.Dispatch(ctx, Remove{ID: id})
	res := s.Dispatch(ctx, pointer(interaction.PointerMove, interaction.ButtonPrimary, 150, 150))

	assert.Empty(t, res.Moved)
	assert.Empty(t, s.Elements())
	s.Dispatch(ctx, pointer(interaction.PointerUp, interaction.ButtonPrimary, 150, 150))
	assert.Equal(t, interaction.Idle, s.Gesture())
}

func findElement(elems []models.PlacedElement, id string) (models.PlacedElement, bool) {
	for _, e := range elems {
		if e.ID == id {
			return e, true
		}
	}
	return models.PlacedElement{}, false
}
