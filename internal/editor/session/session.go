package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"floorplan-editor/internal/editor/catalog"
	"floorplan-editor/internal/editor/export"
	"floorplan-editor/internal/editor/grid"
	"floorplan-editor/internal/editor/history"
	"floorplan-editor/internal/editor/interaction"
	"floorplan-editor/internal/editor/models"
	"floorplan-editor/internal/editor/registry"
)

// ============================================================
// Canvas Session
// ============================================================

// Notices for no-op and rejected intents.
const (
	NoticeNothingToUndo = "nothing to undo"
	NoticeNothingToRedo = "nothing to redo"
	NoticeDeleteMode    = "delete mode is active: placement rejected"
	NoticeNotFound      = "element not found"
	NoticeNoSelection   = "no element selected"
	NoticeNoRotation    = "rotation is not implemented"
	NoticeEmptyType     = "drop payload has no element type"
	NoticeReentrant     = "dispatch rejected: another intent is being applied"
	NoticeSaveFailed    = "save failed; changes are kept in memory"
)

type Config struct {
	Key         string
	GridSize    int
	Canvas      models.CanvasConfig
	Interaction interaction.Config
}

// View содержит снимок состояния для отрисовки.
type View struct {
	Elements   []models.PlacedElement `json:"elements"`
	Camera     models.Camera          `json:"camera"`
	Gesture    string                 `json:"gesture"`
	DeleteMode bool                   `json:"deleteMode"`
	Tool       *models.Tool           `json:"tool,omitempty"`
	Selected   string                 `json:"selected,omitempty"`
	CanUndo    bool                   `json:"canUndo"`
	CanRedo    bool                   `json:"canRedo"`
	Dirty      bool                   `json:"dirty"`
}

// Result описывает итог обработки одного интента.
type Result struct {
	View
	Changed  bool     `json:"changed"`
	Placed   []string `json:"placed,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Moved    []string `json:"moved,omitempty"`
	Notice   string   `json:"notice,omitempty"`
	Rejected bool     `json:"rejected,omitempty"`
}

// Session владеет реестром, историей и автоматом взаимодействия одной раскладки.
// Не потокобезопасна: все вызовы должны идти из одного потока событий.
type Session struct {
	cfg     Config
	store   Store
	catalog *catalog.Catalog
	reg     *registry.Registry
	hist    *history.Log
	machine *interaction.Machine

	selected    string
	dirty       bool
	dispatching bool
	observers   []func(Result)
	now         func() time.Time
}

// Option настраивает Session.
type Option func(*Session)

// WithClock подменяет источник времени (выгрузка).
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func New(cfg Config, store Store, cat *catalog.Catalog, opts ...Option) *Session {
	if cfg.GridSize <= 0 {
		cfg.GridSize = grid.DefaultSize
	}
	if cfg.Interaction == (interaction.Config{}) {
		cfg.Interaction = interaction.DefaultConfig()
	}
	if cfg.Canvas.GridSize <= 0 {
		cfg.Canvas.GridSize = cfg.GridSize
	}
	if cat == nil {
		cat = catalog.Default()
	}

	s := &Session{
		cfg:     cfg,
		store:   store,
		catalog: cat,
		reg:     registry.New(),
		hist:    history.New(),
		machine: interaction.NewMachine(cfg.Interaction),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load читает сохранённую раскладку один раз при старте сессии.
// Если записи нет, раскладка остаётся пустой.
func (s *Session) Load(ctx context.Context) error {
	data, err := s.store.Load(ctx, s.cfg.Key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", s.cfg.Key, err)
	}

	elements, err := Decode(data)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.cfg.Key, err)
	}
	for i := range elements {
		elements[i] = s.resolveFootprint(elements[i])
	}

	s.reg.Restore(elements)
	s.hist.Reset(s.reg.All())
	log.Printf("[EDITOR] loaded %s: %d elements", s.cfg.Key, s.reg.Len())
	return nil
}

// OnChange регистрирует наблюдателя изменений (перерисовка поверхности).
// Наблюдатель вызывается внутри Dispatch и не может сам вызывать Dispatch.
func (s *Session) OnChange(fn func(Result)) {
	s.observers = append(s.observers, fn)
}

// ============================================================
// Dispatch
// ============================================================

// Dispatch применяет один интент. Вложенный вызов отклоняется.
func (s *Session) Dispatch(ctx context.Context, in Intent) Result {
	if s.dispatching {
		log.Printf("[EDITOR] %s: re-entrant %T rejected", s.cfg.Key, in)
		return Result{View: s.View(), Rejected: true, Notice: NoticeReentrant}
	}
	s.dispatching = true
	defer func() { s.dispatching = false }()

	res := s.apply(ctx, in)
	res.View = s.View()

	if res.Changed {
		for _, fn := range s.observers {
			fn(res)
		}
	}
	return res
}

func (s *Session) apply(ctx context.Context, in Intent) Result {
	switch in := in.(type) {
	case Pointer:
		before := s.selected
		res := outcome(s.machine.Handle(in.Event, &target{s: s, ctx: ctx}))
		res.Changed = res.Changed || before != s.selected
		return res

	case Wheel:
		return outcome(s.machine.Wheel(in.DeltaY))

	case Drop:
		return s.drop(ctx, in)

	case SelectTool:
		if in.Tool.Type == "" {
			s.machine.SetTool(nil)
			return Result{Changed: true}
		}
		tool := s.resolveTool(in.Tool)
		s.machine.SetTool(&tool)
		return Result{Changed: true}

	case ToggleDeleteMode, ClearSelectedOnly:
		s.machine.SetDeleteMode(!s.machine.DeleteMode())
		return Result{Changed: true}

	case ClearAll:
		return s.clearAll(ctx)

	case Undo:
		snap, ok := s.hist.Undo()
		if !ok {
			return Result{Notice: NoticeNothingToUndo}
		}
		s.restore(ctx, snap)
		return Result{Changed: true}

	case Redo:
		snap, ok := s.hist.Redo()
		if !ok {
			return Result{Notice: NoticeNothingToRedo}
		}
		s.restore(ctx, snap)
		return Result{Changed: true}

	case Select:
		if in.ID == "" {
			s.selected = ""
			return Result{Changed: true}
		}
		if _, ok := s.reg.Get(in.ID); !ok {
			return Result{Notice: NoticeNotFound}
		}
		s.selected = in.ID
		return Result{Changed: true}

	case Remove:
		id := in.ID
		if id == "" {
			id = s.selected
		}
		if id == "" {
			return Result{Notice: NoticeNoSelection}
		}
		if !s.remove(ctx, id) {
			return Result{Notice: NoticeNotFound}
		}
		return Result{Changed: true, Removed: []string{id}}

	case Duplicate:
		return s.duplicate(ctx, in.ID)

	case Move:
		return s.move(ctx, in)

	case Rotate:
		return Result{Notice: NoticeNoRotation}

	case Save:
		if in.OnlyDirty && !s.dirty {
			return Result{}
		}
		if err := s.persist(ctx); err != nil {
			return Result{Notice: NoticeSaveFailed}
		}
		return Result{}
	}

	return Result{}
}

func outcome(out interaction.Outcome) Result {
	return Result{
		Changed: len(out.Placed) > 0 || len(out.Removed) > 0 || len(out.Moved) > 0 || out.Selected != "" || out.CameraMoved,
		Placed:  out.Placed,
		Removed: out.Removed,
		Moved:   out.Moved,
	}
}

// ============================================================
// Intents with registry effects
// ============================================================

func (s *Session) drop(ctx context.Context, in Drop) Result {
	if s.machine.DeleteMode() {
		return Result{Rejected: true, Notice: NoticeDeleteMode}
	}
	if in.Tool.Type == "" {
		return Result{Notice: NoticeEmptyType}
	}

	wx, wy := s.machine.ToWorld(in.X, in.Y)
	id := s.place(ctx, s.resolveTool(in.Tool), wx, wy)
	return Result{Changed: true, Placed: []string{id}}
}

func (s *Session) clearAll(ctx context.Context) Result {
	removed := make([]string, 0, s.reg.Len())
	for _, e := range s.reg.All() {
		removed = append(removed, e.ID)
	}

	s.reg.Restore(nil)
	s.hist.Clear()
	s.selected = ""

	if err := s.store.Delete(ctx, s.cfg.Key); err != nil {
		log.Printf("[EDITOR] clear %s: %v", s.cfg.Key, err)
		s.dirty = true
	} else {
		s.dirty = false
	}
	return Result{Changed: true, Removed: removed}
}

func (s *Session) duplicate(ctx context.Context, id string) Result {
	if id == "" {
		id = s.selected
	}
	src, ok := s.reg.Get(id)
	if !ok {
		return Result{Notice: NoticeNotFound}
	}

	step := s.cfg.GridSize
	newID := s.reg.Insert(src.Type, src.X+step, src.Y+step, src.Depth, src.Footprint())
	s.commit(ctx)
	s.selected = newID
	return Result{Changed: true, Placed: []string{newID}}
}

func (s *Session) move(ctx context.Context, in Move) Result {
	moved, exists := s.moveElement(ctx, in.ID, in.X, in.Y)
	if !exists {
		return Result{Notice: NoticeNotFound}
	}
	if !moved {
		return Result{}
	}
	return Result{Changed: true, Moved: []string{in.ID}}
}

// ============================================================
// Mutations
// ============================================================

func (s *Session) place(ctx context.Context, tool models.Tool, wx, wy float64) string {
	fp := tool.Footprint()
	x, y := grid.SnapFootprint(wx, wy, fp, s.cfg.GridSize)
	id := s.reg.Insert(tool.Type, x, y, tool.Depth, fp)
	s.commit(ctx)
	return id
}

// moveElement привязывает точку по footprint элемента. Каждая смена ячейки
// фиксируется в истории; та же ячейка ничего не меняет.
func (s *Session) moveElement(ctx context.Context, id string, wx, wy float64) (moved, exists bool) {
	e, ok := s.reg.Get(id)
	if !ok {
		return false, false
	}

	x, y := grid.SnapFootprint(wx, wy, e.Footprint(), s.cfg.GridSize)
	if x == e.X && y == e.Y {
		return false, true
	}
	if !s.reg.MoveTo(id, x, y) {
		return false, false
	}
	s.commit(ctx)
	return true, true
}

func (s *Session) remove(ctx context.Context, id string) bool {
	if !s.reg.Remove(id) {
		return false
	}
	if s.selected == id {
		s.selected = ""
	}
	s.commit(ctx)
	return true
}

func (s *Session) restore(ctx context.Context, snap history.Snapshot) {
	s.reg.Restore(snap)
	if _, ok := s.reg.Get(s.selected); !ok {
		s.selected = ""
	}
	_ = s.persist(ctx)
}

// commit фиксирует мутацию: запись в историю и в хранилище.
// Ошибка хранилища не откатывает состояние в памяти.
func (s *Session) commit(ctx context.Context) {
	s.hist.Record(s.reg.All())
	_ = s.persist(ctx)
}

func (s *Session) persist(ctx context.Context) error {
	data, err := Encode(s.reg.All())
	if err == nil {
		err = s.store.Save(ctx, s.cfg.Key, data)
	}
	if err != nil {
		log.Printf("[EDITOR] persist %s: %v", s.cfg.Key, err)
		s.dirty = true
		return err
	}
	s.dirty = false
	return nil
}

// ============================================================
// Footprint resolution
// ============================================================

// resolveTool дополняет payload палитры: заявленный размер, затем каталог,
// затем размер ячейки.
func (s *Session) resolveTool(t models.Tool) models.Tool {
	known := s.catalog.Footprint(t.Type, s.cfg.GridSize)
	if t.Width <= 0 {
		t.Width = known.Width
	}
	if t.Height <= 0 {
		t.Height = known.Height
	}
	return t
}

func (s *Session) resolveFootprint(e models.PlacedElement) models.PlacedElement {
	known := s.catalog.Footprint(e.Type, s.cfg.GridSize)
	if e.Width <= 0 {
		e.Width = known.Width
	}
	if e.Height <= 0 {
		e.Height = known.Height
	}
	return e
}

// ============================================================
// Read side
// ============================================================

// View возвращает снимок состояния для отрисовки.
func (s *Session) View() View {
	v := View{
		Elements:   s.reg.All(),
		Camera:     s.machine.Camera(),
		Gesture:    s.machine.Gesture().String(),
		DeleteMode: s.machine.DeleteMode(),
		Selected:   s.selected,
		CanUndo:    s.hist.CanUndo(),
		CanRedo:    s.hist.CanRedo(),
		Dirty:      s.dirty,
	}
	if tool, ok := s.machine.Tool(); ok {
		v.Tool = &tool
	}
	return v
}

// Elements возвращает упорядоченный снимок реестра.
func (s *Session) Elements() []models.PlacedElement {
	return s.reg.All()
}

// Export собирает документ выгрузки. Состояние не меняет.
func (s *Session) Export() models.ExportDocument {
	return export.NewDocument(s.reg.All(), s.now())
}

// RenderSVG рисует текущую раскладку.
func (s *Session) RenderSVG() (string, error) {
	return export.NewRenderer(s.catalog, s.cfg.Canvas).Render(s.reg.All())
}

func (s *Session) Key() string                  { return s.cfg.Key }
func (s *Session) Dirty() bool                  { return s.dirty }
func (s *Session) HistoryLen() int              { return s.hist.Len() }
func (s *Session) Gesture() interaction.Gesture { return s.machine.Gesture() }
func (s *Session) Camera() models.Camera        { return s.machine.Camera() }
