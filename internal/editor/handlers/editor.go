package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"floorplan-editor/internal/common/middleware"
	"floorplan-editor/internal/editor/catalog"
	"floorplan-editor/internal/editor/export"
	"floorplan-editor/internal/editor/models"
	"floorplan-editor/internal/editor/service"
	"floorplan-editor/internal/editor/session"

	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Editor Handler
// ============================================================

// LayoutLister перечисляет сохранённые раскладки.
type LayoutLister interface {
	List(ctx context.Context, prefix string) ([]string, error)
}

type EditorHandler struct {
	hub     *service.Hub
	catalog *catalog.Catalog
	exports *service.ExportStorage
	layouts LayoutLister
}

func NewEditorHandler(hub *service.Hub, cat *catalog.Catalog, exports *service.ExportStorage, layouts LayoutLister) *EditorHandler {
	return &EditorHandler{
		hub:     hub,
		catalog: cat,
		exports: exports,
		layouts: layouts,
	}
}

// Register вешает маршруты редактора на router.
func (h *EditorHandler) Register(r fiber.Router) {
	r.Get("/catalog", h.Catalog)
	r.Get("/layouts", h.ListLayouts)

	layout := r.Group("/layouts/:id", h.requireLayoutID)
	layout.Get("/", h.GetLayout)
	layout.Post("/pointer", h.Pointer)
	layout.Post("/wheel", h.Wheel)
	layout.Post("/drop", h.Drop)
	layout.Post("/tool", h.SelectTool)
	layout.Post("/delete-mode", h.simple(session.ToggleDeleteMode{}))
	layout.Post("/clear", h.simple(session.ClearSelectedOnly{}))
	layout.Post("/clear-all", h.simple(session.ClearAll{}))
	layout.Post("/undo", h.simple(session.Undo{}))
	layout.Post("/redo", h.simple(session.Redo{}))
	layout.Post("/select", h.Select)
	layout.Post("/save", h.Save)

	layout.Post("/elements/:eid/move", h.Move)
	layout.Post("/elements/:eid/duplicate", h.Duplicate)
	layout.Post("/elements/:eid/rotate", h.Rotate)
	layout.Delete("/elements/:eid", h.Remove)

	layout.Get("/export", h.Export)
	layout.Get("/export.svg", h.ExportSVG)
	layout.Post("/export", h.SaveExport)
}

func (h *EditorHandler) requireLayoutID(c fiber.Ctx) error {
	id := c.Params("id")
	if !layoutIDPattern.MatchString(id) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid layout id"})
	}
	c.Locals(middleware.LayoutLocal, id)
	return c.Next()
}

// ============================================================
// Palette and layouts
// ============================================================

func (h *EditorHandler) Catalog(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"gridSize": h.catalog.GridSize(),
		"elements": h.catalog.Entries(),
	})
}

// ListLayouts объединяет сохранённые и открытые раскладки.
func (h *EditorHandler) ListLayouts(c fiber.Ctx) error {
	seen := map[string]bool{}
	for _, id := range h.hub.Layouts() {
		seen[id] = true
	}
	if h.layouts != nil {
		names, err := h.layouts.List(c.Context(), session.BlobKey(""))
		if err != nil {
			log.Printf("[EDITOR] list layouts: %v", err)
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list layouts"})
		}
		for _, name := range names {
			seen[strings.TrimPrefix(name, session.BlobKey(""))] = true
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return c.JSON(fiber.Map{"layouts": ids})
}

func (h *EditorHandler) GetLayout(c fiber.Ctx) error {
	id := c.Params("id")
	var view session.View
	err := h.hub.Read(c.Context(), id, func(s *session.Session) {
		view = s.View()
	})
	if err != nil {
		return hubError(c, err)
	}
	rev, err := h.hub.Revision(c.Context(), id)
	if err != nil {
		return hubError(c, err)
	}
	c.Set(middleware.RevisionHeader, strconv.FormatUint(rev, 10))
	return c.JSON(view)
}

// ============================================================
// Pointer and palette intents
// ============================================================

func (h *EditorHandler) Pointer(c fiber.Ctx) error {
	var req pointerRequest
	if err := decode(c.Body(), &req); err != nil {
		return badRequest(c, err)
	}
	ev, err := req.event()
	if err != nil {
		return badRequest(c, err)
	}
	return h.dispatch(c, session.Pointer{Event: ev})
}

func (h *EditorHandler) Wheel(c fiber.Ctx) error {
	var req wheelRequest
	if err := decode(c.Body(), &req); err != nil {
		return badRequest(c, err)
	}
	return h.dispatch(c, session.Wheel{DeltaY: req.DeltaY})
}

// Drop размещает элемент палитры в точке поверхности.
func (h *EditorHandler) Drop(c fiber.Ctx) error {
	tool, raw, err := parseTool(c.Body())
	if err != nil {
		return badRequest(c, err)
	}
	tool = h.withCatalogDepth(tool, raw)
	x, okX := floatField(raw, "x")
	y, okY := floatField(raw, "y")
	if !okX || !okY {
		return badRequest(c, errors.New("x and y required"))
	}
	return h.dispatch(c, session.Drop{Tool: tool, X: x, Y: y})
}

// SelectTool выбирает инструмент. Пустое тело или пустой type снимают выбор.
func (h *EditorHandler) SelectTool(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return h.dispatch(c, session.SelectTool{})
	}
	tool, raw, err := parseTool(c.Body())
	if err != nil {
		return badRequest(c, err)
	}
	return h.dispatch(c, session.SelectTool{Tool: h.withCatalogDepth(tool, raw)})
}

func (h *EditorHandler) simple(in session.Intent) fiber.Handler {
	return func(c fiber.Ctx) error {
		return h.dispatch(c, in)
	}
}

func (h *EditorHandler) Save(c fiber.Ctx) error {
	res, err := h.hub.Do(c.Context(), c.Params("id"), session.Save{})
	if err != nil {
		return hubError(c, err)
	}
	if res.Notice == session.NoticeSaveFailed {
		return c.Status(http.StatusServiceUnavailable).JSON(res)
	}
	return c.JSON(res)
}

// ============================================================
// Inspector intents
// ============================================================

func (h *EditorHandler) Select(c fiber.Ctx) error {
	var req selectRequest
	if len(c.Body()) > 0 {
		if err := decode(c.Body(), &req); err != nil {
			return badRequest(c, err)
		}
	}
	return h.dispatch(c, session.Select{ID: req.ID})
}

func (h *EditorHandler) Move(c fiber.Ctx) error {
	var req pointRequest
	if err := decode(c.Body(), &req); err != nil {
		return badRequest(c, err)
	}
	x, y, err := req.point()
	if err != nil {
		return badRequest(c, err)
	}
	return h.dispatch(c, session.Move{ID: c.Params("eid"), X: x, Y: y})
}

func (h *EditorHandler) Duplicate(c fiber.Ctx) error {
	return h.dispatch(c, session.Duplicate{ID: c.Params("eid")})
}

func (h *EditorHandler) Rotate(c fiber.Ctx) error {
	return h.dispatch(c, session.Rotate{ID: c.Params("eid")})
}

func (h *EditorHandler) Remove(c fiber.Ctx) error {
	return h.dispatch(c, session.Remove{ID: c.Params("eid")})
}

// ============================================================
// Export
// ============================================================

// Export отдаёт документ выгрузки как файл canvas-layout.json.
func (h *EditorHandler) Export(c fiber.Ctx) error {
	var doc models.ExportDocument
	if err := h.hub.Read(c.Context(), c.Params("id"), func(s *session.Session) {
		doc = s.Export()
	}); err != nil {
		return hubError(c, err)
	}

	data, err := export.MarshalDocument(doc)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set("Content-Type", "application/json")
	c.Set("Content-Disposition", `attachment; filename="`+models.ExportFilename+`"`)
	return c.Send(data)
}

func (h *EditorHandler) ExportSVG(c fiber.Ctx) error {
	var (
		svg       string
		renderErr error
	)
	if err := h.hub.Read(c.Context(), c.Params("id"), func(s *session.Session) {
		svg, renderErr = s.RenderSVG()
	}); err != nil {
		return hubError(c, err)
	}
	if renderErr != nil {
		log.Printf("[EDITOR] render %s: %v", c.Params("id"), renderErr)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": renderErr.Error()})
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg)
}

// SaveExport пишет JSON и SVG выгрузки в каталог экспорта.
func (h *EditorHandler) SaveExport(c fiber.Ctx) error {
	id := c.Params("id")

	var (
		doc       models.ExportDocument
		svg       string
		renderErr error
	)
	if err := h.hub.Read(c.Context(), id, func(s *session.Session) {
		doc = s.Export()
		svg, renderErr = s.RenderSVG()
	}); err != nil {
		return hubError(c, err)
	}
	if renderErr != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": renderErr.Error()})
	}

	jsonPath, err := h.exports.SaveDocument(id, doc)
	if err != nil {
		log.Printf("[EDITOR] export %s: %v", id, err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to write export"})
	}
	svgPath, err := h.exports.SaveSVG(id, svg)
	if err != nil {
		log.Printf("[EDITOR] export %s: %v", id, err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to write export"})
	}

	log.Printf("[EDITOR] exported %s: %d elements", id, len(doc.Elements))
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"json":       jsonPath,
		"svg":        svgPath,
		"exportDate": doc.ExportDate,
	})
}

// ============================================================
// Helpers
// ============================================================

func (h *EditorHandler) dispatch(c fiber.Ctx, in session.Intent) error {
	res, err := h.hub.Do(c.Context(), c.Params("id"), in)
	if err != nil {
		return hubError(c, err)
	}
	if res.Rejected {
		return c.Status(http.StatusConflict).JSON(res)
	}
	return c.JSON(res)
}

// withCatalogDepth берёт глубину из палитры, если в теле нет ключа depth.
// Явный depth, в том числе 0, не трогаем.
func (h *EditorHandler) withCatalogDepth(tool models.Tool, raw map[string]any) models.Tool {
	if _, ok := raw["depth"]; ok {
		return tool
	}
	if entry, ok := h.catalog.Lookup(tool.Type); ok {
		tool.Depth = entry.Tool().Depth
	}
	return tool
}

func badRequest(c fiber.Ctx, err error) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func hubError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrClosed):
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "editor is shutting down"})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return c.Status(http.StatusGatewayTimeout).JSON(fiber.Map{"error": "request timed out"})
	}
	log.Printf("[EDITOR] hub error: %v", err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
