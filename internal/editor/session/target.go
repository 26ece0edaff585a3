package session

import (
	"context"

	"floorplan-editor/internal/editor/grid"
	"floorplan-editor/internal/editor/models"
)

// target связывает автомат взаимодействия с реестром сессии на время одного интента.
type target struct {
	s   *Session
	ctx context.Context
}

func (t *target) Place(tool models.Tool, wx, wy float64, dedupe bool) (string, bool) {
	s := t.s
	tool = s.resolveTool(tool)
	if dedupe {
		x, y := grid.SnapFootprint(wx, wy, tool.Footprint(), s.cfg.GridSize)
		if _, taken := s.reg.OccupiedBy(x, y, tool.Type); taken {
			return "", false
		}
	}
	return s.place(t.ctx, tool, wx, wy), true
}

func (t *target) DeleteAt(wx, wy float64) (string, bool) {
	id, ok := t.s.reg.HitTest(wx, wy)
	if !ok {
		return "", false
	}
	return id, t.s.remove(t.ctx, id)
}

func (t *target) SelectAt(wx, wy float64) (string, bool) {
	id, ok := t.s.reg.HitTest(wx, wy)
	t.s.selected = id
	return id, ok
}

func (t *target) MoveTo(id string, wx, wy float64) (bool, bool) {
	return t.s.moveElement(t.ctx, id, wx, wy)
}
