package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"floorplan-editor/internal/editor/interaction"
	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Request payloads
// ============================================================

var layoutIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

var errEmptyBody = errors.New("empty body")

type pointerRequest struct {
	Kind   string  `json:"kind"`
	Button string  `json:"button"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type wheelRequest struct {
	DeltaY float64 `json:"deltaY"`
}

type selectRequest struct {
	ID string `json:"id"`
}

type pointRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func decode(body []byte, v any) error {
	if len(body) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func (r pointerRequest) event() (interaction.PointerEvent, error) {
	kind, err := interaction.ParseKind(r.Kind)
	if err != nil {
		return interaction.PointerEvent{}, err
	}
	button, err := interaction.ParseButton(r.Button)
	if err != nil {
		return interaction.PointerEvent{}, err
	}
	return interaction.PointerEvent{Kind: kind, Button: button, X: r.X, Y: r.Y}, nil
}

func (r pointRequest) point() (float64, float64, error) {
	if r.X == nil || r.Y == nil {
		return 0, 0, errors.New("x and y required")
	}
	return *r.X, *r.Y, nil
}

// parseTool разбирает payload палитры без отказа на кривых полях:
// нечисловой размер становится нулём и позже заменяется размером ячейки.
func parseTool(body []byte) (models.Tool, map[string]any, error) {
	var raw map[string]any
	if err := decode(body, &raw); err != nil {
		return models.Tool{}, nil, err
	}

	tool := models.Tool{
		Width:  intField(raw, "footprintWidth"),
		Height: intField(raw, "footprintHeight"),
		Depth:  intField(raw, "depth"),
	}
	if typ, ok := raw["type"].(string); ok {
		tool.Type = typ
	}
	return tool, raw, nil
}

func intField(raw map[string]any, key string) int {
	if f, ok := raw[key].(float64); ok {
		return int(f)
	}
	return 0
}

func floatField(raw map[string]any, key string) (float64, bool) {
	f, ok := raw[key].(float64)
	return f, ok
}
