package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"floorplan-editor/internal/editor/models"
)

// ErrNotFound возвращается хранилищем, если записи нет.
var ErrNotFound = errors.New("not found")

// Store абстрагирует хранилище blob-записей.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// BlobKey возвращает имя записи раскладки в хранилище.
func BlobKey(layoutID string) string {
	return "canvas-layout:" + layoutID
}

// Encode сериализует раскладку в JSON массив.
func Encode(elements []models.PlacedElement) ([]byte, error) {
	if elements == nil {
		elements = []models.PlacedElement{}
	}
	return json.Marshal(elements)
}

// Decode разбирает JSON массив раскладки.
func Decode(data []byte) ([]models.PlacedElement, error) {
	var elements []models.PlacedElement
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return elements, nil
}
