package export

import (
	"encoding/json"
	"time"

	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Export document
// ============================================================

// NewDocument собирает документ выгрузки из снимка реестра.
func NewDocument(elements []models.PlacedElement, now time.Time) models.ExportDocument {
	out := make([]models.PlacedElement, len(elements))
	copy(out, elements)
	return models.ExportDocument{
		Elements:   out,
		ExportDate: now.UTC().Format(time.RFC3339),
	}
}

// MarshalDocument форматирует документ с отступами, как файл для скачивания.
func MarshalDocument(doc models.ExportDocument) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
