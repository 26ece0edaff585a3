package service

import (
	"fmt"
	"os"
	"path/filepath"

	"floorplan-editor/internal/editor/export"
	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Export Storage
// ============================================================

// ExportStorage раскладывает выгрузки по каталогам раскладок.
type ExportStorage struct {
	root string
}

func NewExportStorage(root string) *ExportStorage {
	return &ExportStorage{root: root}
}

func (s *ExportStorage) LayoutDir(layoutID string) string {
	return filepath.Join(s.root, layoutID)
}

func (s *ExportStorage) JSONPath(layoutID string) string {
	return filepath.Join(s.LayoutDir(layoutID), models.ExportFilename)
}

func (s *ExportStorage) SVGPath(layoutID string) string {
	return filepath.Join(s.LayoutDir(layoutID), "canvas-layout.svg")
}

func (s *ExportStorage) EnsureDir(layoutID string) error {
	if err := os.MkdirAll(s.LayoutDir(layoutID), 0o755); err != nil {
		return fmt.Errorf("mkdir layout dir: %w", err)
	}
	return nil
}

// SaveDocument пишет JSON выгрузку и возвращает путь к файлу.
func (s *ExportStorage) SaveDocument(layoutID string, doc models.ExportDocument) (string, error) {
	data, err := export.MarshalDocument(doc)
	if err != nil {
		return "", err
	}
	return s.write(layoutID, s.JSONPath(layoutID), data)
}

// SaveSVG пишет SVG отрисовку и возвращает путь к файлу.
func (s *ExportStorage) SaveSVG(layoutID, svg string) (string, error) {
	return s.write(layoutID, s.SVGPath(layoutID), []byte(svg))
}

func (s *ExportStorage) write(layoutID, target string, data []byte) (string, error) {
	if err := s.EnsureDir(layoutID); err != nil {
		return "", err
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(target), err)
	}
	return target, nil
}
