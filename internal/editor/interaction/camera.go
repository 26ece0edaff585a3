package interaction

import (
	"math"

	"floorplan-editor/internal/editor/models"
)

// ============================================================
// Camera
// ============================================================

// ScreenToWorld переводит точку поверхности в мировые координаты.
func ScreenToWorld(cam models.Camera, x, y float64) (float64, float64) {
	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return cam.ScrollX + x/zoom, cam.ScrollY + y/zoom
}

// pan сдвигает камеру на экранную дельту указателя с учётом масштаба.
func pan(cam models.Camera, dx, dy float64) models.Camera {
	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	cam.ScrollX -= dx / zoom
	cam.ScrollY -= dy / zoom
	return cam
}

// zoomBy меняет масштаб на шаг в направлении колеса и ограничивает его.
func zoomBy(cam models.Camera, deltaY float64, cfg Config) models.Camera {
	switch {
	case deltaY > 0:
		cam.Zoom -= cfg.ZoomStep
	case deltaY < 0:
		cam.Zoom += cfg.ZoomStep
	default:
		return cam
	}
	cam.Zoom = math.Round(cam.Zoom*1000) / 1000
	cam.Zoom = math.Max(cfg.ZoomMin, math.Min(cfg.ZoomMax, cam.Zoom))
	return cam
}
