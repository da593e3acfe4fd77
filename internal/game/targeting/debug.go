package targeting

import (
	"log/slog"

	"github.com/udisondev/gamekit/internal/model"
)

// DebugDrawer draws targeting helpers. Purely cosmetic.
type DebugDrawer interface {
	Line(from, to model.Vector, valid bool)
	Sphere(center model.Vector, radius float64, valid bool)
	Circle(center model.Vector, radius float64)
}

// LogDrawer writes debug shapes to a logger at debug level.
type LogDrawer struct {
	logger *slog.Logger
}

// NewLogDrawer creates a drawer writing to logger, slog.Default when nil.
func NewLogDrawer(logger *slog.Logger) *LogDrawer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogDrawer{logger: logger.With("component", "targeting")}
}

func (d *LogDrawer) Line(from, to model.Vector, valid bool) {
	d.logger.Debug("draw line", "from", from, "to", to, "valid", valid)
}

func (d *LogDrawer) Sphere(center model.Vector, radius float64, valid bool) {
	d.logger.Debug("draw sphere", "center", center, "radius", radius, "valid", valid)
}

func (d *LogDrawer) Circle(center model.Vector, radius float64) {
	d.logger.Debug("draw circle", "center", center, "radius", radius)
}
