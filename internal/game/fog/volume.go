// Package fog computes per-faction fog of war on a texture-sized grid.
//
// The volume recomputes on its own goroutine. Components may be registered
// and unregistered from the game loop at any time.
package fog

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/gamekit/internal/model"
)

// ErrInvalidConfig is returned by New for non-positive sizes.
var ErrInvalidConfig = errors.New("invalid fog config")

// Config describes the fog volume.
type Config struct {
	// MapSizeX and MapSizeY are the world extents covered, centred on the origin.
	MapSizeX float64 `yaml:"map_size_x"`
	MapSizeY float64 `yaml:"map_size_y"`
	// TextureScale is the number of texture cells per world unit.
	TextureScale    float64 `yaml:"texture_scale"`
	FramesPerSecond float64 `yaml:"frames_per_second"`
	Exploration     bool    `yaml:"exploration"`
}

// DefaultConfig returns a 16384x16384 map at one cell per 64 units.
func DefaultConfig() Config {
	return Config{
		MapSizeX:        16384,
		MapSizeY:        16384,
		TextureScale:    1.0 / 64,
		FramesPerSecond: 10,
		Exploration:     true,
	}
}

// Component reveals the fog around an actor for its faction.
type Component struct {
	Actor       *model.Actor
	Faction     string
	SightRadius float64
	// Obstructed enables line of sight against the blocking grid.
	Obstructed bool
}

// Volume owns the visibility and exploration grids.
type Volume struct {
	cfg           Config
	width, height int

	mu         sync.Mutex
	components []*Component
	blocking   []bool

	gridMu   sync.RWMutex
	visible  map[string][]bool
	explored map[string][]bool

	enabled atomic.Bool
	frames  atomic.Uint64
}

// New creates an enabled volume.
func New(cfg Config) (*Volume, error) {
	if cfg.MapSizeX <= 0 || cfg.MapSizeY <= 0 || cfg.TextureScale <= 0 {
		return nil, ErrInvalidConfig
	}
	w := int(math.Ceil(cfg.MapSizeX * cfg.TextureScale))
	h := int(math.Ceil(cfg.MapSizeY * cfg.TextureScale))

	v := &Volume{
		cfg:      cfg,
		width:    w,
		height:   h,
		blocking: make([]bool, w*h),
		visible:  make(map[string][]bool),
		explored: make(map[string][]bool),
	}
	v.enabled.Store(true)
	return v, nil
}

// TextureSize returns the grid dimensions.
func (v *Volume) TextureSize() (int, int) {
	return v.width, v.height
}

// TextureCoordinate maps a world location to texture space. The world origin
// is the texture centre and world +Y points up the texture.
func (v *Volume) TextureCoordinate(loc model.Vector) (float64, float64) {
	x := (loc.X/v.cfg.MapSizeX + 0.5) * float64(v.width)
	y := (0.5 - loc.Y/v.cfg.MapSizeY) * float64(v.height)
	return x, y
}

func (v *Volume) cellOf(loc model.Vector) (int, int, bool) {
	fx, fy := v.TextureCoordinate(loc)
	x, y := int(math.Floor(fx)), int(math.Floor(fy))
	return x, y, v.inBounds(x, y)
}

func (v *Volume) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < v.width && y < v.height
}

// Register adds c to the next recompute.
func (v *Volume) Register(c *Component) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.components = append(v.components, c)
}

// Unregister removes c. Unknown components are ignored.
func (v *Volume) Unregister(c *Component) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, cur := range v.components {
		if cur == c {
			v.components = append(v.components[:i], v.components[i+1:]...)
			return
		}
	}
}

// ComponentCount returns the number of registered components.
func (v *Volume) ComponentCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.components)
}

// SetBlocked marks the cell containing loc as blocking line of sight.
func (v *Volume) SetBlocked(loc model.Vector, blocked bool) {
	x, y, ok := v.cellOf(loc)
	if !ok {
		return
	}
	v.mu.Lock()
	v.blocking[y*v.width+x] = blocked
	v.mu.Unlock()
}

// SetEnabled pauses or resumes recomputation in Run.
func (v *Volume) SetEnabled(enabled bool) {
	v.enabled.Store(enabled)
}

// Enabled reports whether Run recomputes.
func (v *Volume) Enabled() bool {
	return v.enabled.Load()
}

// Frames returns the number of completed recomputes.
func (v *Volume) Frames() uint64 {
	return v.frames.Load()
}

// Run recomputes at FramesPerSecond until ctx is cancelled.
func (v *Volume) Run(ctx context.Context) error {
	fps := v.cfg.FramesPerSecond
	if fps <= 0 {
		fps = 1
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	slog.Info("fog of war started", "width", v.width, "height", v.height, "fps", fps)
	for {
		select {
		case <-ctx.Done():
			slog.Info("fog of war stopped", "frames", v.frames.Load())
			return nil
		case <-ticker.C:
			if v.enabled.Load() {
				v.Recompute()
			}
		}
	}
}

type source struct {
	faction    string
	x, y       int
	radius     float64
	obstructed bool
}

// Recompute rebuilds the visibility grids from the registered components.
func (v *Volume) Recompute() {
	v.mu.Lock()
	sources := make([]source, 0, len(v.components))
	for _, c := range v.components {
		if c.Actor == nil || c.Actor.IsPendingKill() {
			continue
		}
		x, y, ok := v.cellOf(c.Actor.Location())
		if !ok {
			continue
		}
		sources = append(sources, source{
			faction:    c.Faction,
			x:          x,
			y:          y,
			radius:     c.SightRadius * v.cfg.TextureScale,
			obstructed: c.Obstructed,
		})
	}
	blocking := make([]bool, len(v.blocking))
	copy(blocking, v.blocking)
	v.mu.Unlock()

	visible := make(map[string][]bool)
	for _, s := range sources {
		grid, ok := visible[s.faction]
		if !ok {
			grid = make([]bool, v.width*v.height)
			visible[s.faction] = grid
		}
		if s.obstructed {
			v.drawObstructed(grid, blocking, s)
		} else {
			v.drawUnobstructed(grid, s)
		}
	}

	v.gridMu.Lock()
	v.visible = visible
	if v.cfg.Exploration {
		for faction, grid := range visible {
			explored, ok := v.explored[faction]
			if !ok {
				explored = make([]bool, len(grid))
				v.explored[faction] = explored
			}
			for i, seen := range grid {
				if seen {
					explored[i] = true
				}
			}
		}
	}
	v.gridMu.Unlock()
	v.frames.Add(1)
}

// eachCell calls fn for every in-bounds cell within the sight circle of s.
func (v *Volume) eachCell(s source, fn func(x, y int)) {
	r := int(math.Ceil(s.radius))
	r2 := s.radius * s.radius
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if float64(dx*dx+dy*dy) > r2 {
				continue
			}
			x, y := s.x+dx, s.y+dy
			if v.inBounds(x, y) {
				fn(x, y)
			}
		}
	}
}

func (v *Volume) drawUnobstructed(grid []bool, s source) {
	v.eachCell(s, func(x, y int) {
		grid[y*v.width+x] = true
	})
}

// drawObstructed reveals cells with a clear line from the source. A blocking
// cell is itself visible; cells behind it are not.
func (v *Volume) drawObstructed(grid, blocking []bool, s source) {
	v.eachCell(s, func(x, y int) {
		it := newLineIterator(s.x, s.y, x, y)
		for it.Next() {
			cx, cy := it.X(), it.Y()
			if cx == x && cy == y {
				grid[y*v.width+x] = true
				return
			}
			if blocking[cy*v.width+cx] {
				return
			}
		}
	})
}

func (v *Volume) sample(explored bool, faction string, loc model.Vector) bool {
	x, y, ok := v.cellOf(loc)
	if !ok {
		return false
	}
	v.gridMu.RLock()
	defer v.gridMu.RUnlock()
	grids := v.visible
	if explored {
		grids = v.explored
	}
	grid, ok := grids[faction]
	if !ok {
		return false
	}
	return grid[y*v.width+x]
}

// IsVisible reports whether faction currently sees loc.
func (v *Volume) IsVisible(faction string, loc model.Vector) bool {
	return v.sample(false, faction, loc)
}

// IsExplored reports whether faction has ever seen loc. Always false when
// exploration is disabled.
func (v *Volume) IsExplored(faction string, loc model.Vector) bool {
	return v.sample(true, faction, loc)
}

// ClearExploration forgets everything explored by all factions.
func (v *Volume) ClearExploration() {
	v.gridMu.Lock()
	v.explored = make(map[string][]bool)
	v.gridMu.Unlock()
}
