// Package selection implements drag-box selection of units under the cursor.
package selection

import (
	"slices"

	"github.com/udisondev/gamekit/internal/game/targeting"
	"github.com/udisondev/gamekit/internal/model"
)

// Overlapper finds actors overlapping an axis-aligned box.
type Overlapper interface {
	ActorsInBox(center, extent model.Vector) []*model.Actor
}

// Box is an axis-aligned box.
type Box struct {
	Min, Max model.Vector
}

// BoxFromPoints returns the smallest box containing a and b.
func BoxFromPoints(a, b model.Vector) Box {
	return Box{
		Min: model.NewVector(min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)),
		Max: model.NewVector(max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)),
	}
}

// Center returns the box centre.
func (b Box) Center() model.Vector {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box dimensions.
func (b Box) Size() model.Vector {
	return b.Max.Sub(b.Min)
}

// Extent returns half the size.
func (b Box) Extent() model.Vector {
	return b.Size().Scale(0.5)
}

// BoxSelection tracks a selection box dragged on the ground with the cursor.
//
// Not safe for concurrent use: driven by the world tick.
type BoxSelection struct {
	// ObjectTypes are selected, pawns by default.
	ObjectTypes []model.ObjectType
	// TraceTypes are hit by the cursor trace, the ground by default.
	TraceTypes []model.ObjectType
	// ExtentMargin is added to the box extent when fetching, so units standing
	// above or below the traced ground are still selected.
	ExtentMargin model.Vector
	// Ignore lists actors never selected.
	Ignore []*model.Actor

	selecting  bool
	start, end model.Vector
	box        Box
}

// NewBoxSelection creates a selection of pawns with a vertical margin of 100.
func NewBoxSelection() *BoxSelection {
	return &BoxSelection{
		ObjectTypes:  []model.ObjectType{model.ObjectPawn},
		TraceTypes:   []model.ObjectType{model.ObjectWorldStatic},
		ExtentMargin: model.NewVector(0, 0, 100),
	}
}

// IsSelecting returns true between Start and End.
func (s *BoxSelection) IsSelecting() bool {
	return s.selecting
}

// Start anchors the box at the ground under the cursor. Returns false and
// does not start when the cursor hits nothing.
func (s *BoxSelection) Start(tracer targeting.CursorTracer) bool {
	if tracer == nil {
		return false
	}
	hit, ok := tracer.HitUnderCursor(s.TraceTypes)
	if !ok {
		return false
	}
	s.start = hit.ImpactPoint
	s.end = s.start
	s.box = BoxFromPoints(s.start, s.start)
	s.selecting = true
	return true
}

// Update stretches the box to the ground under the cursor. The box is kept
// when the cursor hits nothing.
func (s *BoxSelection) Update(tracer targeting.CursorTracer) {
	if !s.selecting || tracer == nil {
		return
	}
	hit, ok := tracer.HitUnderCursor(s.TraceTypes)
	if !ok {
		return
	}
	s.end = hit.ImpactPoint
	s.box = BoxFromPoints(s.start, s.end)
}

// Fetch returns the actors of ObjectTypes overlapping the box grown by
// ExtentMargin, nearest to the box centre first. Nil when not selecting.
func (s *BoxSelection) Fetch(w Overlapper) []*model.Actor {
	if !s.selecting || w == nil {
		return nil
	}
	found := w.ActorsInBox(s.box.Center(), s.box.Extent().Add(s.ExtentMargin))
	return slices.DeleteFunc(found, func(a *model.Actor) bool {
		return !slices.Contains(s.ObjectTypes, a.ObjectType()) || slices.Contains(s.Ignore, a)
	})
}

// End stops selecting. The last box stays readable.
func (s *BoxSelection) End() {
	s.selecting = false
}

// Box returns the current box.
func (s *BoxSelection) Box() Box {
	return s.box
}

// Draw outlines the box and marks both corners.
func (s *BoxSelection) Draw(d targeting.DebugDrawer) {
	if !s.selecting || d == nil {
		return
	}
	d.Sphere(s.start, 10, true)
	d.Sphere(s.end, 10, true)

	lo, hi := s.box.Min, s.box.Max
	corners := []model.Vector{
		model.NewVector(lo.X, lo.Y, lo.Z),
		model.NewVector(hi.X, lo.Y, lo.Z),
		model.NewVector(hi.X, hi.Y, lo.Z),
		model.NewVector(lo.X, hi.Y, lo.Z),
	}
	for i, c := range corners {
		d.Line(c, corners[(i+1)%len(corners)], true)
	}
}
