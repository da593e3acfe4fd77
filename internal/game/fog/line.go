package fog

// lineIterator steps through grid cells along a line with Bresenham's algorithm.
type lineIterator struct {
	currentX, currentY int
	targetX, targetY   int
	deltaX, deltaY     int
	stepX, stepY       int
	err                int
	xDominant          bool
	started            bool
}

func newLineIterator(sx, sy, ex, ey int) *lineIterator {
	it := &lineIterator{
		currentX: sx, currentY: sy,
		targetX: ex, targetY: ey,
		deltaX: abs(ex - sx),
		deltaY: abs(ey - sy),
		stepX:  1,
		stepY:  1,
	}
	if sx > ex {
		it.stepX = -1
	}
	if sy > ey {
		it.stepY = -1
	}

	it.xDominant = it.deltaX >= it.deltaY
	if it.xDominant {
		it.err = it.deltaX / 2
	} else {
		it.err = it.deltaY / 2
	}
	return it
}

// Next advances to the next cell. The first call yields the start cell.
// Returns false once the target was yielded.
func (it *lineIterator) Next() bool {
	if !it.started {
		it.started = true
		return true
	}
	if it.currentX == it.targetX && it.currentY == it.targetY {
		return false
	}

	if it.xDominant {
		it.currentX += it.stepX
		it.err += it.deltaY
		if it.err >= it.deltaX {
			it.currentY += it.stepY
			it.err -= it.deltaX
		}
	} else {
		it.currentY += it.stepY
		it.err += it.deltaX
		if it.err >= it.deltaY {
			it.currentX += it.stepX
			it.err -= it.deltaY
		}
	}
	return true
}

func (it *lineIterator) X() int { return it.currentX }

func (it *lineIterator) Y() int { return it.currentY }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
