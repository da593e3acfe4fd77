package world

import "math"

// Grid constants. The world is a square centered on the origin.
const (
	// ShiftBy - 2^N units per region side (2^11 = 2048)
	ShiftBy = 11

	// RegionSize in world units
	RegionSize = 1 << ShiftBy

	// HalfExtent is the distance from the origin to the world border.
	HalfExtent = 32768

	// Offset turns a signed region coordinate into an array index.
	Offset = HalfExtent / RegionSize

	// Regions per axis
	Regions = 2 * Offset
)

// CoordToRegionIndex converts a world location to a region index.
func CoordToRegionIndex(x, y float64) (rx, ry int32) {
	rx = int32(math.Floor(x/RegionSize)) + Offset
	ry = int32(math.Floor(y/RegionSize)) + Offset
	return rx, ry
}

// IsValidRegionIndex checks if region index is within bounds.
func IsValidRegionIndex(rx, ry int32) bool {
	return rx >= 0 && rx < Regions && ry >= 0 && ry < Regions
}

// RegionIndexToCoord returns the world location of the region center.
func RegionIndexToCoord(rx, ry int32) (x, y float64) {
	x = float64(rx-Offset)*RegionSize + RegionSize/2
	y = float64(ry-Offset)*RegionSize + RegionSize/2
	return x, y
}

// regionsCovering returns the index range of regions overlapping the square
// of half-size radius around (x, y), clamped to the grid.
func regionsCovering(x, y, radius float64) (minRX, minRY, maxRX, maxRY int32) {
	minRX, minRY = CoordToRegionIndex(x-radius, y-radius)
	maxRX, maxRY = CoordToRegionIndex(x+radius, y+radius)
	minRX, minRY = max(minRX, 0), max(minRY, 0)
	maxRX, maxRY = min(maxRX, Regions-1), min(maxRY, Regions-1)
	return minRX, minRY, maxRX, maxRY
}
