// Package tile implements the spherical Mercator (EPSG:3857) tile math
// shared by the scene assembler and the renderer: tile bounds, pixel
// scale, and zoom <-> resolution conversions.
//
// Grounded in the TMS Global Mercator profile, adapted from its
// bottom-left-origin convention to the top-left-origin XYZ convention
// slippy maps use.
package tile

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

import (
	"fmt"
	"math"

	"github.com/railwayhistory/railmap/internal/geom"
)

const (
	// PixelSize is the nominal CSS pixel size of a tile (256), matching
	// the slippy-map convention. Internal rendering resolution is twice
	// that (see RasterSize) to match the HTML client's tilePixelRatio: 2.
	PixelSize = 256
	// RasterSize is the actual pixel width/height of an encoded tile.
	RasterSize = PixelSize * TilePixelRatio
	// TilePixelRatio is the oversampling factor baked into every encoded
	// tile.
	TilePixelRatio = 2

	earthRadiusMeters = 6378137.0
	// originShift is half the circumference of the earth in meters; the
	// Mercator plane spans [-originShift, originShift] on both axes.
	originShift = math.Pi * earthRadiusMeters
)

// Circumference is the full circumference of the earth in meters at the
// equator, used to derive the per-zoom pixel scale.
const Circumference = 2 * originShift

// Coord identifies a single tile request.
type Coord struct {
	Z, X, Y int
}

// Valid reports whether z is in [0,17] and (x,y) fall in [0, 2^z).
func (c Coord) Valid() bool {
	if c.Z < 0 || c.Z > 17 {
		return false
	}
	n := 1 << uint(c.Z)
	return c.X >= 0 && c.X < n && c.Y >= 0 && c.Y < n
}

// String renders the coordinate in z/x/y form, used as part of cache keys.
func (c Coord) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Z, c.X, c.Y)
}

// resolution returns meters-per-pixel at the given zoom, measured at the
// equator (full tile pyramid resolution, independent of TilePixelRatio).
func resolution(z int) float64 {
	return Circumference / PixelSize / math.Pow(2, float64(z))
}

// Bounds returns the bounding box of tile c in Mercator meters, using the
// standard top-left-origin XYZ addressing (y increases downward).
func Bounds(c Coord) geom.BBox {
	res := resolution(c.Z)
	minX := float64(c.X)*PixelSize*res - originShift
	maxX := float64(c.X+1)*PixelSize*res - originShift
	maxY := originShift - float64(c.Y)*PixelSize*res
	minY := originShift - float64(c.Y+1)*PixelSize*res
	return geom.EmptyBBox().Extend(geom.Point{X: minX, Y: minY}).Extend(geom.Point{X: maxX, Y: maxY})
}

// BoundsWithMargin returns the tile bounds expanded by marginMeters on
// every side, to account for strokes and labels that bleed across tile
// edges.
func BoundsWithMargin(c Coord, marginMeters float64) geom.BBox {
	return Bounds(c).Expand(marginMeters)
}

// PixelScale returns the affine scale factor mapping Mercator meters to
// raster pixels at zoom z, i.e. RasterSize / (tile width in meters).
func PixelScale(z int) float64 {
	return float64(RasterSize) / (Circumference / math.Pow(2, float64(z)))
}

// ToPixel projects a Mercator point into raster pixel space for tile c,
// with (0,0) at the top-left corner of the tile, matching the Renderer's
// canvas transform.
func ToPixel(c Coord, p geom.Point) (x, y float64) {
	b := Bounds(c)
	scale := PixelScale(c.Z)
	return (p.X - b.MinX) * scale, (b.MaxY - p.Y) * scale
}
