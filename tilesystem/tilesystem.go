// Package tilesystem converts between WGS-84 coordinates, global pixel
// coordinates, tile coordinates and quadkeys of the quad-tree map tiling
// scheme used by Bing Maps and compatible tile pyramids.
//
// All functions are pure and safe for concurrent use. Out-of-range
// latitude, longitude and pixel values are silently clamped to the valid
// projection range rather than rejected; the only validated input is the
// quadkey digit alphabet in QuadkeyToTileXY.
package tilesystem

import (
	"errors"
	"fmt"
	"math"
)

const (
	// EarthRadius is the WGS-84 earth radius in meters.
	EarthRadius = 6378137.0

	// MinLatitude and MaxLatitude bound the Mercator-projectable latitude
	// range. At these latitudes the projected map is exactly square.
	MinLatitude = -85.05112878
	MaxLatitude = 85.05112878

	// MinLongitude and MaxLongitude bound the longitude range.
	MinLongitude = -180.0
	MaxLongitude = 180.0

	// TileSize is the side length of a single tile in pixels.
	TileSize = 256

	// MaxLevelOfDetail is the highest level of detail the scheme is
	// specified for. Level 1 covers the world in 4 tiles.
	MaxLevelOfDetail = 23
)

// tileShift is log2(TileSize), used for pixel<->tile floor division.
const tileShift = 8

// ErrInvalidQuadkeyDigit is reported by QuadkeyToTileXY when a quadkey
// contains a character outside '0'..'3'.
var ErrInvalidQuadkeyDigit = errors.New("invalid quadkey digit")

// Clip clamps n to the [minValue, maxValue] range.
//
// Clamping instead of failing is deliberate: callers may pass slightly
// out-of-range values (e.g. floating-point drift near the date line)
// without triggering an error path.
func Clip(n, minValue, maxValue float64) float64 {
	return math.Min(math.Max(n, minValue), maxValue)
}

// MapSize returns the width and height of the full map raster in pixels
// at the given level of detail: 256 * 2^levelOfDetail.
func MapSize(levelOfDetail int) int {
	return TileSize << levelOfDetail
}

// GroundResolution returns the ground distance in meters represented by a
// single pixel at the given latitude and level of detail.
func GroundResolution(latitude float64, levelOfDetail int) float64 {
	latitude = Clip(latitude, MinLatitude, MaxLatitude)
	return math.Cos(latitude*math.Pi/180) * 2 * math.Pi * EarthRadius / float64(MapSize(levelOfDetail))
}

// MapScale returns the denominator N of the map scale ratio 1:N at the
// given latitude, level of detail and screen resolution in dots per inch.
func MapScale(latitude float64, levelOfDetail int, screenDPI float64) float64 {
	return GroundResolution(latitude, levelOfDetail) * screenDPI / 0.0254
}

// LatLongToPixelXY converts a WGS-84 point (degrees) into pixel XY
// coordinates of the global raster at the given level of detail.
//
// Latitude and longitude are clamped to the projectable range first. The
// result is rounded to the nearest pixel and guaranteed to lie inside
// [0, MapSize(levelOfDetail)-1].
func LatLongToPixelXY(latitude, longitude float64, levelOfDetail int) (pixelX, pixelY int) {
	latitude = Clip(latitude, MinLatitude, MaxLatitude)
	longitude = Clip(longitude, MinLongitude, MaxLongitude)

	x := (longitude + 180) / 360
	sinLatitude := math.Sin(latitude * math.Pi / 180)
	y := 0.5 - math.Log((1+sinLatitude)/(1-sinLatitude))/(4*math.Pi)

	mapSize := float64(MapSize(levelOfDetail))
	pixelX = int(Clip(x*mapSize+0.5, 0, mapSize-1))
	pixelY = int(Clip(y*mapSize+0.5, 0, mapSize-1))

	return pixelX, pixelY
}

// PixelXYToLatLong converts pixel XY coordinates at the given level of
// detail back into a WGS-84 point in degrees. Pixel coordinates outside
// the raster are clamped to its edge.
//
// A round trip through LatLongToPixelXY is lossy only by pixel
// quantization, never by an algorithmic asymmetry.
func PixelXYToLatLong(pixelX, pixelY, levelOfDetail int) (latitude, longitude float64) {
	mapSize := float64(MapSize(levelOfDetail))
	x := Clip(float64(pixelX), 0, mapSize-1)/mapSize - 0.5
	y := 0.5 - Clip(float64(pixelY), 0, mapSize-1)/mapSize

	latitude = 90 - 360*math.Atan(math.Exp(-y*2*math.Pi))/math.Pi
	longitude = 360 * x

	return latitude, longitude
}

// PixelXYToTileXY returns the tile containing the given pixel.
//
// This is floor division by the tile size. Pixel coordinates produced by
// LatLongToPixelXY are always non-negative, but the arithmetic shift
// keeps floor semantics even for negative input.
func PixelXYToTileXY(pixelX, pixelY int) (tileX, tileY int) {
	return pixelX >> tileShift, pixelY >> tileShift
}

// TileXYToPixelXY returns the pixel XY coordinates of the upper-left
// corner of the given tile.
func TileXYToPixelXY(tileX, tileY int) (pixelX, pixelY int) {
	return tileX << tileShift, tileY << tileShift
}

// LatLongToTileXY returns the tile containing the given WGS-84 point at
// the given level of detail.
func LatLongToTileXY(latitude, longitude float64, levelOfDetail int) (tileX, tileY int) {
	return PixelXYToTileXY(LatLongToPixelXY(latitude, longitude, levelOfDetail))
}

// TileXYToQuadkey encodes tile XY coordinates at the given level of
// detail as a quadkey: one base-4 digit per level, most significant
// level first, where the tile X bit contributes 1 and the tile Y bit
// contributes 2. Level of detail 0 yields the empty string.
func TileXYToQuadkey(tileX, tileY, levelOfDetail int) string {
	if levelOfDetail <= 0 {
		return ""
	}

	quadkey := make([]byte, levelOfDetail)
	for i := levelOfDetail; i > 0; i-- {
		digit := byte('0')
		mask := 1 << (i - 1)
		if tileX&mask != 0 {
			digit++
		}
		if tileY&mask != 0 {
			digit += 2
		}
		quadkey[levelOfDetail-i] = digit
	}

	return string(quadkey)
}

// LatLongToQuadkey returns the quadkey of the tile containing the given
// WGS-84 point at the given level of detail.
func LatLongToQuadkey(latitude, longitude float64, levelOfDetail int) string {
	tileX, tileY := LatLongToTileXY(latitude, longitude, levelOfDetail)
	return TileXYToQuadkey(tileX, tileY, levelOfDetail)
}

// QuadkeyToTileXY decodes a quadkey into tile XY coordinates and the
// level of detail, which equals the quadkey length. The empty string
// decodes to the root tile (0, 0, 0).
//
// Any character outside '0'..'3' fails with ErrInvalidQuadkeyDigit.
func QuadkeyToTileXY(quadkey string) (tileX, tileY, levelOfDetail int, err error) {
	levelOfDetail = len(quadkey)

	for i := levelOfDetail; i > 0; i-- {
		mask := 1 << (i - 1)
		switch quadkey[levelOfDetail-i] {
		case '0':
		case '1':
			tileX |= mask
		case '2':
			tileY |= mask
		case '3':
			tileX |= mask
			tileY |= mask
		default:
			return 0, 0, 0, fmt.Errorf("quadkey %q: digit %q at position %d: %w",
				quadkey, quadkey[levelOfDetail-i], levelOfDetail-i, ErrInvalidQuadkeyDigit)
		}
	}

	return tileX, tileY, levelOfDetail, nil
}

// TileXYToBoundingBox returns the geographic extent of a tile at the
// given level of detail. Edge tiles are clamped to the pixel grid, so
// the outermost bounds stop one pixel short of the theoretical map edge.
func TileXYToBoundingBox(tileX, tileY, levelOfDetail int) (minLat, minLon, maxLat, maxLon float64) {
	pixelX, pixelY := TileXYToPixelXY(tileX, tileY)
	maxLat, minLon = PixelXYToLatLong(pixelX, pixelY, levelOfDetail)
	minLat, maxLon = PixelXYToLatLong(pixelX+TileSize, pixelY+TileSize, levelOfDetail)
	return minLat, minLon, maxLat, maxLon
}
