// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/woozymasta/quadtile/tilesystem"
)

// BoundingBox is the geographic extent of a tile.
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// PixelResponse is the full tile address of a geographic point.
type PixelResponse struct {
	Level   int    `json:"level"`
	PixelX  int    `json:"pixel_x"`
	PixelY  int    `json:"pixel_y"`
	TileX   int    `json:"tile_x"`
	TileY   int    `json:"tile_y"`
	Quadkey string `json:"quadkey"`
}

// LatLongResponse is a geographic point in degrees.
type LatLongResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// QuadkeyResponse describes the tile addressed by a quadkey.
type QuadkeyResponse struct {
	Quadkey string          `json:"quadkey"`
	Level   int             `json:"level"`
	TileX   int             `json:"tile_x"`
	TileY   int             `json:"tile_y"`
	Bounds  BoundingBox     `json:"bounds"`
	Center  LatLongResponse `json:"center"`
}

// ResolutionResponse reports meters-per-pixel and map scale at a latitude.
type ResolutionResponse struct {
	Level            int     `json:"level"`
	Latitude         float64 `json:"latitude"`
	DPI              float64 `json:"dpi"`
	GroundResolution float64 `json:"ground_resolution"`
	MapScale         float64 `json:"map_scale"`
}

// HandleInfo serves the service descriptor at the root path.
func (s *ServerContext) HandleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, map[string]any{
		"service":     "quadtile",
		"version":     s.Version,
		"attribution": s.Config.Attribution,
		"zoom_limit":  s.Config.ZoomLimit,
		"endpoints": []string{
			"/api/pixel?lat=&lon=&lod=",
			"/api/latlong?x=&y=&lod=",
			"/api/quadkey/{key}",
			"/api/resolution?lat=&lod=&dpi=",
		},
	})
}

// HandlePixel converts a lat/long point into its full tile address.
func (s *ServerContext) HandlePixel(w http.ResponseWriter, r *http.Request) {
	lat, errLat := queryFloat(r, "lat")
	lon, errLon := queryFloat(r, "lon")
	lod, errLod := s.queryLevel(r)

	if err := errors.Join(errLat, errLon, errLod); err != nil {
		s.observeConversion("pixel", false)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pixelX, pixelY := tilesystem.LatLongToPixelXY(lat, lon, lod)
	tileX, tileY := tilesystem.PixelXYToTileXY(pixelX, pixelY)

	s.observeConversion("pixel", true)
	writeJSON(w, PixelResponse{
		Level:   lod,
		PixelX:  pixelX,
		PixelY:  pixelY,
		TileX:   tileX,
		TileY:   tileY,
		Quadkey: tilesystem.TileXYToQuadkey(tileX, tileY, lod),
	})
}

// HandleLatLong converts global pixel coordinates back to lat/long.
func (s *ServerContext) HandleLatLong(w http.ResponseWriter, r *http.Request) {
	x, errX := queryInt(r, "x")
	y, errY := queryInt(r, "y")
	lod, errLod := s.queryLevel(r)

	if err := errors.Join(errX, errY, errLod); err != nil {
		s.observeConversion("latlong", false)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lat, lon := tilesystem.PixelXYToLatLong(x, y, lod)

	s.observeConversion("latlong", true)
	writeJSON(w, LatLongResponse{Latitude: lat, Longitude: lon})
}

// HandleQuadkey decodes a quadkey into tile coordinates and its extent.
// Path: /api/quadkey/{key}
func (s *ServerContext) HandleQuadkey(w http.ResponseWriter, r *http.Request) {
	quadkey := strings.TrimPrefix(r.URL.Path, "/api/quadkey/")
	if quadkey == "" || strings.Contains(quadkey, "/") {
		s.observeConversion("quadkey", false)
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	tileX, tileY, lod, err := tilesystem.QuadkeyToTileXY(quadkey)
	if err != nil {
		s.observeConversion("quadkey", false)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if lod > s.Config.ZoomLimit {
		s.observeConversion("quadkey", false)
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("quadkey level %d exceeds zoom limit %d", lod, s.Config.ZoomLimit))
		return
	}

	minLat, minLon, maxLat, maxLon := tilesystem.TileXYToBoundingBox(tileX, tileY, lod)
	pixelX, pixelY := tilesystem.TileXYToPixelXY(tileX, tileY)
	centerLat, centerLon := tilesystem.PixelXYToLatLong(
		pixelX+tilesystem.TileSize/2, pixelY+tilesystem.TileSize/2, lod)

	s.observeConversion("quadkey", true)
	writeJSON(w, QuadkeyResponse{
		Quadkey: quadkey,
		Level:   lod,
		TileX:   tileX,
		TileY:   tileY,
		Bounds:  BoundingBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon},
		Center:  LatLongResponse{Latitude: centerLat, Longitude: centerLon},
	})
}

// HandleResolution reports ground resolution and map scale.
func (s *ServerContext) HandleResolution(w http.ResponseWriter, r *http.Request) {
	lat, errLat := queryFloat(r, "lat")
	lod, errLod := s.queryLevel(r)

	dpi := s.Config.DefaultDPI
	var errDPI error
	if r.URL.Query().Get("dpi") != "" {
		if dpi, errDPI = queryFloat(r, "dpi"); errDPI == nil && dpi <= 0 {
			errDPI = errors.New("dpi must be positive")
		}
	}

	if err := errors.Join(errLat, errLod, errDPI); err != nil {
		s.observeConversion("resolution", false)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.observeConversion("resolution", true)
	writeJSON(w, ResolutionResponse{
		Level:            lod,
		Latitude:         lat,
		DPI:              dpi,
		GroundResolution: tilesystem.GroundResolution(lat, lod),
		MapScale:         tilesystem.MapScale(lat, lod, dpi),
	})
}

// queryLevel parses the lod parameter and enforces the configured range.
func (s *ServerContext) queryLevel(r *http.Request) (int, error) {
	lod, err := queryInt(r, "lod")
	if err != nil {
		return 0, err
	}
	if lod < 1 || lod > s.Config.ZoomLimit {
		return 0, fmt.Errorf("lod %d outside [1, %d]", lod, s.Config.ZoomLimit)
	}
	return lod, nil
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing required parameter: %s", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing required parameter: %s", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
