package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/woozymasta/quadtile/tilesystem"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Lat     *float64 `long:"lat"     description:"Latitude of the point, in degrees"`
	Lon     *float64 `long:"lon"     description:"Longitude of the point, in degrees"`
	Quadkey string   `short:"q" long:"quadkey" description:"Quadkey to decode instead of a lat/lon point"`
	Level   int      `short:"l" long:"lod"     description:"Level of detail" default:"15"`
	DPI     float64  `short:"d" long:"dpi"     description:"Screen resolution for map scale" default:"96"`
	Format  string   `short:"f" long:"format"  description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Batch   bool     `short:"b" long:"batch"   description:"Read 'lat lon' pairs from stdin, one per line"`
	Output  string   `short:"o" long:"out"     description:"Output file path. Writes to stdout if empty"`
}

// address is the full tile-pyramid address of a point or tile.
type address struct {
	Level            int     `json:"level" yaml:"level"`
	Latitude         float64 `json:"latitude" yaml:"latitude"`
	Longitude        float64 `json:"longitude" yaml:"longitude"`
	PixelX           int     `json:"pixel_x" yaml:"pixel_x"`
	PixelY           int     `json:"pixel_y" yaml:"pixel_y"`
	TileX            int     `json:"tile_x" yaml:"tile_x"`
	TileY            int     `json:"tile_y" yaml:"tile_y"`
	Quadkey          string  `json:"quadkey" yaml:"quadkey"`
	MinLat           float64 `json:"min_lat" yaml:"min_lat"`
	MinLon           float64 `json:"min_lon" yaml:"min_lon"`
	MaxLat           float64 `json:"max_lat" yaml:"max_lat"`
	MaxLon           float64 `json:"max_lon" yaml:"max_lon"`
	GroundResolution float64 `json:"ground_resolution" yaml:"ground_resolution"`
	MapScale         float64 `json:"map_scale" yaml:"map_scale"`
}

// resolve computes the full address of a lat/lon point.
func resolve(lat, lon float64, level int, dpi float64) address {
	pixelX, pixelY := tilesystem.LatLongToPixelXY(lat, lon, level)
	tileX, tileY := tilesystem.PixelXYToTileXY(pixelX, pixelY)
	minLat, minLon, maxLat, maxLon := tilesystem.TileXYToBoundingBox(tileX, tileY, level)

	return address{
		Level:            level,
		Latitude:         lat,
		Longitude:        lon,
		PixelX:           pixelX,
		PixelY:           pixelY,
		TileX:            tileX,
		TileY:            tileY,
		Quadkey:          tilesystem.TileXYToQuadkey(tileX, tileY, level),
		MinLat:           minLat,
		MinLon:           minLon,
		MaxLat:           maxLat,
		MaxLon:           maxLon,
		GroundResolution: tilesystem.GroundResolution(lat, level),
		MapScale:         tilesystem.MapScale(lat, level, dpi),
	}
}

// resolveQuadkey computes the address of the tile named by a quadkey,
// anchored at the tile center.
func resolveQuadkey(quadkey string, dpi float64) (address, error) {
	tileX, tileY, level, err := tilesystem.QuadkeyToTileXY(quadkey)
	if err != nil {
		return address{}, err
	}

	pixelX, pixelY := tilesystem.TileXYToPixelXY(tileX, tileY)
	lat, lon := tilesystem.PixelXYToLatLong(
		pixelX+tilesystem.TileSize/2, pixelY+tilesystem.TileSize/2, level)

	addr := resolve(lat, lon, level, dpi)
	addr.Quadkey = quadkey
	addr.TileX, addr.TileY = tileX, tileY
	return addr, nil
}

func parseLine(line string) (lat, lon float64, err error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected 'lat lon', got %q", line)
	}
	if lat, err = strconv.ParseFloat(fields[0], 64); err != nil {
		return 0, 0, fmt.Errorf("latitude %q: %w", fields[0], err)
	}
	if lon, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return 0, 0, fmt.Errorf("longitude %q: %w", fields[1], err)
	}
	return lat, lon, nil
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Level < 0 || opts.Level > tilesystem.MaxLevelOfDetail {
		fmt.Fprintf(os.Stderr, "Error: --lod must be within [0, %d]\n", tilesystem.MaxLevelOfDetail)
		os.Exit(1)
	}

	var result any

	switch {
	case opts.Quadkey != "":
		addr, err := resolveQuadkey(opts.Quadkey, opts.DPI)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		result = addr

	case opts.Batch:
		addrs := make([]address, 0)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			lat, lon, err := parseLine(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Skipping line: %v\n", err)
				continue
			}
			addrs = append(addrs, resolve(lat, lon, opts.Level, opts.DPI))
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
		result = addrs

	case opts.Lat != nil && opts.Lon != nil:
		result = resolve(*opts.Lat, *opts.Lon, opts.Level, opts.DPI)

	default:
		fmt.Fprintln(os.Stderr, "Error: pass --lat/--lon, --quadkey or --batch")
		os.Exit(1)
	}

	// marshal
	var outputData []byte
	var err error
	if opts.Format == "yaml" {
		outputData, err = yaml.Marshal(result)
	} else {
		outputData, err = json.MarshalIndent(result, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(string(outputData))
	}
}
