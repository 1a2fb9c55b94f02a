package tilesystem

import (
	"errors"
	"math"
	"testing"
)

func TestClip(t *testing.T) {
	tests := []struct {
		name              string
		n, min, max, want float64
	}{
		{"above range", 500, 0, 255, 255},
		{"below range", -5, 0, 255, 0},
		{"inside range", 100, 0, 255, 100},
		{"at min", 0, 0, 255, 0},
		{"at max", 255, 0, 255, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clip(tt.n, tt.min, tt.max); got != tt.want {
				t.Errorf("Clip(%v, %v, %v) = %v, want %v", tt.n, tt.min, tt.max, got, tt.want)
			}
		})
	}
}

func TestMapSize(t *testing.T) {
	tests := []struct {
		lod  int
		want int
	}{
		{0, 256},
		{1, 512},
		{4, 4096},
		{9, 131072},
		{23, 2147483648},
	}

	for _, tt := range tests {
		if got := MapSize(tt.lod); got != tt.want {
			t.Errorf("MapSize(%d) = %d, want %d", tt.lod, got, tt.want)
		}
	}
}

func TestGroundResolution(t *testing.T) {
	// 2*pi*EarthRadius / 256 at the equator, halving per level.
	equator := 156543.03392804097

	for lod := 0; lod <= 10; lod++ {
		want := equator / float64(int(1)<<lod)
		got := GroundResolution(0, lod)
		if math.Abs(got-want) > 1e-6 {
			t.Errorf("GroundResolution(0, %d) = %v, want %v", lod, got, want)
		}
	}

	// Out-of-range latitude is clamped, not rejected.
	if got, want := GroundResolution(90, 1), GroundResolution(MaxLatitude, 1); got != want {
		t.Errorf("GroundResolution(90, 1) = %v, want clamped value %v", got, want)
	}
}

func TestMapScale(t *testing.T) {
	// Reference value from the published Bing level/scale table: level 1
	// at 96 dpi on the equator is 1 : 295,829,355.45.
	got := MapScale(0, 1, 96)
	if math.Abs(got-295829355.45) > 0.01 {
		t.Errorf("MapScale(0, 1, 96) = %v, want 295829355.45", got)
	}
}

func TestLatLongToPixelXY(t *testing.T) {
	tests := []struct {
		name         string
		lat, lon     float64
		lod          int
		wantX, wantY int
	}{
		// y = 0.5 - 2*asinh(1)/(4*pi) = 0.35972002548 for lat 45.
		{"45/45 at level 1", 45, 45, 1, 320, 184},
		{"45/45 at level 4", 45, 45, 4, 2560, 1473},
		{"origin at level 0", 0, 0, 0, 128, 128},
		{"north-west corner clamped", 90, -180, 2, 0, 0},
		{"south-east corner clamped", -90, 180, 2, 1023, 1023},
		{"longitude clamped", 0, 500, 1, 511, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotX, gotY := LatLongToPixelXY(tt.lat, tt.lon, tt.lod)
			if gotX != tt.wantX || gotY != tt.wantY {
				t.Errorf("LatLongToPixelXY(%v, %v, %d) = (%d, %d), want (%d, %d)",
					tt.lat, tt.lon, tt.lod, gotX, gotY, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestPixelXYLatLongRoundTrip(t *testing.T) {
	for lod := 1; lod <= 10; lod++ {
		// One pixel of quantization error, in degrees. The latitude
		// derivative of the inverse projection never exceeds the
		// longitude one, so a single tolerance covers both axes.
		tol := 360 / float64(MapSize(lod)) * 1.0001

		for lat := -85.0; lat <= 85.0; lat += 17 {
			for lon := -180.0; lon <= 180.0; lon += 36 {
				px, py := LatLongToPixelXY(lat, lon, lod)
				gotLat, gotLon := PixelXYToLatLong(px, py, lod)

				if math.Abs(gotLat-lat) > tol || math.Abs(gotLon-lon) > tol {
					t.Fatalf("round trip lod=%d (%v, %v) -> (%d, %d) -> (%v, %v), tolerance %v",
						lod, lat, lon, px, py, gotLat, gotLon, tol)
				}
			}
		}
	}
}

func TestPixelXYToLatLongClamping(t *testing.T) {
	// Pixels past the raster edge resolve to the edge pixel.
	lat1, lon1 := PixelXYToLatLong(-100, 1e6, 1)
	lat2, lon2 := PixelXYToLatLong(0, 511, 1)
	if lat1 != lat2 || lon1 != lon2 {
		t.Errorf("clamped pixel = (%v, %v), want edge pixel value (%v, %v)", lat1, lon1, lat2, lon2)
	}
}

func TestPixelTileConversions(t *testing.T) {
	tests := []struct {
		px, py, tx, ty int
	}{
		{0, 0, 0, 0},
		{255, 255, 0, 0},
		{256, 255, 1, 0},
		{1023, 1024, 3, 4},
		{320, 184, 1, 0},
	}

	for _, tt := range tests {
		if gotX, gotY := PixelXYToTileXY(tt.px, tt.py); gotX != tt.tx || gotY != tt.ty {
			t.Errorf("PixelXYToTileXY(%d, %d) = (%d, %d), want (%d, %d)",
				tt.px, tt.py, gotX, gotY, tt.tx, tt.ty)
		}
	}

	// Inverse returns the upper-left corner of the tile.
	if px, py := TileXYToPixelXY(3, 4); px != 768 || py != 1024 {
		t.Errorf("TileXYToPixelXY(3, 4) = (%d, %d), want (768, 1024)", px, py)
	}
}

func TestTileXYToQuadkey(t *testing.T) {
	tests := []struct {
		tx, ty, lod int
		want        string
	}{
		{0, 0, 0, ""},
		{0, 0, 2, "00"},
		{3, 3, 2, "33"},
		{1, 0, 1, "1"},
		{0, 1, 1, "2"},
		{3, 5, 3, "213"},
		{5, 10, 4, "2121"},
	}

	for _, tt := range tests {
		if got := TileXYToQuadkey(tt.tx, tt.ty, tt.lod); got != tt.want {
			t.Errorf("TileXYToQuadkey(%d, %d, %d) = %q, want %q", tt.tx, tt.ty, tt.lod, got, tt.want)
		}
	}
}

func TestQuadkeyToTileXY(t *testing.T) {
	tests := []struct {
		quadkey     string
		tx, ty, lod int
	}{
		{"", 0, 0, 0},
		{"0", 0, 0, 1},
		{"213", 3, 5, 3},
		{"33", 3, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.quadkey, func(t *testing.T) {
			tx, ty, lod, err := QuadkeyToTileXY(tt.quadkey)
			if err != nil {
				t.Fatalf("QuadkeyToTileXY(%q): %v", tt.quadkey, err)
			}
			if tx != tt.tx || ty != tt.ty || lod != tt.lod {
				t.Errorf("QuadkeyToTileXY(%q) = (%d, %d, %d), want (%d, %d, %d)",
					tt.quadkey, tx, ty, lod, tt.tx, tt.ty, tt.lod)
			}
		})
	}
}

func TestQuadkeyToTileXYInvalidDigit(t *testing.T) {
	for _, quadkey := range []string{"9", "4", "123a", "22 2", "-1"} {
		_, _, _, err := QuadkeyToTileXY(quadkey)
		if !errors.Is(err, ErrInvalidQuadkeyDigit) {
			t.Errorf("QuadkeyToTileXY(%q) err = %v, want ErrInvalidQuadkeyDigit", quadkey, err)
		}
	}
}

func TestQuadkeyRoundTrip(t *testing.T) {
	for lod := 1; lod <= 8; lod++ {
		n := 1 << lod
		step := n/7 + 1

		for tx := 0; tx < n; tx += step {
			for ty := 0; ty < n; ty += step {
				quadkey := TileXYToQuadkey(tx, ty, lod)
				if len(quadkey) != lod {
					t.Fatalf("quadkey %q length %d, want %d", quadkey, len(quadkey), lod)
				}

				gotX, gotY, gotLod, err := QuadkeyToTileXY(quadkey)
				if err != nil {
					t.Fatalf("QuadkeyToTileXY(%q): %v", quadkey, err)
				}
				if gotX != tx || gotY != ty || gotLod != lod {
					t.Fatalf("round trip (%d, %d, %d) -> %q -> (%d, %d, %d)",
						tx, ty, lod, quadkey, gotX, gotY, gotLod)
				}
			}
		}
	}
}

func TestLatLongToQuadkey(t *testing.T) {
	// Lat 45 / lon 45 lands in pixel (320, 184) at level 1, which is
	// tile (1, 0): the north-east quadrant.
	if got := LatLongToQuadkey(45, 45, 1); got != "1" {
		t.Errorf("LatLongToQuadkey(45, 45, 1) = %q, want %q", got, "1")
	}
	if got := LatLongToQuadkey(-45, -45, 1); got != "2" {
		t.Errorf("LatLongToQuadkey(-45, -45, 1) = %q, want %q", got, "2")
	}
}

func TestTileXYToBoundingBox(t *testing.T) {
	minLat, minLon, maxLat, maxLon := TileXYToBoundingBox(0, 0, 1)

	if math.Abs(maxLat-MaxLatitude) > 1e-6 {
		t.Errorf("maxLat = %v, want %v", maxLat, MaxLatitude)
	}
	if minLon != -180 {
		t.Errorf("minLon = %v, want -180", minLon)
	}
	if math.Abs(minLat) > 1e-9 {
		t.Errorf("minLat = %v, want 0", minLat)
	}
	if math.Abs(maxLon) > 1e-9 {
		t.Errorf("maxLon = %v, want 0", maxLon)
	}

	// The south-east tile clamps to the last pixel of the raster rather
	// than the theoretical map edge.
	_, _, _, maxLon = TileXYToBoundingBox(1, 1, 1)
	if want := 360 * (511.0/512.0 - 0.5); maxLon != want {
		t.Errorf("edge tile maxLon = %v, want %v", maxLon, want)
	}
}

func BenchmarkLatLongToPixelXY(b *testing.B) {
	coords := [][2]float64{
		{0, 0},
		{45, 45},
		{MaxLatitude, 180},
		{-33.8568, 151.2153},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, c := range coords {
			LatLongToPixelXY(c[0], c[1], 15)
		}
	}
}

func BenchmarkQuadkeyRoundTrip(b *testing.B) {
	for i := 0; i < b.N; i++ {
		quadkey := TileXYToQuadkey(35210, 21493, 16)
		if _, _, _, err := QuadkeyToTileXY(quadkey); err != nil {
			b.Fatal(err)
		}
	}
}
