package renderer

import (
	"image"
	"testing"
)

func TestNewTileGrid_CoversImage(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		tileRows      int
		expectedTiles int
	}{
		{"one row per tile", 8, 5, 1, 5},
		{"even bands", 8, 6, 3, 2},
		{"short last band", 8, 7, 3, 3},
		{"band taller than image", 8, 2, 16, 1},
		{"zero rows uses default", 8, 4, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := NewTileGrid(tt.width, tt.height, tt.tileRows, 42)
			if len(tiles) != tt.expectedTiles {
				t.Fatalf("Expected %d tiles, got %d", tt.expectedTiles, len(tiles))
			}

			covered := make([]int, tt.height)
			for i, tile := range tiles {
				if tile.ID != i {
					t.Errorf("Expected tile ID %d, got %d", i, tile.ID)
				}
				if tile.Bounds.Min.X != 0 || tile.Bounds.Max.X != tt.width {
					t.Errorf("Tile %d should span the full width, got %v", i, tile.Bounds)
				}
				for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
					covered[y]++
				}
			}
			for y, n := range covered {
				if n != 1 {
					t.Errorf("Row %d covered %d times", y, n)
				}
			}
		})
	}
}

func TestTileSeed(t *testing.T) {
	seen := make(map[int64]int)
	for id := 0; id < 1000; id++ {
		seed := TileSeed(42, id)
		if prev, ok := seen[seed]; ok {
			t.Fatalf("Tiles %d and %d share seed %d", prev, id, seed)
		}
		seen[seed] = id
	}

	if TileSeed(1, 0) == TileSeed(2, 0) {
		t.Error("Different render seeds should give different tile seeds")
	}
}

func TestNewTile_DeterministicSampler(t *testing.T) {
	a := NewTile(3, image.Rect(0, 3, 10, 4), 7)
	b := NewTile(3, image.Rect(0, 3, 10, 4), 7)

	for i := 0; i < 20; i++ {
		if a.Sampler.Get1D() != b.Sampler.Get1D() {
			t.Fatal("Tiles with the same seed and ID should draw the same sequence")
		}
	}
}
