package renderer

import (
	"image"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// DefaultTileRows is the height of a tile when none is configured
const DefaultTileRows = 1

// Tile is a band of full-width scanlines rendered as one unit of work
type Tile struct {
	ID      int             // Unique tile identifier, top band first
	Bounds  image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	Sampler core.Sampler    // Tile-specific sampler for deterministic results
}

// NewTile creates a tile whose sampler depends only on the render seed and tile ID
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewSeededSampler(TileSeed(seed, id)),
	}
}

// TileSeed derives the random seed of tile id from the render seed
func TileSeed(seed int64, id int) int64 {
	return int64(uint64(seed) ^ (uint64(id)+1)*0x9E3779B97F4A7C15)
}

// NewTileGrid splits the image into bands of tileRows scanlines covering every pixel
func NewTileGrid(width, height, tileRows int, seed int64) []*Tile {
	if tileRows <= 0 {
		tileRows = DefaultTileRows
	}

	tiles := make([]*Tile, 0, (height+tileRows-1)/tileRows)
	for y0 := 0; y0 < height; y0 += tileRows {
		y1 := min(y0+tileRows, height)
		tiles = append(tiles, NewTile(len(tiles), image.Rect(0, y0, width, y1), seed))
	}

	return tiles
}
