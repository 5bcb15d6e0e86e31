// Package render draws learned weights as grayscale PNG tiles.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// ErrGeometry is returned when the weight columns do not form tileW x tileH tiles.
var ErrGeometry = errors.New("render: weight columns do not match tile geometry")

// Grid returns the number of tile columns and rows used for n tiles:
// ceil(sqrt(n)) columns and as many rows as needed.
func Grid(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = (n + cols - 1) / cols
	return cols, rows
}

// TileShape returns the most nearly square width x height factorization
// of n with width >= height, used to draw hidden units as tiles.
func TileShape(n int) (width, height int) {
	if n <= 0 {
		return 0, 0
	}
	height = int(math.Sqrt(float64(n)))
	for height > 1 && n%height != 0 {
		height--
	}
	return n / height, height
}

// WeightImage lays out one tile per row of weights. Row r becomes a
// tileW x tileH tile whose pixel (x, y) is weight column y*tileW+x.
// Intensities are min-max scaled over the whole matrix; tiles are
// separated and surrounded by padX/padY pixels of black.
//
// weights must not include a bias column.
func WeightImage(weights mat.Matrix, tileW, tileH, padX, padY int) (*image.Gray, error) {
	if tileW <= 0 || tileH <= 0 || padX < 0 || padY < 0 {
		return nil, fmt.Errorf("%w: tile %dx%d, padding %dx%d", ErrGeometry, tileW, tileH, padX, padY)
	}
	rows, cols := weights.Dims()
	if cols != tileW*tileH {
		return nil, fmt.Errorf("%w: %d columns, tile %dx%d", ErrGeometry, cols, tileW, tileH)
	}

	gridX, gridY := Grid(rows)
	width := gridX*tileW + (gridX+1)*padX
	height := gridY*tileH + (gridY+1)*padY
	img := image.NewGray(image.Rect(0, 0, width, height))

	lo, hi := mat.Min(weights), mat.Max(weights)
	scale := 0.0
	if hi > lo {
		scale = 1 / (hi - lo)
	}

	for r := 0; r < rows; r++ {
		gx, gy := r%gridX, r/gridX
		x0 := padX + gx*(tileW+padX)
		y0 := padY + gy*(tileH+padY)
		for y := 0; y < tileH; y++ {
			for x := 0; x < tileW; x++ {
				v := (weights.At(r, y*tileW+x) - lo) * scale
				img.SetGray(x0+x, y0+y, color.Gray{Y: uint8(math.Round(v * 255))})
			}
		}
	}
	return img, nil
}

// WeightPNG encodes WeightImage as PNG to w.
func WeightPNG(w io.Writer, weights mat.Matrix, tileW, tileH, padX, padY int) error {
	img, err := WeightImage(weights, tileW, tileH, padX, padY)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// WriteWeightPNG writes WeightPNG to the file at path.
func WriteWeightPNG(path string, weights mat.Matrix, tileW, tileH, padX, padY int) (err error) {
	//nolint:gosec // G304: output paths come from user configuration
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return WeightPNG(f, weights, tileW, tileH, padX, padY)
}
