package mnist

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// NumClasses is the number of digit classes.
const NumClasses = 10

// Set selects one of the two standard MNIST splits.
type Set int

// Standard splits.
const (
	TrainSet Set = iota // 60,000 training images
	TestSet             // 10,000 test images
)

// String returns the split name.
func (s Set) String() string {
	switch s {
	case TrainSet:
		return "train"
	case TestSet:
		return "test"
	default:
		return fmt.Sprintf("Set(%d)", int(s))
	}
}

// Files returns the standard uncompressed file names for the split.
func (s Set) Files() (images, labels string) {
	if s == TestSet {
		return "t10k-images-idx3-ubyte", "t10k-labels-idx1-ubyte"
	}
	return "train-images-idx3-ubyte", "train-labels-idx1-ubyte"
}

// Dataset is an immutable set of normalized grayscale images and their labels.
//
// Images are stored one per row, so Images() has shape (Len, Width*Height).
// A Dataset may be shared read-only between several models.
type Dataset struct {
	images *mat.Dense
	labels []int
	width  int
	height int
}

// New builds a Dataset from decoded parts.
//
// Returns a ShapeError if the image and label counts differ or the
// geometry does not match the column count, and ErrLabelRange if a
// label is outside [0, NumClasses).
func New(images *mat.Dense, labels []int, width, height int) (*Dataset, error) {
	if images == nil {
		return nil, &ShapeError{Op: "mnist.New", Want: "image matrix", Got: "nil"}
	}
	n, features := images.Dims()
	if n != len(labels) {
		return nil, &ShapeError{
			Op:   "mnist.New",
			Want: fmt.Sprintf("%d labels (one per image)", n),
			Got:  fmt.Sprintf("%d labels", len(labels)),
		}
	}
	if width <= 0 || height <= 0 || width*height != features {
		return nil, &ShapeError{
			Op:   "mnist.New",
			Want: fmt.Sprintf("%d features", features),
			Got:  fmt.Sprintf("%dx%d geometry", width, height),
		}
	}
	for i, l := range labels {
		if l < 0 || l >= NumClasses {
			return nil, fmt.Errorf("mnist.New: %w: label %d at index %d", ErrLabelRange, l, i)
		}
	}

	owned := make([]int, len(labels))
	copy(owned, labels)
	return &Dataset{images: images, labels: owned, width: width, height: height}, nil
}

// Load decodes an image file and a label file into a Dataset.
func Load(imagesPath, labelsPath string, opts DecodeOptions) (*Dataset, error) {
	images, width, height, err := ReadImages(imagesPath, opts)
	if err != nil {
		return nil, err
	}
	labels, err := ReadLabels(labelsPath, opts)
	if err != nil {
		return nil, err
	}
	return New(images, labels, width, height)
}

// LoadSplit loads the standard files for split from dir.
//
// Expected files in dir:
//   - train-images-idx3-ubyte, train-labels-idx1-ubyte (TrainSet)
//   - t10k-images-idx3-ubyte, t10k-labels-idx1-ubyte (TestSet)
func LoadSplit(dir string, split Set, opts DecodeOptions) (*Dataset, error) {
	imagesName, labelsName := split.Files()
	return Load(filepath.Join(dir, imagesName), filepath.Join(dir, labelsName), opts)
}

// Images returns the (Len, Features) pixel matrix. Callers must not modify it.
func (d *Dataset) Images() mat.Matrix {
	return d.images
}

// Labels returns a copy of the label vector.
func (d *Dataset) Labels() []int {
	out := make([]int, len(d.labels))
	copy(out, d.labels)
	return out
}

// Label returns the label of image i.
func (d *Dataset) Label(i int) int {
	return d.labels[i]
}

// Len returns the number of images.
func (d *Dataset) Len() int {
	return len(d.labels)
}

// Width returns the image width in pixels.
func (d *Dataset) Width() int {
	return d.width
}

// Height returns the image height in pixels.
func (d *Dataset) Height() int {
	return d.height
}

// Channels returns the number of color channels (always 1).
func (d *Dataset) Channels() int {
	return 1
}

// Features returns the number of pixels per image.
func (d *Dataset) Features() int {
	return d.width * d.height
}

// Head returns a view of the first n images. n <= 0 or n >= Len returns d.
func (d *Dataset) Head(n int) *Dataset {
	if n <= 0 || n >= d.Len() {
		return d
	}
	return d.slice(0, n)
}

// Split splits the dataset into two parts, the second holding
// validationRatio of the images.
func (d *Dataset) Split(validationRatio float64) (*Dataset, *Dataset, error) {
	if validationRatio <= 0 || validationRatio >= 1 {
		return nil, nil, fmt.Errorf("mnist: validation ratio must be in (0, 1), got %g", validationRatio)
	}
	splitIdx := int(float64(d.Len()) * (1 - validationRatio))
	if splitIdx == 0 || splitIdx == d.Len() {
		return nil, nil, &ShapeError{
			Op:   "mnist.Split",
			Want: "both parts non-empty",
			Got:  fmt.Sprintf("split at %d of %d", splitIdx, d.Len()),
		}
	}
	return d.slice(0, splitIdx), d.slice(splitIdx, d.Len()), nil
}

// Save writes the dataset back out in the IDX layout.
func (d *Dataset) Save(imagesPath, labelsPath string) error {
	if err := writeFile(imagesPath, func(f *os.File) error {
		return EncodeImages(f, d.images, d.width, d.height)
	}); err != nil {
		return err
	}
	return writeFile(labelsPath, func(f *os.File) error {
		return EncodeLabels(f, d.labels)
	})
}

func (d *Dataset) slice(from, to int) *Dataset {
	view := d.images.Slice(from, to, 0, d.Features()).(*mat.Dense)
	return &Dataset{
		images: view,
		labels: d.labels[from:to:to],
		width:  d.width,
		height: d.height,
	}
}

func writeFile(path string, write func(*os.File) error) (err error) {
	//nolint:gosec // G304: output paths come from user configuration
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = &IOError{Path: path, Err: closeErr}
		}
	}()
	return write(f)
}
