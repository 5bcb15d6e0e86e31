// Package mnist decodes the MNIST IDX image and label files into an
// immutable Dataset.
//
// Both files start with a big-endian header (magic number and record count;
// images additionally carry row and column counts) followed by raw unsigned
// bytes. Pixels are normalized to [0, 1] and stored one image per row in a
// gonum matrix:
//
//	ds, err := mnist.LoadSplit("./data", mnist.TrainSet, mnist.DecodeOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(ds.Len(), ds.Width(), ds.Height()) // 60000 28 28
//
// Failures are reported as *IOError (missing or unreadable file),
// *DecodeError (truncated file, bad magic) or *ShapeError (image and
// label counts disagree).
package mnist
