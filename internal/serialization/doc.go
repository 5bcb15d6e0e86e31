// Package serialization stores named gonum matrices in the .born format.
//
//	Format Structure:
//	  [64 bytes: fixed header]
//	    0x00 Magic "BORN"
//	    0x04 Version (uint32 LE, currently 2)
//	    0x08 Flags (uint32 LE)
//	    0x10 JSON header size (uint64 LE)
//	    0x18 Data section size (uint64 LE)
//	    0x20 SHA-256 of the data section
//	  [JSON header: matrix metadata, free-form metadata, checkpoint state]
//	  [zero padding to a 64-byte boundary]
//	  [data section: one mat.Dense.MarshalBinary payload per matrix]
//
// Payloads keep gonum's own binary encoding, so shape and row-major element
// order round-trip exactly.
//
// Example usage:
//
//	state := map[string]*mat.Dense{"theta1": theta1, "theta2": theta2}
//	if err := serialization.Save("model.born", state, serialization.Header{ModelType: "sigmoid-mlp"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	state, header, err := serialization.Load("model.born", serialization.ReaderOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
package serialization
