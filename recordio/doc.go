// Package recordio implements the binary record format used for spilled
// runs. Every line is stored as magic bytes followed by a length-prefixed
// byte string, so lines may contain any byte, newlines included, and a
// truncated or foreign file is detected instead of silently misread.
//
// Basic usage:
//
//	var buf bytes.Buffer
//	n, err := recordio.Write(&buf, []byte("42\tfoo"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Reading records
//	r := recordio.NewReader(&buf)
//	for line := range r.All() {
//	    fmt.Printf("Read line: %q\n", line)
//	}
//	if err := r.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Calculate record size
//	size := recordio.Size([]byte("42\tfoo")) // == n
//
// Record layout:
//   - Magic bytes (2 bytes, "LN")
//   - Line length (8 bytes, little endian)
//   - Line content
package recordio
