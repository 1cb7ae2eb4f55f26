package recordio_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/davidvella/dumpsort/recordio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errWrite = errors.New("its a me errorio")

type mockWriter struct {
	errorCounter int
	counter      int
}

func (w *mockWriter) Write(p []byte) (n int, err error) {
	w.counter++
	if w.counter == w.errorCounter {
		return 0, errWrite
	}
	return len(p), nil
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name         string
		line         []byte
		expectedSize int64
	}{
		{
			name:         "successful write",
			line:         []byte("42\tfoo"),
			expectedSize: 16,
		},
		{
			name:         "line with newline and tabs",
			line:         []byte("a\tb\nc\r"),
			expectedSize: 16,
		},
		{
			name:         "empty line write",
			line:         []byte{},
			expectedSize: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			gotSize, err := recordio.Write(buf, tt.line)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedSize, gotSize)
			assert.Equal(t, recordio.Size(tt.line), gotSize)

			lines, err := recordio.ReadRecords(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.line, lines[0])
		})
	}
}

func TestWriteHandleError(t *testing.T) {
	tests := []struct {
		name               string
		writerCounterError int
		expectedWritten    int64
		expectedError      string
	}{
		{
			name:               "Magic Bytes",
			writerCounterError: 1,
			expectedError:      "failed to write magic bytes: its a me errorio",
			expectedWritten:    0,
		},
		{
			name:               "Line Length",
			writerCounterError: 2,
			expectedError:      "error writing line: error writing bytes length: its a me errorio",
			expectedWritten:    2,
		},
		{
			name:               "Line content",
			writerCounterError: 3,
			expectedError:      "error writing line: error writing bytes content: its a me errorio",
			expectedWritten:    10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := mockWriter{
				errorCounter: tt.writerCounterError,
			}

			gotWritten, err := recordio.Write(&writer, []byte("test data"))

			assert.Equal(t, tt.expectedWritten, gotWritten)
			assert.EqualError(t, err, tt.expectedError)
		})
	}
}

var errRead = errors.New("i failed to read")

type mockReader struct {
	*bytes.Reader
	counter      int
	errorCounter int
}

func newMockReader(data []byte, errorCount int) *mockReader {
	return &mockReader{
		Reader:       bytes.NewReader(data),
		errorCounter: errorCount,
	}
}

func (r *mockReader) Read(p []byte) (n int, err error) {
	r.counter++
	if r.counter == r.errorCounter {
		return 0, errRead
	}
	return r.Reader.Read(p)
}

func TestReadHandleError(t *testing.T) {
	tests := []struct {
		name             string
		readCounterError int
		expectedError    string
	}{
		{
			name:             "Error Read Magic Bytes",
			readCounterError: 1,
			expectedError:    "failed to read magic bytes: i failed to read",
		},
		{
			name:             "Line length",
			readCounterError: 2,
			expectedError:    "error reading line: error reading bytes length: i failed to read",
		},
		{
			name:             "Line content",
			readCounterError: 3,
			expectedError:    "error reading line: error reading bytes content: i failed to read",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			_, err := recordio.Write(buf, []byte("test data"))
			require.NoError(t, err)

			_, err = recordio.ReadRecord(newMockReader(buf.Bytes(), tt.readCounterError))

			assert.EqualError(t, err, tt.expectedError)
		})
	}
}

func TestReadRecords(t *testing.T) {
	tests := []struct {
		name  string
		input [][]byte
	}{
		{
			name:  "read single record",
			input: [][]byte{[]byte("test data")},
		},
		{
			name:  "read multiple records",
			input: [][]byte{[]byte("first"), []byte("second"), {}},
		},
		{
			name:  "read empty input",
			input: [][]byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			for _, line := range tt.input {
				_, err := recordio.Write(buf, line)
				require.NoError(t, err)
			}

			got, err := recordio.ReadRecords(buf)

			require.NoError(t, err)
			assert.Equal(t, tt.input, got)
		})
	}
}

func TestReaderSurfacesCorruption(t *testing.T) {
	t.Run("truncated record", func(t *testing.T) {
		buf := new(bytes.Buffer)
		_, err := recordio.Write(buf, []byte("first"))
		require.NoError(t, err)
		_, err = recordio.Write(buf, []byte("second"))
		require.NoError(t, err)

		data := buf.Bytes()[:buf.Len()-3]
		got, err := recordio.ReadRecords(bytes.NewReader(data))

		assert.Equal(t, [][]byte{[]byte("first")}, got)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	cuts := []struct {
		name string
		keep int
	}{
		{name: "truncated after magic", keep: 2},
		{name: "truncated inside length", keep: 2 + 4},
		{name: "truncated after length", keep: 2 + 8},
	}
	for _, tc := range cuts {
		t.Run(tc.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			_, err := recordio.Write(buf, []byte("first"))
			require.NoError(t, err)
			firstLen := buf.Len()
			_, err = recordio.Write(buf, []byte("second"))
			require.NoError(t, err)

			got, err := recordio.ReadRecords(bytes.NewReader(buf.Bytes()[:firstLen+tc.keep]))

			assert.Equal(t, [][]byte{[]byte("first")}, got)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}

	t.Run("length larger than input", func(t *testing.T) {
		data := append([]byte{}, recordio.MagicBytes...)
		data = binary.LittleEndian.AppendUint64(data, 1<<40)
		data = append(data, "short"...)

		_, err := recordio.ReadRecord(bytes.NewReader(data))
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("length out of range", func(t *testing.T) {
		data := append([]byte{}, recordio.MagicBytes...)
		data = binary.LittleEndian.AppendUint64(data, math.MaxUint64)

		_, err := recordio.ReadRecord(bytes.NewReader(data))
		assert.ErrorIs(t, err, recordio.ErrInvalidLength)
	})

	t.Run("invalid magic bytes", func(t *testing.T) {
		r := recordio.NewReader(bytes.NewReader([]byte("not a record at all")))
		for range r.All() {
			t.Fatal("no record expected")
		}
		assert.ErrorIs(t, r.Err(), recordio.ErrInvalidMagicBytes)
	})
}
