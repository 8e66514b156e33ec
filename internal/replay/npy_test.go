package replay

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"
)

// writeNPY собирает NPY v1.0 файл в памяти.
func writeNPY(t *testing.T, descr string, shape []int, data []byte) []byte {
	t.Helper()

	shapeStr := ""
	for _, d := range shape {
		shapeStr += fmt.Sprintf("%d, ", d)
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }", descr, shapeStr)

	// Заголовок добивается пробелами до кратности 16 (вместе с префиксом и '\n')
	total := 8 + 2 + len(header) + 1
	pad := (16 - total%16) % 16
	header += string(bytes.Repeat([]byte{' '}, pad)) + "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.WriteByte(1)
	buf.WriteByte(0)
	binary.Write(&buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	buf.Write(data)
	return buf.Bytes()
}

func TestReadArray_Uint8(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	raw := writeNPY(t, "|u1", []int{2, 3}, data)

	arr, err := ReadArray(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if arr.Len() != 2 {
		t.Errorf("expected len 2, got %d", arr.Len())
	}
	if arr.RowSize() != 3 {
		t.Errorf("expected row size 3, got %d", arr.RowSize())
	}
	if !bytes.Equal(arr.Uint8, data) {
		t.Errorf("data mismatch: %v", arr.Uint8)
	}
}

func TestReadArray_Int32(t *testing.T) {
	values := []int32{-1, 0, 42}
	raw := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], uint32(v))
	}

	arr, err := ReadArray(bytes.NewReader(writeNPY(t, "<i4", []int{3}, raw)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, v := range values {
		if arr.Int32[i] != v {
			t.Errorf("index %d: expected %d, got %d", i, v, arr.Int32[i])
		}
	}
}

func TestReadArray_Int64ConvertsToInt32(t *testing.T) {
	values := []int64{0, 17, -3}
	raw := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(raw[i*8:], uint64(v))
	}

	arr, err := ReadArray(bytes.NewReader(writeNPY(t, "<i8", []int{3}, raw)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, v := range values {
		if arr.Int32[i] != int32(v) {
			t.Errorf("index %d: expected %d, got %d", i, v, arr.Int32[i])
		}
	}
}

func TestReadArray_Float32(t *testing.T) {
	values := []float32{0.5, -1.25, 100}
	raw := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}

	arr, err := ReadArray(bytes.NewReader(writeNPY(t, "<f4", []int{3}, raw)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, v := range values {
		if arr.Float32[i] != v {
			t.Errorf("index %d: expected %v, got %v", i, v, arr.Float32[i])
		}
	}
}

func TestReadArray_BadMagic(t *testing.T) {
	_, err := ReadArray(bytes.NewReader([]byte("NOTANPYFILE....")))
	if !errors.Is(err, ErrNotNPY) {
		t.Errorf("expected ErrNotNPY, got %v", err)
	}
}

func TestReadArray_UnsupportedDtype(t *testing.T) {
	raw := writeNPY(t, "<f8", []int{1}, make([]byte, 8))

	_, err := ReadArray(bytes.NewReader(raw))
	if !errors.Is(err, ErrUnsupportedDtype) {
		t.Errorf("expected ErrUnsupportedDtype, got %v", err)
	}
}

func TestReadArray_TruncatedData(t *testing.T) {
	// Заголовок обещает 10 байт, в потоке только 3
	raw := writeNPY(t, "|u1", []int{10}, []byte{1, 2, 3})

	_, err := ReadArray(bytes.NewReader(raw))
	if err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestShardFileName(t *testing.T) {
	got := ShardFileName(FieldObservation, 49)
	if got != "$store$_observation_ckpt.49.gz" {
		t.Errorf("unexpected file name: %s", got)
	}

	names := ShardFileNames(0)
	if len(names) != 4 {
		t.Errorf("expected 4 file names, got %d", len(names))
	}
}
