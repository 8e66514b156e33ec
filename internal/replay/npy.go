package replay

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Ошибки парсера NPY.
var (
	// ErrNotNPY — файл не начинается с magic последовательности NPY.
	ErrNotNPY = errors.New("not an NPY file")

	// ErrUnsupportedDtype — dtype массива не поддерживается.
	ErrUnsupportedDtype = errors.New("unsupported NPY dtype")
)

var npyMagic = []byte("\x93NUMPY")

// Array — разобранный NPY массив.
//
// Данные хранятся в одном из типизированных слайсов в зависимости от
// dtype; остальные слайсы nil.
type Array struct {
	Shape []int
	Dtype string

	Uint8   []uint8
	Int32   []int32
	Float32 []float32
}

// Len возвращает длину первой оси (число шагов).
func (a *Array) Len() int {
	if len(a.Shape) == 0 {
		return 0
	}
	return a.Shape[0]
}

// RowSize возвращает произведение остальных осей (элементов на шаг).
func (a *Array) RowSize() int {
	size := 1
	for _, d := range a.Shape[1:] {
		size *= d
	}
	return size
}

// ReadArray читает NPY массив из потока.
//
// Поддерживаются версии формата 1.0 и 2.0 и dtype |u1, <i4, <i8, <f4.
// int64 массивы конвертируются в int32 (действия и терминалы датасета
// влезают с запасом).
func ReadArray(r io.Reader) (*Array, error) {
	header, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	shape, dtype, err := parseHeaderDict(header)
	if err != nil {
		return nil, err
	}

	total := 1
	for _, d := range shape {
		total *= d
	}

	arr := &Array{Shape: shape, Dtype: dtype}
	switch dtype {
	case "|u1", "<u1":
		arr.Uint8 = make([]uint8, total)
		if _, err := io.ReadFull(r, arr.Uint8); err != nil {
			return nil, fmt.Errorf("read uint8 data: %w", err)
		}
	case "<i4":
		raw := make([]byte, total*4)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("read int32 data: %w", err)
		}
		arr.Int32 = make([]int32, total)
		for i := range arr.Int32 {
			arr.Int32[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	case "<i8":
		raw := make([]byte, total*8)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("read int64 data: %w", err)
		}
		arr.Int32 = make([]int32, total)
		for i := range arr.Int32 {
			arr.Int32[i] = int32(binary.LittleEndian.Uint64(raw[i*8:]))
		}
	case "<f4":
		raw := make([]byte, total*4)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("read float32 data: %w", err)
		}
		arr.Float32 = make([]float32, total)
		for i := range arr.Float32 {
			arr.Float32[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDtype, dtype)
	}

	return arr, nil
}

// readHeader читает magic, версию и текст заголовка.
func readHeader(r io.Reader) (string, error) {
	prefix := make([]byte, 8)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return "", fmt.Errorf("read NPY prefix: %w", err)
	}
	if string(prefix[:6]) != string(npyMagic) {
		return "", ErrNotNPY
	}

	major := prefix[6]
	var headerLen int
	switch major {
	case 1:
		var raw [2]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return "", fmt.Errorf("read header length: %w", err)
		}
		headerLen = int(binary.LittleEndian.Uint16(raw[:]))
	case 2, 3:
		var raw [4]byte
		if _, err := io.ReadFull(r, raw[:]); err != nil {
			return "", fmt.Errorf("read header length: %w", err)
		}
		headerLen = int(binary.LittleEndian.Uint32(raw[:]))
	default:
		return "", fmt.Errorf("%w: version %d.%d", ErrNotNPY, major, prefix[7])
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return "", fmt.Errorf("read header: %w", err)
	}
	return string(header), nil
}

// parseHeaderDict разбирает python-словарь заголовка:
//
//	{'descr': '|u1', 'fortran_order': False, 'shape': (1000000, 84, 84), }
func parseHeaderDict(header string) (shape []int, dtype string, err error) {
	dtype, err = dictValue(header, "descr")
	if err != nil {
		return nil, "", err
	}
	dtype = strings.Trim(dtype, "'\"")

	order, err := dictValue(header, "fortran_order")
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(order) != "False" {
		return nil, "", fmt.Errorf("%w: fortran order not supported", ErrUnsupportedDtype)
	}

	rawShape, err := dictValue(header, "shape")
	if err != nil {
		return nil, "", err
	}
	rawShape = strings.Trim(strings.TrimSpace(rawShape), "()")
	for _, part := range strings.Split(rawShape, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, "", fmt.Errorf("parse shape %q: %w", rawShape, err)
		}
		shape = append(shape, d)
	}
	if len(shape) == 0 {
		shape = []int{1}
	}
	return shape, dtype, nil
}

// dictValue достаёт значение ключа из заголовка-словаря.
func dictValue(header, key string) (string, error) {
	marker := "'" + key + "':"
	idx := strings.Index(header, marker)
	if idx < 0 {
		return "", fmt.Errorf("%w: header missing key %q", ErrNotNPY, key)
	}
	rest := header[idx+len(marker):]

	// Значение — до запятой верхнего уровня (скобки shape учитываем).
	depth := 0
	for i, c := range rest {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				return strings.TrimSpace(rest[:i]), nil
			}
		case '}':
			return strings.TrimSpace(rest[:i]), nil
		}
	}
	return strings.TrimSpace(rest), nil
}
