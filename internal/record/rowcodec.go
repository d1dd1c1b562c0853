package record

import (
	"errors"
	"math"
	"time"

	"github.com/tuannm99/mydb/internal/alias/bx"
)

var (
	ErrSchemaMismatch  = errors.New("rowcodec: schema/values mismatch")
	ErrBadBuffer       = errors.New("rowcodec: buffer underflow/overflow")
	ErrVarTooLong      = errors.New("rowcodec: variable length exceeds u16")
	ErrUnsupportedType = errors.New("rowcodec: unsupported type")
)

// EncodeRow serializes values in schema order.
// Format:
// [nullmap: ceil(N/8) bytes, bit=1 => NULL] | [field0 data?] [field1 data?] ...
// INT: i64 LE, DATE: unix seconds i64 LE, CHAR: u16 length (LE) + UTF-8 bytes.
// The encoding is deterministic so an encoded row can serve as its own key.
func EncodeRow(s Schema, values []any) ([]byte, error) {
	nc := s.NumCols()
	if len(values) != nc {
		return nil, ErrSchemaMismatch
	}

	nbBytes := (nc + 7) / 8
	out := make([]byte, nbBytes)

	for i, col := range s.Cols {
		v := values[i]
		if v == nil {
			if !col.Nullable {
				return nil, ErrSchemaMismatch
			}
			out[i/8] |= 1 << (uint(i) & 7)
			continue
		}

		switch col.Type.Kind {
		case KindInt:
			x, ok := asInt64(v)
			if !ok {
				return nil, ErrSchemaMismatch
			}
			out = bx.AppendI64(out, x)

		case KindDate:
			d, ok := v.(time.Time)
			if !ok {
				return nil, ErrSchemaMismatch
			}
			out = bx.AppendI64(out, d.Unix())

		case KindChar:
			str, ok := v.(string)
			if !ok {
				return nil, ErrSchemaMismatch
			}
			if len(str) > math.MaxUint16 {
				return nil, ErrVarTooLong
			}
			out = bx.AppendBytes16(out, []byte(str))

		default:
			return nil, ErrUnsupportedType
		}
	}
	return out, nil
}

func DecodeRow(s Schema, buf []byte) ([]any, error) {
	nc := s.NumCols()
	nbBytes := (nc + 7) / 8
	if len(buf) < nbBytes {
		return nil, ErrBadBuffer
	}
	nullmap := buf[:nbBytes]
	i := nbBytes

	out := make([]any, nc)
	for colIdx, col := range s.Cols {
		if (nullmap[colIdx/8]>>(uint(colIdx)&7))&1 == 1 {
			continue
		}

		switch col.Type.Kind {
		case KindInt:
			if i+8 > len(buf) {
				return nil, ErrBadBuffer
			}
			out[colIdx] = bx.I64(buf[i : i+8])
			i += 8

		case KindDate:
			if i+8 > len(buf) {
				return nil, ErrBadBuffer
			}
			out[colIdx] = time.Unix(bx.I64(buf[i:i+8]), 0).UTC()
			i += 8

		case KindChar:
			if i+2 > len(buf) {
				return nil, ErrBadBuffer
			}
			l := int(bx.U16(buf[i : i+2]))
			i += 2
			if i+l > len(buf) {
				return nil, ErrBadBuffer
			}
			out[colIdx] = string(buf[i : i+l])
			i += l

		default:
			return nil, ErrUnsupportedType
		}
	}

	if i != len(buf) {
		return nil, ErrBadBuffer
	}
	return out, nil
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	}
	return 0, false
}
