// stand for bytes helper
package bx

import "encoding/binary"

var LE = binary.LittleEndian

// --- read ---
func U16(b []byte) uint16 { return LE.Uint16(b) }
func U64(b []byte) uint64 { return LE.Uint64(b) }
func I64(b []byte) int64  { return int64(U64(b)) }

// --- append ---
func AppendU16(dst []byte, v uint16) []byte { return LE.AppendUint16(dst, v) }
func AppendU64(dst []byte, v uint64) []byte { return LE.AppendUint64(dst, v) }
func AppendI64(dst []byte, v int64) []byte  { return AppendU64(dst, uint64(v)) }

// AppendBytes16 writes a u16 length prefix followed by b.
// The caller checks len(b) <= math.MaxUint16.
func AppendBytes16(dst, b []byte) []byte {
	dst = AppendU16(dst, uint16(len(b)))
	return append(dst, b...)
}
