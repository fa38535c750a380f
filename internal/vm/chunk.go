package vm

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"math"
)

// Chunk is a growable bytecode buffer.
type Chunk struct {
	Code []byte
}

// NewChunk creates a new empty chunk
func NewChunk() *Chunk {
	return &Chunk{Code: make([]byte, 0, 256)}
}

// Write appends a raw byte
func (c *Chunk) Write(b byte) {
	c.Code = append(c.Code, b)
}

// WriteOp appends an opcode
func (c *Chunk) WriteOp(op Opcode) {
	c.Code = append(c.Code, byte(op))
}

func (c *Chunk) WriteU32(v uint32) {
	c.Code = binary.LittleEndian.AppendUint32(c.Code, v)
}

func (c *Chunk) WriteI32(v int32) {
	c.WriteU32(uint32(v))
}

func (c *Chunk) WriteF64(v float64) {
	c.Code = binary.LittleEndian.AppendUint64(c.Code, math.Float64bits(v))
}

// WriteCString appends s followed by a null byte. s must not contain null bytes.
func (c *Chunk) WriteCString(s string) {
	c.Code = append(c.Code, s...)
	c.Code = append(c.Code, 0)
}

// WriteBytes appends raw bytes
func (c *Chunk) WriteBytes(b []byte) {
	c.Code = append(c.Code, b...)
}

// PatchI32 overwrites the 4 bytes at offset
func (c *Chunk) PatchI32(offset int, v int32) {
	binary.LittleEndian.PutUint32(c.Code[offset:], uint32(v))
}

// Len returns the current length of the bytecode
func (c *Chunk) Len() int {
	return len(c.Code)
}

// encodeString turns a string literal into a null-free operand.
func encodeString(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func decodeString(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Operand readers. Each returns the decoded value and the offset just past it,
// and panics with errTruncatedBytecode when the operand runs off the end.

func readU32(code []byte, off int) (uint32, int) {
	if off < 0 || off+4 > len(code) {
		panic(errTruncatedBytecode)
	}
	return binary.LittleEndian.Uint32(code[off:]), off + 4
}

func readI32(code []byte, off int) (int32, int) {
	v, next := readU32(code, off)
	return int32(v), next
}

func readF64(code []byte, off int) (float64, int) {
	if off < 0 || off+8 > len(code) {
		panic(errTruncatedBytecode)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(code[off:])), off + 8
}

func readByte(code []byte, off int) (byte, int) {
	if off < 0 || off >= len(code) {
		panic(errTruncatedBytecode)
	}
	return code[off], off + 1
}

func readCString(code []byte, off int) (string, int) {
	if off < 0 || off > len(code) {
		panic(errTruncatedBytecode)
	}
	end := bytes.IndexByte(code[off:], 0)
	if end < 0 {
		panic(errTruncatedBytecode)
	}
	return string(code[off : off+end]), off + end + 1
}
