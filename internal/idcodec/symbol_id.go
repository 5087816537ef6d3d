package idcodec

import (
	"github.com/kensave/CodeCortX-MCP/internal/types"
)

// EncodeSymbolID encodes a SymbolID — the store's stable 64-bit hash of
// (path, name, kind, start byte) — to its base-63 display form. This is
// the canonical rendering used in every query result.
func EncodeSymbolID(id types.SymbolID) string {
	return Encode(uint64(id))
}

// DecodeSymbolID decodes a base-63 display string back to a SymbolID.
func DecodeSymbolID(encoded string) (types.SymbolID, error) {
	value, err := Decode(encoded)
	if err != nil {
		return 0, err
	}
	return types.SymbolID(value), nil
}

// EncodeFileID encodes a FileID to its base-63 display form.
func EncodeFileID(id types.FileID) string {
	return Encode(uint64(id))
}

// DecodeFileID decodes a base-63 display string back to a FileID.
func DecodeFileID(encoded string) (types.FileID, error) {
	value, err := Decode(encoded)
	if err != nil {
		return 0, err
	}
	if value > uint64(^types.FileID(0)) {
		return 0, ErrOverflow
	}
	return types.FileID(value), nil
}
