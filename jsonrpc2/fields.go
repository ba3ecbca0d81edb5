package jsonrpc2

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Helpers for JSON parsing. Sub-parsers return ok=false on a shape failure,
// the caller decides which error kind it becomes.

type jsonKind int

const (
	jsonInvalid jsonKind = iota
	jsonNull
	jsonBool
	jsonNumber
	jsonString
	jsonArray
	jsonObject
)

// kindOf classifies a raw JSON value by its first non-space byte.
func kindOf(raw json.RawMessage) jsonKind {
	for _, b := range raw {
		if isSpace(b) {
			continue
		}
		switch {
		case b == '{':
			return jsonObject
		case b == '[':
			return jsonArray
		case b == '"':
			return jsonString
		case b == 'n':
			return jsonNull
		case b == 't' || b == 'f':
			return jsonBool
		case b == '-' || (b >= '0' && b <= '9'):
			return jsonNumber
		}
		return jsonInvalid
	}
	return jsonInvalid
}

// isSpace returns true if the byte is considered a space in JSON syntax.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// decodeObject decodes a document into its top-level members. Invalid JSON
// and non-object documents are parse errors.
func decodeObject(raw []byte) (map[string]json.RawMessage, *Error) {
	if !json.Valid(raw) {
		logger.Printf("invalid JSON document: %s", abbrev(raw))
		return nil, ErrParse
	}
	if kindOf(raw) != jsonObject {
		return nil, ErrParse
	}
	obj := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, ErrParse
	}
	return obj, nil
}

// parseVersion accepts "2.0" and its alias "2".
func parseVersion(raw json.RawMessage) (string, bool) {
	if kindOf(raw) != jsonString {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	if s == Version || s == "2" {
		return Version, true
	}
	return "", false
}

func parseMethod(raw json.RawMessage) (string, bool) {
	if kindOf(raw) != jsonString {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// parseParams accepts an array, an object or null. A missing member is a
// shape failure.
func parseParams(raw json.RawMessage, present bool) (json.RawMessage, bool) {
	if !present {
		return nil, false
	}
	switch kindOf(raw) {
	case jsonNull:
		return nil, true
	case jsonArray, jsonObject:
		return cloneRaw(raw), true
	}
	return nil, false
}

// parseID accepts an integer that fits in an int64, or null. A missing member
// is a shape failure.
func parseID(raw json.RawMessage, present bool) (ID, bool) {
	if !present {
		return ID{}, false
	}
	switch kindOf(raw) {
	case jsonNull:
		return ID{}, true
	case jsonNumber:
		n, err := strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, 64)
		if err != nil {
			return ID{}, false
		}
		return NewID(n), true
	}
	return ID{}, false
}

// parseResult accepts any value. Null becomes an absent result.
func parseResult(raw json.RawMessage, present bool) (json.RawMessage, bool) {
	if !present {
		return nil, false
	}
	if kindOf(raw) == jsonInvalid {
		return nil, false
	}
	return parseOptionalValue(raw), true
}

// parseCode accepts integer encodings of an error code: signed, unsigned
// (wrapped into int64) or floating point (truncated).
func parseCode(raw json.RawMessage) (int64, bool) {
	if kindOf(raw) != jsonNumber {
		return 0, false
	}
	s := string(bytes.TrimSpace(raw))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return int64(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// parseMessage accepts a string. A missing or null message is empty.
func parseMessage(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", true
	}
	switch kindOf(raw) {
	case jsonNull:
		return "", true
	case jsonString:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	}
	return "", false
}

// parseOptionalValue returns a copy of raw, or nil if it is missing or null.
func parseOptionalValue(raw json.RawMessage) json.RawMessage {
	return cloneRaw(normalizeNull(raw))
}

func normalizeNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || kindOf(raw) == jsonNull {
		return nil
	}
	return raw
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return cp
}
