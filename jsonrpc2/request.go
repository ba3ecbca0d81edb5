package jsonrpc2

import (
	"encoding/json"
	"strconv"
)

// Version is the only protocol version produced by this package.
const Version = "2.0"

// ID is an optional integer request identifier. The zero value is absent.
type ID struct {
	value int64
	ok    bool
}

// NewID returns a present ID.
func NewID(n int64) ID {
	return ID{value: n, ok: true}
}

// Int64 returns the identifier and whether it is present.
func (id ID) Int64() (int64, bool) {
	return id.value, id.ok
}

// IsZero is true for an absent ID.
func (id ID) IsZero() bool {
	return !id.ok
}

func (id ID) String() string {
	if !id.ok {
		return "null"
	}
	return strconv.FormatInt(id.value, 10)
}

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	parsed, ok := parseID(data, true)
	if !ok {
		return ErrInvalidRequest
	}
	*id = parsed
	return nil
}

// Request is a validated JSON-RPC request.
type Request struct {
	version string
	method  string
	params  json.RawMessage
	id      ID
}

// NewRequest builds a request. Params should be an array, an object or nil.
func NewRequest(method string, params json.RawMessage, id ID) *Request {
	return &Request{
		version: Version,
		method:  method,
		params:  parseOptionalValue(params),
		id:      id,
	}
}

// ParseRequest parses and validates a request document.
func ParseRequest(raw []byte) (*Request, error) {
	req, _, err := decodeRequest(raw)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// decodeRequest also returns the id when it could be parsed, so that a
// failure can still be addressed to the caller.
func decodeRequest(raw []byte) (*Request, ID, *Error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, ID{}, err
	}

	version, versionOK := parseVersion(obj["jsonrpc"])
	rawID, hasID := obj["id"]
	id, idOK := parseID(rawID, hasID)
	method, methodOK := parseMethod(obj["method"])
	rawParams, hasParams := obj["params"]
	params, paramsOK := parseParams(rawParams, hasParams)

	switch {
	case !versionOK && !idOK:
		return nil, ID{}, ErrInvalidRequest
	case !methodOK:
		return nil, id, ErrMethodNotFound
	case !paramsOK:
		return nil, id, ErrInvalidParams
	}
	if !versionOK {
		version = Version
	}
	return &Request{
		version: version,
		method:  method,
		params:  params,
		id:      id,
	}, id, nil
}

// Version is always "2.0".
func (req *Request) Version() string {
	return req.version
}

func (req *Request) Method() string {
	return req.method
}

// Params returns a copy of the params, or nil if there are none.
func (req *Request) Params() json.RawMessage {
	return cloneRaw(req.params)
}

func (req *Request) ID() ID {
	return req.id
}

// requestObject is the wire form. Fields are in alphabetical order, absent
// values are written as null.
type requestObject struct {
	ID      ID              `json:"id"`
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

func (req *Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(requestObject{
		ID:      req.id,
		Version: req.version,
		Method:  req.method,
		Params:  req.params,
	})
}

func (req *Request) UnmarshalJSON(data []byte) error {
	parsed, _, err := decodeRequest(data)
	if err != nil {
		return err
	}
	*req = *parsed
	return nil
}

func (req *Request) String() string {
	b, err := json.Marshal(req)
	if err != nil {
		return err.Error()
	}
	return string(b)
}
