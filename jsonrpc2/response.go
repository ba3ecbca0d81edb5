package jsonrpc2

import "encoding/json"

// Response is either a *Success or a *Failure.
type Response interface {
	Version() string
	ID() ID
	json.Marshaler

	isResponse()
}

var (
	_ Response = &Success{}
	_ Response = &Failure{}
)

// Success is a response carrying a result.
type Success struct {
	version string
	result  json.RawMessage
	id      ID
}

// NewSuccess returns a successful response. A null result is stored as no
// result.
func NewSuccess(version string, result json.RawMessage, id ID) *Success {
	return &Success{
		version: version,
		result:  parseOptionalValue(result),
		id:      id,
	}
}

func (*Success) isResponse() {}

func (s *Success) Version() string {
	return s.version
}

func (s *Success) ID() ID {
	return s.id
}

// Result returns a copy of the result, or nil.
func (s *Success) Result() json.RawMessage {
	return cloneRaw(s.result)
}

type successObject struct {
	ID      ID              `json:"id"`
	Version string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
}

func (s *Success) MarshalJSON() ([]byte, error) {
	return json.Marshal(successObject{
		ID:      s.id,
		Version: s.version,
		Result:  s.result,
	})
}

func (s *Success) String() string {
	return marshalString(s)
}

// Failure is a response carrying an error.
type Failure struct {
	version string
	err     *Error
	id      ID
}

// NewFailure returns a failed response. A nil err is reported as an internal
// error.
func NewFailure(version string, err *Error, id ID) *Failure {
	if err == nil {
		err = ErrInternal
	}
	return &Failure{
		version: version,
		err:     err,
		id:      id,
	}
}

func (*Failure) isResponse() {}

func (f *Failure) Version() string {
	return f.version
}

func (f *Failure) ID() ID {
	return f.id
}

// Err returns the error object of the response.
func (f *Failure) Err() *Error {
	return f.err
}

type failureObject struct {
	Error   *Error `json:"error"`
	ID      ID     `json:"id"`
	Version string `json:"jsonrpc"`
}

func (f *Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(failureObject{
		Error:   f.err,
		ID:      f.id,
		Version: f.version,
	})
}

func (f *Failure) String() string {
	return marshalString(f)
}

// ParseResponse parses and validates a response document. Documents that are
// not a well-formed response are reported as internal errors.
func ParseResponse(raw []byte) (Response, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	version, versionOK := parseVersion(obj["jsonrpc"])
	rawID, hasID := obj["id"]
	id, idOK := parseID(rawID, hasID)
	if !versionOK && !idOK {
		return nil, ErrInternal
	}
	if !versionOK {
		version = Version
	}

	rawResult, hasResult := obj["result"]
	result, resultOK := parseResult(rawResult, hasResult)
	code, message, data, errorOK := ParseErrorObject(obj)

	switch {
	case resultOK && errorOK:
		return nil, ErrInternal
	case resultOK:
		return &Success{version: version, result: result, id: id}, nil
	case errorOK:
		return &Failure{version: version, err: FromParts(code, message, data), id: id}, nil
	}
	return nil, ErrInternal
}

// UnmarshalResponse is a convenience wrapper for decoding a Success result
// into v. A Failure is returned as its *Error.
func UnmarshalResponse(resp Response, v interface{}) error {
	switch r := resp.(type) {
	case *Failure:
		return r.err
	case *Success:
		if r.result == nil {
			return nil
		}
		return json.Unmarshal(r.result, v)
	}
	return ErrInternal
}

func marshalString(m json.Marshaler) string {
	b, err := m.MarshalJSON()
	if err != nil {
		return err.Error()
	}
	return string(b)
}
