package jsonrpc2

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Reserved error codes.
const (
	ErrCodeParse          = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603

	// ErrCodeServer is the code used for handler failures. Any code within
	// [ErrCodeServerMin, ErrCodeServerMax] is a server error.
	ErrCodeServer    = -32000
	ErrCodeServerMin = -32099
	ErrCodeServerMax = -32000
)

// Kind classifies an Error by its code.
type Kind int

const (
	ParseError Kind = iota
	InvalidRequest
	MethodNotFound
	InvalidParams
	InternalError
	ServerError
	// ApplicationError is any code outside of the reserved ranges, usually
	// reported by a peer.
	ApplicationError
)

var kindNames = map[Kind]string{
	ParseError:       "ParseError",
	InvalidRequest:   "InvalidRequest",
	MethodNotFound:   "MethodNotFound",
	InvalidParams:    "InvalidParams",
	InternalError:    "InternalError",
	ServerError:      "ServerError",
	ApplicationError: "ApplicationError",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var defaultMessages = map[int64]string{
	ErrCodeParse:          "Parse error",
	ErrCodeInvalidRequest: "Invalid Request",
	ErrCodeMethodNotFound: "Method not found",
	ErrCodeInvalidParams:  "Invalid method parameter(s)",
	ErrCodeInternal:       "Internal error",
}

var errMalformedError = errors.New("jsonrpc2: malformed error object")

// Predefined protocol errors. Their messages are fixed and they never carry
// data.
var (
	ErrParse          = FromCode(ErrCodeParse)
	ErrInvalidRequest = FromCode(ErrCodeInvalidRequest)
	ErrMethodNotFound = FromCode(ErrCodeMethodNotFound)
	ErrInvalidParams  = FromCode(ErrCodeInvalidParams)
	ErrInternal       = FromCode(ErrCodeInternal)
)

// Error is a JSON-RPC error object. Values are immutable, use WithMessage and
// WithData to derive modified copies.
type Error struct {
	code    int64
	message string
	data    json.RawMessage
}

// FromCode classifies any code into an Error. Codes that are not one of the
// five named protocol codes produce a ServerError or ApplicationError with an
// empty message and no data.
func FromCode(code int64) *Error {
	return &Error{code: code}
}

// FromParts classifies code and attaches the message and data. Message and
// data are ignored for the named protocol kinds.
func FromParts(code int64, message string, data json.RawMessage) *Error {
	err := FromCode(code)
	if !err.mutable() {
		return err
	}
	err.message = message
	err.data = parseOptionalValue(data)
	return err
}

// NewServerError returns a server error with the given message and optional
// data. Codes outside of the server range are classified as usual.
func NewServerError(code int64, message string, data interface{}) (*Error, error) {
	var raw json.RawMessage
	if data != nil {
		var err error
		if raw, err = json.Marshal(data); err != nil {
			return nil, err
		}
	}
	return FromParts(code, message, raw), nil
}

// Kind returns the classification of the error code.
func (err *Error) Kind() Kind {
	switch err.code {
	case ErrCodeParse:
		return ParseError
	case ErrCodeInvalidRequest:
		return InvalidRequest
	case ErrCodeMethodNotFound:
		return MethodNotFound
	case ErrCodeInvalidParams:
		return InvalidParams
	case ErrCodeInternal:
		return InternalError
	}
	if err.code >= ErrCodeServerMin && err.code <= ErrCodeServerMax {
		return ServerError
	}
	return ApplicationError
}

func (err *Error) mutable() bool {
	k := err.Kind()
	return k == ServerError || k == ApplicationError
}

// Code returns the numeric error code.
func (err *Error) Code() int64 {
	return err.code
}

// ErrorCode returns the code as an int, for callers that classify errors by
// interface{ ErrorCode() int }.
func (err *Error) ErrorCode() int {
	return int(err.code)
}

// Message returns the fixed message for named kinds, or the attached message.
func (err *Error) Message() string {
	if msg, ok := defaultMessages[err.code]; ok {
		return msg
	}
	return err.message
}

// Data returns a copy of the attached data, or nil.
func (err *Error) Data() json.RawMessage {
	return cloneRaw(err.data)
}

// WithMessage returns a copy of err with the message replaced. It returns
// err unchanged and false for the named protocol kinds.
func (err *Error) WithMessage(message string) (*Error, bool) {
	if !err.mutable() {
		return err, false
	}
	cp := *err
	cp.message = message
	return &cp, true
}

// WithData returns a copy of err with the data replaced. It returns err
// unchanged and false for the named protocol kinds.
func (err *Error) WithData(data json.RawMessage) (*Error, bool) {
	if !err.mutable() {
		return err, false
	}
	cp := *err
	cp.data = cloneRaw(normalizeNull(data))
	return &cp, true
}

func (err *Error) Error() string {
	return fmt.Sprintf("%d: %s", err.code, err.Message())
}

// Is reports whether target is an *Error with the same code.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.code == err.code
}

// errorObject is the wire form. Fields are in alphabetical order.
type errorObject struct {
	Code    int64           `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (err *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(errorObject{
		Code:    err.code,
		Data:    err.data,
		Message: err.Message(),
	})
}

func (err *Error) UnmarshalJSON(data []byte) error {
	obj, perr := decodeObject(data)
	if perr != nil {
		return perr
	}
	code, message, errData, ok := parseErrorFields(obj)
	if !ok {
		return errMalformedError
	}
	*err = *FromParts(code, message, errData)
	return nil
}

// ParseErrorObject extracts the code, message and data of the "error" member
// of a decoded document. ok is false if the member is missing or malformed.
func ParseErrorObject(doc map[string]json.RawMessage) (code int64, message string, data json.RawMessage, ok bool) {
	raw, exists := doc["error"]
	if !exists || kindOf(raw) != jsonObject {
		return 0, "", nil, false
	}
	obj := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, "", nil, false
	}
	return parseErrorFields(obj)
}

func parseErrorFields(obj map[string]json.RawMessage) (code int64, message string, data json.RawMessage, ok bool) {
	code, ok = parseCode(obj["code"])
	if !ok {
		return 0, "", nil, false
	}
	message, ok = parseMessage(obj["message"])
	if !ok {
		return 0, "", nil, false
	}
	return code, message, parseOptionalValue(obj["data"]), true
}
