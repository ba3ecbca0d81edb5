package jsonrpc2

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"unicode"
)

// Handler is a callable method. Params are the request's params: an array, an
// object, or nil.
type Handler interface {
	Call(ctx context.Context, params json.RawMessage) (interface{}, error)
}

// HandlerFunc adapts a function into a Handler.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

func (f HandlerFunc) Call(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return f(ctx, params)
}

// Server contains the method registry. The zero value is ready to use.
// Registration is expected to happen before the server is shared, Call is safe
// for concurrent use.
type Server struct {
	mu       sync.RWMutex
	registry map[string]Handler
}

// NewServer returns an empty Server.
func NewServer() *Server {
	return &Server{}
}

// Handle registers a handler for the method name. Registering the same name
// again replaces the previous handler.
func (s *Server) Handle(name string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.registry == nil {
		s.registry = map[string]Handler{}
	}
	s.registry[name] = h
}

// HandleFunc registers a function for the method name.
func (s *Server) HandleFunc(name string, fn func(ctx context.Context, params json.RawMessage) (interface{}, error)) {
	s.Handle(name, HandlerFunc(fn))
}

// Register adds valid methods from the receiver to the registry with the given
// prefix. The first letter of each method name is lowercased.
func (s *Server) Register(prefix string, receiver interface{}) error {
	methods, err := Methods(receiver)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for name, m := range methods {
		m := m
		buf.WriteString(prefix)
		buf.WriteRune(unicode.ToLower(rune(name[0])))
		buf.WriteString(name[1:])
		s.Handle(buf.String(), &m)
		buf.Reset()
	}
	return nil
}

// RegisterMethod adds a single method of the receiver to the registry under
// the given name.
func (s *Server) RegisterMethod(name string, receiver interface{}, methodName string) error {
	m, err := MethodByName(receiver, methodName)
	if err != nil {
		return err
	}
	s.Handle(name, m)
	return nil
}

// Methods returns the sorted registered method names.
func (s *Server) Methods() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.registry))
	for name := range s.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Server) lookup(name string) (Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.registry[name]
	return h, ok
}

// Call dispatches a validated request to its handler. It always returns a
// response that echoes the request's id and version.
func (s *Server) Call(ctx context.Context, req *Request) Response {
	h, ok := s.lookup(req.Method())
	if !ok {
		return NewFailure(req.Version(), ErrMethodNotFound, req.ID())
	}

	res, rpcErr := invoke(ctx, h, req.Params())
	if rpcErr != nil {
		return NewFailure(req.Version(), rpcErr, req.ID())
	}
	result, err := json.Marshal(res)
	if err != nil {
		return NewFailure(req.Version(), FromParts(ErrCodeServer, fmt.Sprintf("failed to encode result: %s", err), nil), req.ID())
	}
	return NewSuccess(req.Version(), result, req.ID())
}

// invoke calls the handler and maps its failure into a server error. A panic,
// including one raised while mapping the error, becomes a server error too.
func invoke(ctx context.Context, h Handler, params json.RawMessage) (res interface{}, rpcErr *Error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("handler panic: %v", r)
			res, rpcErr = nil, FromParts(ErrCodeServer, fmt.Sprint(r), nil)
		}
	}()
	res, err := h.Call(ctx, params)
	if rpcErr = serverError(err); rpcErr != nil {
		return nil, rpcErr
	}
	return res, nil
}

// serverError maps a handler failure into a server error. Server errors
// returned by the handler keep their code and data, other *Error values keep
// their message. A nil *Error stored in a non-nil error is no failure.
func serverError(err error) *Error {
	if err == nil {
		return nil
	}
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		switch {
		case rpcErr == nil:
			return nil
		case rpcErr.Kind() == ServerError:
			return rpcErr
		}
		return FromParts(ErrCodeServer, rpcErr.Message(), nil)
	}
	return FromParts(ErrCodeServer, err.Error(), nil)
}

// ServeMessage parses a request document and dispatches it. A document that
// fails validation produces a Failure carrying the validation error, addressed
// to the request id when it could be read.
func (s *Server) ServeMessage(ctx context.Context, raw []byte) Response {
	req, id, err := decodeRequest(raw)
	if err != nil {
		logger.Printf("rejected request (%s): %s", err, abbrev(raw))
		return NewFailure(Version, err, id)
	}
	return s.Call(ctx, req)
}
