package jsonrpc2

import (
	"context"
	"encoding/json"
	"sync/atomic"
)

// Client allocates request ids. The zero value starts at 1.
type Client struct {
	id int64
}

func (c *Client) NextID() ID {
	return NewID(atomic.AddInt64(&c.id, 1))
}

// Request builds a request with the next id. Params are encoded as a
// positional array, no params are encoded as an empty array.
func (c *Client) Request(method string, params ...interface{}) (*Request, error) {
	if params == nil {
		params = []interface{}{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return NewRequest(method, raw, c.NextID()), nil
}

// Service is a JSON-RPC endpoint that requests can be sent to.
type Service interface {
	// Do sends the request and returns the peer's response.
	Do(ctx context.Context, req *Request) (Response, error)
}

// Call sends a request through the service and returns its result. A Failure
// response is returned as its *Error. A missing or null result is nil.
func Call(ctx context.Context, service Service, req *Request) (json.RawMessage, error) {
	resp, err := service.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	switch r := resp.(type) {
	case *Success:
		return r.Result(), nil
	case *Failure:
		return nil, r.Err()
	}
	return nil, ErrInternal
}
