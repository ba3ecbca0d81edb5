package jsonrpc2

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

var _ Service = &Remote{}

// Remote is a Service over a Codec, such as a websocket or a stdio stream.
// Calls are serialized: each one writes a request and waits for the response
// with the same id. Responses for other ids are dropped.
type Remote struct {
	Codec
	Client

	mu sync.Mutex
}

type readResult struct {
	resp Response
	err  error
}

func (r *Remote) Do(ctx context.Context, req *Request) (Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	body, err := req.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if err := r.Codec.WriteMessage(body); err != nil {
		return nil, err
	}

	done := make(chan readResult, 1)
	go func() {
		done <- r.receive(req.ID())
	}()
	select {
	case res := <-done:
		return res.resp, res.err
	case <-ctx.Done():
		// The pending read still owns the codec, close it to release it.
		r.Codec.Close()
		return nil, ctx.Err()
	}
}

func (r *Remote) receive(id ID) readResult {
	for {
		msg, err := r.Codec.ReadMessage()
		if err != nil {
			return readResult{err: err}
		}
		resp, err := ParseResponse(msg)
		if err != nil {
			return readResult{err: fmt.Errorf("%w: %s", ErrResponseDecode, err)}
		}
		if resp.ID() != id {
			logger.Printf("Remote: dropping response for unexpected id %s: %s", resp.ID(), abbrev(msg))
			continue
		}
		return readResult{resp: resp}
	}
}

// Call sends a positional-params request and returns its result.
func (r *Remote) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	req, err := r.Client.Request(method, params...)
	if err != nil {
		return nil, err
	}
	return Call(ctx, r, req)
}
