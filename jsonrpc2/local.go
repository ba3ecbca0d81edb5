package jsonrpc2

import (
	"context"
	"encoding/json"
)

var _ Service = &Local{}

// Local is a Service for an in-process Server. Requests and responses still go
// through their wire form, so the server sees exactly what a remote peer would
// send.
type Local struct {
	Client
	Server
}

func (loc *Local) Do(ctx context.Context, req *Request) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	out, err := loc.Server.ServeMessage(ctx, body).MarshalJSON()
	if err != nil {
		return nil, err
	}
	return ParseResponse(out)
}

// Call sends a positional-params request to the local server and returns its
// result.
func (loc *Local) Call(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	req, err := loc.Client.Request(method, params...)
	if err != nil {
		return nil, err
	}
	return Call(ctx, loc, req)
}
