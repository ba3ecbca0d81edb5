package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/vipnode/jsonrpc/internal/config"
	"github.com/vipnode/jsonrpc/jsonrpc2"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws/gobwas"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws/gorilla"
)

type callArgs struct {
	Endpoint  string
	WebSocket string
	Method    string
	Params    string
	ID        int64
}

func newDialer(name string) ws.Dialer {
	if name == config.WebSocketGobwas {
		return gobwas.WebSocketDial
	}
	return gorilla.WebSocketDial
}

// dialService picks the transport from the endpoint's URL scheme.
func dialService(ctx context.Context, endpoint string, websocket string) (jsonrpc2.Service, func() error, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, nil, ErrExplain{err, "The --endpoint value is not a valid URL."}
	}
	switch u.Scheme {
	case "http", "https":
		return &jsonrpc2.HTTPService{Endpoint: endpoint}, func() error { return nil }, nil
	case "ws", "wss":
		codec, err := newDialer(websocket)(ctx, endpoint)
		if err != nil {
			return nil, nil, ErrExplain{err, "Failed to open a websocket to the endpoint."}
		}
		return &jsonrpc2.Remote{Codec: codec}, codec.Close, nil
	}
	return nil, nil, ErrExplain{fmt.Errorf("unsupported URL scheme: %q", u.Scheme), "Use an http://, https://, ws:// or wss:// endpoint."}
}

// runCall sends one request and writes the result to w. An error response is
// returned as the server's *jsonrpc2.Error.
func runCall(w io.Writer, args callArgs) error {
	var params json.RawMessage
	if args.Params != "" {
		params = json.RawMessage(args.Params)
		if !json.Valid(params) {
			return ErrExplain{errors.New("params are not valid JSON"), `Pass params as a JSON array or object, e.g. '[10, 20]'.`}
		}
	}

	ctx := context.Background()
	service, closer, err := dialService(ctx, args.Endpoint, args.WebSocket)
	if err != nil {
		return err
	}
	defer closer()

	req := jsonrpc2.NewRequest(args.Method, params, jsonrpc2.NewID(args.ID))
	logger.Debugf("Sending to %s: %s", args.Endpoint, req)
	result, err := jsonrpc2.Call(ctx, service, req)
	if err != nil {
		return err
	}
	if result == nil {
		result = json.RawMessage("null")
	}
	_, err = fmt.Fprintf(w, "%s\n", result)
	return err
}
