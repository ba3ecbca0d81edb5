package main

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/vipnode/jsonrpc/jsonrpc2"
)

var errBadParams = errors.New("bad params")

// registerBuiltins adds the methods served by `jsonrpc serve`.
func registerBuiltins(s *jsonrpc2.Server) error {
	s.HandleFunc("hello", hello)
	s.HandleFunc("add", add)
	s.HandleFunc("kv", kv)
	s.HandleFunc("echo", echo)
	return s.Register("rpc_", &RPCService{server: s})
}

func hello(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return "Hello World", nil
}

// add sums two numeric positional params. Integer sums that overflow int64
// are computed as floats.
func add(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var nums []json.Number
	if err := json.Unmarshal(params, &nums); err != nil || len(nums) != 2 {
		return nil, errBadParams
	}
	if a, errA := nums[0].Int64(); errA == nil {
		if b, errB := nums[1].Int64(); errB == nil {
			if sum := a + b; (sum > a) == (b > 0) {
				return sum, nil
			}
		}
	}
	a, errA := nums[0].Float64()
	b, errB := nums[1].Float64()
	if errA != nil || errB != nil {
		return nil, errBadParams
	}
	return a + b, nil
}

// kv joins the key and value of an object param with a colon.
func kv(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var obj struct {
		Key   *string `json:"key"`
		Value *string `json:"value"`
	}
	if err := json.Unmarshal(params, &obj); err != nil || obj.Key == nil || obj.Value == nil {
		return nil, errBadParams
	}
	return *obj.Key + ":" + *obj.Value, nil
}

func echo(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return params, nil
}

// RPCService describes the server itself.
type RPCService struct {
	server *jsonrpc2.Server
}

// Methods lists the registered method names.
func (s *RPCService) Methods() []string {
	return s.server.Methods()
}

func (s *RPCService) Version() string {
	return Version
}
