package jsonrpc2

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

type FruitService struct{}

func (f *FruitService) Apple() string {
	return "Apple"
}

func (f *FruitService) Banana() error {
	return nil
}

func (f *FruitService) Cherry() (string, error) {
	return "Cherry", nil
}

func (f *FruitService) Durian() error {
	return errors.New("durian failure")
}

// Elderberry returns a nil *Error as a non-nil error.
func (f *FruitService) Elderberry() error {
	var err *Error
	return err
}

func (f *FruitService) Basket(ctx context.Context, fruit string, count int) (string, error) {
	if ctx == nil {
		return "", errors.New("missing context")
	}
	return fmt.Sprintf("%d %s", count, fruit), nil
}

func helloHandler(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return "Hello World", nil
}

func addHandler(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var nums []float64
	if kindOf(params) != jsonArray || json.Unmarshal(params, &nums) != nil || len(nums) != 2 {
		return nil, errors.New("bad params")
	}
	return nums[0] + nums[1], nil
}

func kvHandler(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var kv struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if kindOf(params) != jsonObject {
		return nil, errors.New("bad params")
	}
	if err := json.Unmarshal(params, &kv); err != nil {
		return nil, err
	}
	return kv.Key + ":" + kv.Value, nil
}

// testServer has the handlers used by the dispatcher scenarios.
func testServer() *Server {
	s := NewServer()
	s.HandleFunc("hello", helloHandler)
	s.HandleFunc("add", addHandler)
	s.HandleFunc("kv", kvHandler)
	return s
}

func assertEqualJSON(t *testing.T, a, b interface{}, format string, args ...interface{}) {
	t.Helper()

	aa, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}
	bb, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(aa, bb) {
		prefix := fmt.Sprintf(format, args...)
		t.Errorf(prefix+"\n   got: %s\n  want: %s", aa, bb)
	}
}

// assertJSON compares the serialized form of a value with a literal document.
func assertJSON(t *testing.T, got json.Marshaler, want string, format string, args ...interface{}) {
	t.Helper()

	b, err := got.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != want {
		prefix := fmt.Sprintf(format, args...)
		t.Errorf(prefix+"\n   got: %s\n  want: %s", b, want)
	}
}
