package jsonrpc2

import (
	"context"
	"errors"
	"testing"
)

func TestLocal(t *testing.T) {
	loc := Local{}
	loc.HandleFunc("add", addHandler)
	if err := loc.Register("fruit_", &FruitService{}); err != nil {
		t.Fatal(err)
	}

	got, err := loc.Call(context.Background(), "add", 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "5" {
		t.Errorf("got: %s; want 5", got)
	}

	got, err = loc.Call(context.Background(), "fruit_basket", "fig", 2)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `"2 fig"` {
		t.Errorf("got: %s", got)
	}

	_, err = loc.Call(context.Background(), "add", "x")
	var rpcErr *Error
	if !errors.As(err, &rpcErr) || rpcErr.Kind() != ServerError || rpcErr.Message() != "bad params" {
		t.Errorf("got: %v", err)
	}
}
