package jsonrpc2

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestRemote(t *testing.T) {
	c1, c2 := net.Pipe()
	s := testServer()
	remote := Remote{Codec: IOCodec(c1)}

	var g errgroup.Group
	g.Go(func() error {
		return s.ServeCodec(context.Background(), IOCodec(c2))
	})

	ctx := context.Background()
	got, err := remote.Call(ctx, "add", 1, 41)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "42" {
		t.Errorf("got: %s; want 42", got)
	}

	resp, err := remote.Do(ctx, NewRequest("kv", json.RawMessage(`{"key":"a","value":"b"}`), NewID(100)))
	if err != nil {
		t.Fatal(err)
	}
	assertJSON(t, resp, `{"id":100,"jsonrpc":"2.0","result":"a:b"}`, "kv")

	_, err = remote.Call(ctx, "missing")
	if !errors.Is(err, ErrMethodNotFound) {
		t.Errorf("got: %v; want method not found", err)
	}

	remote.Close()
	if err := g.Wait(); err != nil {
		t.Error(err)
	}
}

func TestRemoteDropsUnexpectedID(t *testing.T) {
	c1, c2 := net.Pipe()
	remote := Remote{Codec: IOCodec(c1)}
	peer := IOCodec(c2)

	var g errgroup.Group
	g.Go(func() error {
		msg, err := peer.ReadMessage()
		if err != nil {
			return err
		}
		req, err := ParseRequest(msg)
		if err != nil {
			return err
		}
		stale, _ := NewSuccess(Version, json.RawMessage(`"stale"`), NewID(999)).MarshalJSON()
		if err := peer.WriteMessage(stale); err != nil {
			return err
		}
		fresh, _ := NewSuccess(Version, json.RawMessage(`"fresh"`), req.ID()).MarshalJSON()
		return peer.WriteMessage(fresh)
	})

	got, err := remote.Call(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `"fresh"` {
		t.Errorf("got: %s", got)
	}
	if err := g.Wait(); err != nil {
		t.Error(err)
	}
}

func TestRemoteContextCancel(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c2.Close()
	remote := Remote{Codec: IOCodec(c1)}

	// Swallow the request and never answer.
	go IOCodec(c2).ReadMessage()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := remote.Call(ctx, "slow"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got: %v; want deadline exceeded", err)
	}
}
