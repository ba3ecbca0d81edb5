package gorilla

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vipnode/jsonrpc/jsonrpc2"
)

func TestUpgrader(t *testing.T) {
	s := jsonrpc2.NewServer()
	s.HandleFunc("kv", func(ctx context.Context, params json.RawMessage) (interface{}, error) {
		var kv map[string]string
		if err := json.Unmarshal(params, &kv); err != nil {
			return nil, err
		}
		return kv["key"] + ":" + kv["value"], nil
	})

	upgrader := &Upgrader{}
	errChan := make(chan error, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		codec, err := upgrader.Upgrade(r, w, nil)
		if err != nil {
			errChan <- err
			return
		}
		defer codec.Close()
		errChan <- s.ServeCodec(r.Context(), codec)
	}))
	defer ts.Close()

	ctx := context.Background()
	codec, err := WebSocketDial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"))
	if err != nil {
		t.Fatal(err)
	}
	remote := &jsonrpc2.Remote{Codec: codec}

	resp, err := remote.Do(ctx, jsonrpc2.NewRequest("kv", json.RawMessage(`{"key":"imkey","value":"imvalue"}`), jsonrpc2.NewID(3)))
	if err != nil {
		t.Fatal(err)
	}
	out, _ := resp.MarshalJSON()
	if got, want := string(out), `{"id":3,"jsonrpc":"2.0","result":"imkey:imvalue"}`; got != want {
		t.Errorf("got: %s; want %s", got, want)
	}

	_, err = remote.Call(ctx, "nope")
	if !errors.Is(err, jsonrpc2.ErrMethodNotFound) {
		t.Errorf("got: %v; want method not found", err)
	}

	// A normal close ends ServeCodec without an error.
	codec.Close()
	if err := <-errChan; err != nil {
		t.Errorf("ServeCodec failed: %s", err)
	}
}
