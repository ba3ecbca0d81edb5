package jsonrpc2

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net"
	"strings"
	"testing"

	"golang.org/x/sync/errgroup"
)

type nopRWC struct {
	io.Reader
	io.Writer
	io.Closer
}

func TestCodec(t *testing.T) {
	var buf bytes.Buffer
	codec := IOCodec(nopRWC{
		Reader: &buf,
		Writer: &buf,
		Closer: ioutil.NopCloser(&buf),
	})

	msg := json.RawMessage(`{"id":42,"jsonrpc":"2.0","method":"m","params":null}`)
	if err := codec.WriteMessage(msg); err != nil {
		t.Fatal(err)
	}
	msg2, err := codec.ReadMessage()
	if err != nil {
		t.Error(err)
	}
	if !bytes.Equal(msg, msg2) {
		t.Errorf("got: %s; want %s", msg2, msg)
	}

	if _, err := codec.ReadMessage(); err != io.EOF {
		t.Errorf("got: %v; want io.EOF", err)
	}
}

func TestServeCodec(t *testing.T) {
	s := testServer()
	c1, c2 := net.Pipe()
	client := IOCodec(c1)
	server := DebugCodec("test", IOCodec(c2))

	var g errgroup.Group
	g.Go(func() error {
		return s.ServeCodec(context.Background(), server)
	})

	cases := []struct {
		Input string
		Want  string
	}{
		{
			Input: `{"params":[10,20],"jsonrpc":"2.0","method":"add","id":2}`,
			Want:  `{"id":2,"jsonrpc":"2.0","result":30}`,
		},
		{
			Input: `{"params":[],"jsonrpc":"2.0","method":"nope","id":3}`,
			Want:  `{"error":{"code":-32601,"data":null,"message":"Method not found"},"id":3,"jsonrpc":"2.0"}`,
		},
		{
			Input: `[1,2]`,
			Want:  `{"error":{"code":-32700,"data":null,"message":"Parse error"},"id":null,"jsonrpc":"2.0"}`,
		},
	}

	for i, tc := range cases {
		// net.Pipe is synchronous, write from a goroutine.
		var w errgroup.Group
		w.Go(func() error {
			return client.WriteMessage(json.RawMessage(tc.Input))
		})
		got, err := client.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		if err := w.Wait(); err != nil {
			t.Fatal(err)
		}
		if string(got) != tc.Want {
			t.Errorf("case #%d:\n   got: %s\n  want: %s", i, got, tc.Want)
		}
	}

	client.Close()
	if err := g.Wait(); err != nil {
		t.Errorf("ServeCodec failed: %s", err)
	}
}

func TestServeCodecSyntaxError(t *testing.T) {
	s := testServer()
	var out bytes.Buffer
	codec := IOCodec(nopRWC{
		Reader: strings.NewReader(`{"params":[],"jsonrpc":"2.0","method":"hello","id":1} {"oops":}`),
		Writer: &out,
		Closer: ioutil.NopCloser(nil),
	})

	if err := s.ServeCodec(context.Background(), codec); err == nil {
		t.Error("expected an error for a broken stream")
	}
	want := `{"id":1,"jsonrpc":"2.0","result":"Hello World"}` + "\n" +
		`{"error":{"code":-32700,"data":null,"message":"Parse error"},"id":null,"jsonrpc":"2.0"}` + "\n"
	if got := out.String(); got != want {
		t.Errorf("got: %q; want %q", got, want)
	}
}
