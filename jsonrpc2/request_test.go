package jsonrpc2

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseRequest(t *testing.T) {
	cases := []struct {
		Input string
		Err   *Error
		Want  string
	}{
		{
			Input: `{"params":[], "jsonrpc":"2.0","method":"hello","id":1}`,
			Want:  `{"id":1,"jsonrpc":"2.0","method":"hello","params":[]}`,
		},
		{
			Input: `{"jsonrpc":"2","method":"hello","params":{"a":1},"id":-7}`,
			Want:  `{"id":-7,"jsonrpc":"2.0","method":"hello","params":{"a":1}}`,
		},
		{
			Input: `{"jsonrpc":"2.0","method":"hello","params":null,"id":null}`,
			Want:  `{"id":null,"jsonrpc":"2.0","method":"hello","params":null}`,
		},
		{
			// Version failed but the id parsed, version defaults.
			Input: `{"jsonrpc":"1.0","method":"hello","params":[],"id":3}`,
			Want:  `{"id":3,"jsonrpc":"2.0","method":"hello","params":[]}`,
		},
		{
			// Id failed but the version parsed, id is absent.
			Input: `{"jsonrpc":"2.0","method":"hello","params":[],"id":"abc"}`,
			Want:  `{"id":null,"jsonrpc":"2.0","method":"hello","params":[]}`,
		},
		{
			Input: `{"jsonrpc":"2.0","method":"hello","params":[],"id":9223372036854775807}`,
			Want:  `{"id":9223372036854775807,"jsonrpc":"2.0","method":"hello","params":[]}`,
		},
		{
			// Beyond int64, the id is absent.
			Input: `{"jsonrpc":"2.0","method":"hello","params":[],"id":9223372036854775808}`,
			Want:  `{"id":null,"jsonrpc":"2.0","method":"hello","params":[]}`,
		},
		{
			Input: `{"jsonrpc":"2.0","method":"hello","params":[],"id":1.5}`,
			Want:  `{"id":null,"jsonrpc":"2.0","method":"hello","params":[]}`,
		},
		{Input: `not json`, Err: ErrParse},
		{Input: `{"jsonrpc":"2.0"`, Err: ErrParse},
		{Input: `[{"jsonrpc":"2.0","method":"hello","params":[],"id":1}]`, Err: ErrParse},
		{Input: `"hello"`, Err: ErrParse},
		{Input: `{}`, Err: ErrInvalidRequest},
		{Input: `{"method":"hello","params":[]}`, Err: ErrInvalidRequest},
		{Input: `{"jsonrpc":"3.0","method":"hello","params":[],"id":1.5}`, Err: ErrInvalidRequest},
		{Input: `{"jsonrpc":"2.0","params":[],"id":1}`, Err: ErrMethodNotFound},
		{Input: `{"jsonrpc":"2.0","method":7,"params":[],"id":1}`, Err: ErrMethodNotFound},
		{Input: `{"jsonrpc":"2.0","method":"hello","id":1}`, Err: ErrInvalidParams},
		{Input: `{"jsonrpc":"2.0","method":"hello","params":"x","id":1}`, Err: ErrInvalidParams},
		{Input: `{"jsonrpc":"2.0","method":"hello","params":5,"id":1}`, Err: ErrInvalidParams},
	}

	for i, tc := range cases {
		req, err := ParseRequest([]byte(tc.Input))
		if tc.Err != nil {
			if !errors.Is(err, tc.Err) {
				t.Errorf("case #%d: got error %v; want %v", i, err, tc.Err)
			}
			continue
		}
		if err != nil {
			t.Errorf("case #%d: unexpected error: %s", i, err)
			continue
		}
		assertJSON(t, req, tc.Want, "case #%d", i)
	}
}

func TestRequestVersionAlias(t *testing.T) {
	req, err := ParseRequest([]byte(`{"jsonrpc":"2","method":"m","params":null,"id":1}`))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := req.Version(), "2.0"; got != want {
		t.Errorf("got: %q; want %q", got, want)
	}
}

func TestRequestRoundTrip(t *testing.T) {
	requests := []*Request{
		NewRequest("a", nil, ID{}),
		NewRequest("b", json.RawMessage(`[1,"two",{"three":3}]`), NewID(1)),
		NewRequest("c", json.RawMessage(`{"x":[]}`), NewID(-42)),
		NewRequest("d", json.RawMessage(`null`), NewID(0)),
	}

	for _, req := range requests {
		b, err := json.Marshal(req)
		if err != nil {
			t.Fatal(err)
		}
		var got Request
		if err := json.Unmarshal(b, &got); err != nil {
			t.Fatalf("%s: %s", b, err)
		}
		if got.Method() != req.Method() || got.Version() != req.Version() || got.ID() != req.ID() || string(got.Params()) != string(req.Params()) {
			t.Errorf("round trip mismatch:\n   got: %s\n  want: %s", &got, req)
		}
	}
}

func TestRequestAccessorsCopy(t *testing.T) {
	req := NewRequest("m", json.RawMessage(`[1]`), NewID(5))
	params := req.Params()
	params[1] = '2'
	if got, want := string(req.Params()), `[1]`; got != want {
		t.Errorf("params were aliased: got %s; want %s", got, want)
	}
	if n, ok := req.ID().Int64(); !ok || n != 5 {
		t.Errorf("got id %d (ok=%t)", n, ok)
	}
}
