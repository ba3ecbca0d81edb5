package jsonrpc2

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
)

const httpContentType = "application/json"

var _ http.Handler = &HTTPServer{}

// HTTPServer provides a JSON-RPC server over HTTP by implementing
// http.Handler. Each POST or PUT body is one request document. Every
// JSON-RPC response, including failures, is written with status 200.
type HTTPServer struct {
	Server

	// MaxContentLength is the request size limit (optional)
	MaxContentLength int64
}

func (h *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		w.Header().Set("Allow", "POST, PUT")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.MaxContentLength > 0 && r.ContentLength > h.MaxContentLength {
		http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
		return
	}

	var body io.Reader = r.Body
	if h.MaxContentLength > 0 {
		body = io.LimitReader(r.Body, h.MaxContentLength)
	}
	defer r.Body.Close()

	msg, err := ioutil.ReadAll(body)
	if err != nil {
		logger.Printf("HTTPServer: failed to read request from %s: %s", r.RemoteAddr, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out, err := h.Server.ServeMessage(r.Context(), msg).MarshalJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", httpContentType)
	w.Write(out)
}

// Transport failures of HTTPService. They are never JSON-RPC errors.
var (
	ErrRequestFailed  = errors.New("jsonrpc2: request failed")
	ErrResponseRead   = errors.New("jsonrpc2: failed to read response")
	ErrResponseDecode = errors.New("jsonrpc2: failed to decode response")
)

var _ Service = &HTTPService{}

// HTTPService calls a JSON-RPC endpoint over HTTP. Each call is a single PUT
// round trip with no retries.
type HTTPService struct {
	Client
	HTTPClient http.Client

	// Endpoint is the HTTP URL to dial for RPC calls.
	Endpoint string
	// MaxContentLength is the response size limit (optional)
	MaxContentLength int64
}

// Do sends the request and parses the response. Connection, read and decode
// failures wrap ErrRequestFailed, ErrResponseRead and ErrResponseDecode.
func (service *HTTPService) Do(ctx context.Context, msg *Request) (Response, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPut, service.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", httpContentType)
	req.Header.Set("Accept", httpContentType)
	req = req.WithContext(ctx)

	resp, err := service.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	if service.MaxContentLength > 0 && resp.ContentLength > service.MaxContentLength {
		return nil, HTTPRequestError{
			Response: resp,
			Reason:   "response too large",
		}
	}

	var r io.Reader = resp.Body
	if service.MaxContentLength > 0 {
		r = io.LimitReader(resp.Body, service.MaxContentLength)
	}
	respBody, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrResponseRead, err)
	}
	if !json.Valid(respBody) {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, HTTPRequestError{
				Response: resp,
				Reason:   fmt.Sprintf("bad status code: %d", resp.StatusCode),
			}
		}
		return nil, fmt.Errorf("%w: body is not JSON: %s", ErrResponseDecode, abbrev(respBody))
	}
	parsed, err := ParseResponse(respBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrResponseDecode, err)
	}
	return parsed, nil
}

// Call sends a request for method with the given params and id, and returns
// the result. A missing or null result is nil. A Failure response returns a nil
// result and the peer's *Error.
func (service *HTTPService) Call(ctx context.Context, method string, params json.RawMessage, id ID) (json.RawMessage, error) {
	return Call(ctx, service, NewRequest(method, params, id))
}

// CallNext is Call with the next id from the embedded Client.
func (service *HTTPService) CallNext(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	return service.Call(ctx, method, params, service.NextID())
}

// HTTPRequestError is used when RPC over HTTP encounters an error during transport.
type HTTPRequestError struct {
	Response *http.Response
	Reason   string
}

func (err HTTPRequestError) Error() string {
	return fmt.Sprintf("http rpc request error: %s", err.Reason)
}

// Unwrap classifies the error as a response read failure.
func (err HTTPRequestError) Unwrap() error {
	return ErrResponseRead
}
