package jsonrpc2

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// Codec is an abstraction for receiving and sending JSON-RPC documents.
type Codec interface {
	// ReadMessage returns the next JSON document.
	ReadMessage() (json.RawMessage, error)
	// WriteMessage sends a single JSON document.
	WriteMessage(json.RawMessage) error
	Close() error
}

var _ Codec = &jsonCodec{}

// IOCodec returns a Codec that reads and writes a stream of JSON documents.
// Written documents are newline-terminated.
func IOCodec(rwc io.ReadWriteCloser) *jsonCodec {
	return &jsonCodec{
		dec:    json.NewDecoder(rwc),
		enc:    json.NewEncoder(rwc),
		closer: rwc,
	}
}

type jsonCodec struct {
	muRead  sync.Mutex
	muWrite sync.Mutex
	dec     *json.Decoder
	enc     *json.Encoder
	closer  io.Closer
}

func (codec *jsonCodec) ReadMessage() (json.RawMessage, error) {
	codec.muRead.Lock()
	defer codec.muRead.Unlock()
	var msg json.RawMessage
	if err := codec.dec.Decode(&msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (codec *jsonCodec) WriteMessage(msg json.RawMessage) error {
	codec.muWrite.Lock()
	defer codec.muWrite.Unlock()
	return codec.enc.Encode(msg)
}

func (codec *jsonCodec) Close() error {
	return codec.closer.Close()
}

// DebugCodec logs each message that is read or written through the codec.
func DebugCodec(label string, codec Codec) Codec {
	return &debugCodec{label: label, Codec: codec}
}

type debugCodec struct {
	Codec
	label string
}

func (codec *debugCodec) ReadMessage() (json.RawMessage, error) {
	msg, err := codec.Codec.ReadMessage()
	if err != nil {
		logger.Printf("%s <- error: %s", codec.label, err)
		return msg, err
	}
	logger.Printf("%s <- %s", codec.label, abbrev(msg))
	return msg, nil
}

func (codec *debugCodec) WriteMessage(msg json.RawMessage) error {
	logger.Printf("%s -> %s", codec.label, abbrev(msg))
	return codec.Codec.WriteMessage(msg)
}

// ServeCodec reads requests from the codec and writes one response for each,
// until the codec is closed or fails. A closed codec (io.EOF) is not an error.
// A document that is not valid JSON is answered with a parse error and ends the
// loop, since the stream can't be resynchronized.
func (s *Server) ServeCodec(ctx context.Context, codec Codec) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := codec.ReadMessage()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			if werr := writeResponse(codec, NewFailure(Version, ErrParse, ID{})); werr != nil {
				return werr
			}
			return err
		}
		if err != nil {
			return err
		}
		if err := writeResponse(codec, s.ServeMessage(ctx, msg)); err != nil {
			return err
		}
	}
}

func writeResponse(codec Codec, resp Response) error {
	out, err := resp.MarshalJSON()
	if err != nil {
		return err
	}
	return codec.WriteMessage(out)
}
