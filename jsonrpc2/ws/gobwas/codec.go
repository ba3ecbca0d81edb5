// Websocket implementation using gobwas/ws
package gobwas

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/vipnode/jsonrpc/jsonrpc2"
	rpcws "github.com/vipnode/jsonrpc/jsonrpc2/ws"
)

var _ rpcws.Dialer = WebSocketDial

// WebSocketDial returns a Codec that wraps a client-side connection. Each
// JSON document is sent as one text message.
func WebSocketDial(ctx context.Context, url string) (jsonrpc2.Codec, error) {
	conn, _, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, err
	}

	return clientWebSocketCodec(conn), nil
}

func clientWebSocketCodec(conn net.Conn) jsonrpc2.Codec {
	return newCodec(conn, ws.StateClientSide)
}

// serverWebSocketCodec returns a server-side Codec over a websocket
// connection.
func serverWebSocketCodec(conn net.Conn) jsonrpc2.Codec {
	return newCodec(conn, ws.StateServerSide)
}

func newCodec(conn net.Conn, state ws.State) *wsCodec {
	control := wsutil.ControlFrameHandler(conn, state)
	return &wsCodec{
		conn:    conn,
		control: control,
		r: &wsutil.Reader{
			Source:         conn,
			State:          state,
			CheckUTF8:      true,
			OnIntermediate: control,
		},
		w: wsutil.NewWriter(conn, state, ws.OpText),
	}
}

var _ jsonrpc2.Codec = &wsCodec{}

type wsCodec struct {
	muRead  sync.Mutex
	muWrite sync.Mutex
	conn    net.Conn
	control wsutil.FrameHandlerFunc
	r       *wsutil.Reader
	w       *wsutil.Writer
}

// ReadMessage returns the payload of the next data frame. Control frames are
// answered as they arrive, a close frame ends the stream with io.EOF.
func (codec *wsCodec) ReadMessage() (json.RawMessage, error) {
	codec.muRead.Lock()
	defer codec.muRead.Unlock()
	for {
		hdr, err := codec.r.NextFrame()
		if err != nil {
			return nil, err
		}
		if hdr.OpCode.IsControl() {
			if err := codec.control(hdr, codec.r); err != nil {
				var closed wsutil.ClosedError
				if errors.As(err, &closed) {
					return nil, io.EOF
				}
				return nil, err
			}
			continue
		}
		if hdr.OpCode != ws.OpText && hdr.OpCode != ws.OpBinary {
			if _, err := io.Copy(ioutil.Discard, codec.r); err != nil {
				return nil, err
			}
			continue
		}
		return ioutil.ReadAll(codec.r)
	}
}

func (codec *wsCodec) WriteMessage(msg json.RawMessage) error {
	codec.muWrite.Lock()
	defer codec.muWrite.Unlock()
	if _, err := codec.w.Write(msg); err != nil {
		return err
	}
	return codec.w.Flush()
}

func (codec *wsCodec) Close() error {
	return codec.conn.Close()
}

var _ rpcws.Upgrader = &Upgrader{}

// Upgrader upgrades an HTTP request to a WebSocket request and returns the
// appropriate jsonrpc2 codec.
type Upgrader struct {
	Upgrader ws.HTTPUpgrader
}

func (u *Upgrader) Upgrade(r *http.Request, w http.ResponseWriter, h http.Header) (jsonrpc2.Codec, error) {
	upgrader := u.Upgrader
	if h != nil {
		upgrader.Header = h
	}
	conn, _, _, err := upgrader.Upgrade(r, w)
	if err != nil {
		return nil, err
	}
	return serverWebSocketCodec(conn), nil
}
