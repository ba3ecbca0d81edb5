// Websocket implementation using Gorilla's Websocket library
package gorilla

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vipnode/jsonrpc/jsonrpc2"
	rpcws "github.com/vipnode/jsonrpc/jsonrpc2/ws"
)

var _ rpcws.Dialer = WebSocketDial

// WebSocketDial returns a Codec that wraps a client-side connection. Each
// JSON document is sent as one text message.
func WebSocketDial(ctx context.Context, url string) (jsonrpc2.Codec, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	return &wsCodec{conn: conn}, nil
}

var _ jsonrpc2.Codec = &wsCodec{}

type wsCodec struct {
	muWrite sync.Mutex
	muRead  sync.Mutex
	conn    *websocket.Conn
}

// ReadMessage returns the next data message. A normal close is io.EOF.
func (codec *wsCodec) ReadMessage() (json.RawMessage, error) {
	codec.muRead.Lock()
	defer codec.muRead.Unlock()
	_, msg, err := codec.conn.ReadMessage()
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (codec *wsCodec) WriteMessage(msg json.RawMessage) error {
	codec.muWrite.Lock()
	defer codec.muWrite.Unlock()
	return codec.conn.WriteMessage(websocket.TextMessage, msg)
}

// Close sends a close message before closing the connection.
func (codec *wsCodec) Close() error {
	codec.muWrite.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	codec.conn.WriteMessage(websocket.CloseMessage, msg)
	codec.muWrite.Unlock()
	return codec.conn.Close()
}

var _ rpcws.Upgrader = &Upgrader{}

// Upgrader upgrades an HTTP request to a WebSocket request and returns the
// appropriate jsonrpc2 codec.
type Upgrader struct {
	Upgrader websocket.Upgrader
}

func (u *Upgrader) Upgrade(r *http.Request, w http.ResponseWriter, h http.Header) (jsonrpc2.Codec, error) {
	conn, err := u.Upgrader.Upgrade(w, r, h)
	if err != nil {
		return nil, err
	}
	return &wsCodec{conn: conn}, nil
}
