package main

import (
	"net/http"

	"github.com/vipnode/jsonrpc/jsonrpc2"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws"
)

// server routes HTTP requests to the JSON-RPC HTTP handler and websocket
// upgrade requests to a codec served by the same registry.
type server struct {
	jsonrpc2.HTTPServer
	ws       ws.Upgrader
	debugLog bool
	header   http.Header
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost, http.MethodPut:
		// Assume RPC over HTTP
		for k, values := range s.header {
			for _, v := range values {
				w.Header().Set(k, v)
			}
		}
		s.HTTPServer.ServeHTTP(w, r)
	case http.MethodOptions:
		for k, values := range s.header {
			for _, v := range values {
				w.Header().Set(k, v)
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, PUT")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		if r.Header.Get("Upgrade") == "" {
			http.Error(w, "expected a websocket upgrade or a POST/PUT request", http.StatusBadRequest)
			return
		}
		// Assume WebSocket upgrade request
		codec, err := s.ws.Upgrade(r, w, nil)
		if err != nil {
			logger.Debugf("websocket upgrade error from %s: %s", r.RemoteAddr, err)
			return
		}
		defer codec.Close()
		if s.debugLog {
			codec = jsonrpc2.DebugCodec(r.RemoteAddr, codec)
		}
		logger.Debugf("websocket connected: %s", r.RemoteAddr)
		if err := s.ServeCodec(r.Context(), codec); err != nil {
			logger.Warningf("websocket from %s failed: %s", r.RemoteAddr, err)
		}
	default:
		http.Error(w, "unsupported method", http.StatusMethodNotAllowed)
	}
}
