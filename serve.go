package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/vipnode/jsonrpc/internal/config"
	"github.com/vipnode/jsonrpc/jsonrpc2"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws/gobwas"
	"github.com/vipnode/jsonrpc/jsonrpc2/ws/gorilla"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/sync/errgroup"
)

// newUpgrader returns the websocket implementation by name.
func newUpgrader(name string) ws.Upgrader {
	if name == config.WebSocketGobwas {
		return &gobwas.Upgrader{}
	}
	return &gorilla.Upgrader{}
}

// newHandler builds the HTTP handler with the builtin methods registered.
func newHandler(cfg config.ServeConfig) (*server, error) {
	handler := &server{
		ws:       newUpgrader(cfg.WebSocket),
		debugLog: cfg.DebugCodec,
		header:   http.Header{},
	}
	handler.MaxContentLength = cfg.MaxContentLength
	if cfg.AllowOrigin != "" {
		handler.header.Set("Access-Control-Allow-Origin", cfg.AllowOrigin)
	}
	if err := registerBuiltins(&handler.Server); err != nil {
		return nil, err
	}
	return handler, nil
}

type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error {
	return nil
}

func runServe(cfg config.ServeConfig) error {
	handler, err := newHandler(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var listener net.Listener
	if cfg.TLSHost != "" {
		if !strings.HasSuffix(cfg.Bind, ":443") {
			logger.Warningf("Ignoring --bind value (%q) because it's not 443 and --tlshost is set.", cfg.Bind)
		}
		logger.Infof("Starting server (version %s), acquiring ACME certificate and listening on: https://%s", Version, cfg.TLSHost)
		listener = autocert.NewListener(cfg.TLSHost)
	} else {
		listener, err = net.Listen("tcp", cfg.Bind)
		if err != nil {
			return err
		}
		logger.Infof("Starting server (version %s), listening on: http://%s", Version, listener.Addr())
	}

	return serve(ctx, handler, listener, cfg.Stdio)
}

// serve runs the HTTP server, and the stdio codec if enabled, until ctx is
// done or one of them fails.
func serve(ctx context.Context, handler *server, listener net.Listener, withStdio bool) error {
	g, ctx := errgroup.WithContext(ctx)
	srv := &http.Server{Handler: handler}

	g.Go(func() error {
		err := srv.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		if err != nil && strings.HasSuffix(err.Error(), "bind: permission denied") {
			err = ErrExplain{err, "Serving with autocert requires CAP_NET_BIND_SERVICE capability permission to bind on low-numbered ports."}
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down...")
		return srv.Shutdown(context.Background())
	})

	if withStdio {
		g.Go(func() error {
			var codec jsonrpc2.Codec = jsonrpc2.IOCodec(stdio{os.Stdin, os.Stdout})
			if handler.debugLog {
				codec = jsonrpc2.DebugCodec("stdio", codec)
			}
			logger.Info("Serving on stdin/stdout.")
			// Reads from stdin can't be interrupted, don't wait for them on shutdown.
			errc := make(chan error, 1)
			go func() {
				errc <- handler.ServeCodec(ctx, codec)
			}()
			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
				return nil
			}
		})
	}

	return g.Wait()
}
