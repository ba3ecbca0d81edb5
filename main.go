package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
	flags "github.com/jessevdk/go-flags"
	"github.com/vipnode/jsonrpc/internal/config"
	"github.com/vipnode/jsonrpc/jsonrpc2"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Options contains the flag options
type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"Show verbose logging."`
	Version bool   `long:"version" description:"Print version and exit."`
	Config  string `long:"config" description:"Path to a YAML config file. Defaults to config.yaml in the XDG config directory, if it exists."`

	Serve struct {
		Bind             string `long:"bind" description:"Address and port to listen on. (default: 127.0.0.1:8080)"`
		TLSHost          string `long:"tlshost" description:"Acquire an ACME TLS certificate for this hostname and serve HTTPS."`
		AllowOrigin      string `long:"alloworigin" description:"Access-Control-Allow-Origin header value for HTTP requests."`
		MaxContentLength int64  `long:"maxcontentlength" description:"Request size limit in bytes. (default: 1048576)"`
		WebSocket        string `long:"websocket" description:"Websocket implementation." choice:"gorilla" choice:"gobwas"`
		Stdio            bool   `long:"stdio" description:"Also serve newline-delimited JSON-RPC over stdin/stdout."`
		DebugCodec       bool   `long:"debug-codec" description:"Log every websocket and stdio message."`
	} `command:"serve" description:"Serve the builtin JSON-RPC methods over HTTP and websockets."`

	Call struct {
		Endpoint  string `long:"endpoint" description:"http(s):// or ws(s):// URL of the JSON-RPC server. (default: http://127.0.0.1:8080/)"`
		ID        int64  `long:"id" description:"Request id." default:"1"`
		WebSocket string `long:"websocket" description:"Websocket implementation for ws(s):// endpoints." choice:"gorilla" choice:"gobwas"`
		Args      struct {
			Method string `positional-arg-name:"method" description:"Method name." required:"yes"`
			Params string `positional-arg-name:"params" description:"JSON array or object of params."`
		} `positional-args:"yes"`
	} `command:"call" description:"Call a method and print its result."`

	Init struct {
		Force bool `long:"force" description:"Overwrite an existing config file."`
	} `command:"init" description:"Write a default config file."`
}

const callUsage = `Examples:
* Call a method over HTTP:
  $ jsonrpc call add '[10, 20]'

* Call a method over a websocket:
  $ jsonrpc call --endpoint ws://127.0.0.1:8080/ kv '{"key": "imkey", "value": "imvalue"}'
`

var logLevels = []log.Level{
	log.Warning,
	log.Info,
	log.Debug,
}

// loadConfig reads the config file named by --config, or the default one if
// it exists, and applies flags on top of it.
func loadConfig(options Options) (*config.Config, error) {
	path := options.Config
	if path == "" {
		if _, err := os.Stat(config.DefaultPath()); err == nil {
			path = config.DefaultPath()
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, ErrExplain{err, fmt.Sprintf("Failed to load config file %q. Fix it, or regenerate it with `jsonrpc init --force`.", path)}
	}
	if path != "" {
		logger.Debugf("Loaded config: %s", path)
	}

	serve := &cfg.Serve
	if options.Serve.Bind != "" {
		serve.Bind = options.Serve.Bind
	}
	if options.Serve.TLSHost != "" {
		serve.TLSHost = options.Serve.TLSHost
	}
	if options.Serve.AllowOrigin != "" {
		serve.AllowOrigin = options.Serve.AllowOrigin
	}
	if options.Serve.MaxContentLength > 0 {
		serve.MaxContentLength = options.Serve.MaxContentLength
	}
	if options.Serve.WebSocket != "" {
		serve.WebSocket = options.Serve.WebSocket
	}
	serve.Stdio = serve.Stdio || options.Serve.Stdio
	serve.DebugCodec = serve.DebugCodec || options.Serve.DebugCodec
	if options.Call.Endpoint != "" {
		cfg.Call.Endpoint = options.Call.Endpoint
	}
	return cfg, cfg.Validate()
}

func subcommand(cmd string, options Options) error {
	if cmd == "init" {
		return runInit(options)
	}

	cfg, err := loadConfig(options)
	if err != nil {
		return err
	}

	switch cmd {
	case "serve":
		return runServe(cfg.Serve)
	case "call":
		websocket := options.Call.WebSocket
		if websocket == "" {
			websocket = cfg.Serve.WebSocket
		}
		return runCall(os.Stdout, callArgs{
			Endpoint:  cfg.Call.Endpoint,
			WebSocket: websocket,
			Method:    options.Call.Args.Method,
			Params:    options.Call.Args.Params,
			ID:        options.Call.ID,
		})
	}
	return fmt.Errorf("unknown command: %s", cmd)
}

func runInit(options Options) error {
	path := options.Config
	if path == "" {
		path = config.DefaultPath()
	}
	if _, err := os.Stat(path); err == nil && !options.Init.Force {
		return ErrExplain{fmt.Errorf("config file already exists: %s", path), "Use --force to overwrite it."}
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	logger.Infof("Wrote default config: %s", path)
	return nil
}

func main() {
	options := Options{}
	parser := flags.NewParser(&options, flags.Default)
	parser.SubcommandsOptional = true
	p, err := parser.Parse()
	if err != nil {
		if p == nil {
			fmt.Println(err)
		}
		if flagErr, ok := err.(*flags.Error); ok && flagErr.Type == flags.ErrHelp && parser.Active != nil {
			// Print additional usage help when run with --help
			switch parser.Active.Name {
			case "call":
				exit(0, callUsage)
			}
		}
		return
	}

	if options.Version {
		fmt.Println(Version)
		os.Exit(0)
	}

	// Figure out the log level
	numVerbose := len(options.Verbose)
	if numVerbose >= len(logLevels) {
		numVerbose = len(logLevels) - 1
	}

	logLevel := logLevels[numVerbose]
	logWriter := os.Stderr

	SetLogger(golog.New(logWriter, logLevel))
	if logLevel == log.Debug {
		// Enable logging from subpackages
		jsonrpc2.SetLogger(logWriter)
	}

	if parser.Active == nil {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	cmd := parser.Active.Name
	err = subcommand(cmd, options)
	if err == nil {
		return
	}

	if errors.Is(err, io.EOF) {
		exit(3, "Connection closed.\n")
	}

	var netErr net.Error
	var rpcErr interface{ ErrorCode() int }
	var explained ErrExplain
	switch {
	case errors.As(err, &explained):
		// All good.
	case errors.As(err, &rpcErr):
		switch rpcErr.ErrorCode() {
		case jsonrpc2.ErrCodeMethodNotFound:
			err = ErrExplain{err, `The server does not have this method. Use the rpc_methods method to list the available methods.`}
		case jsonrpc2.ErrCodeParse, jsonrpc2.ErrCodeInvalidRequest, jsonrpc2.ErrCodeInvalidParams:
			err = ErrExplain{err, `The server rejected the request. Make sure the params are a JSON array or object.`}
		default:
			err = ErrExplain{err, fmt.Sprintf(`The server returned an error (code %d).`, rpcErr.ErrorCode())}
		}
	case errors.As(err, &netErr), errors.Is(err, jsonrpc2.ErrRequestFailed):
		err = ErrExplain{err, `Failed to reach the server. Could be a connectivity issue or the server is down. Try again?`}
	case errors.Is(err, jsonrpc2.ErrResponseRead), errors.Is(err, jsonrpc2.ErrResponseDecode):
		err = ErrExplain{err, `The server sent a response that is not JSON-RPC. Make sure the endpoint URL is correct.`}
	default:
		err = ErrExplain{err, fmt.Sprintf(`Error type %T is missing an explanation. Please open an issue at https://github.com/vipnode/jsonrpc`, err)}
	}

	exit(2, "%s failed: %s\n", cmd, err)
}

func exit(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

// ErrExplain annotates an error with an explanation.
type ErrExplain struct {
	Cause       error
	Explanation string
}

func (err ErrExplain) Error() string {
	return fmt.Sprintf("%s\n -> %s", err.Cause, err.Explanation)
}

func (err ErrExplain) Unwrap() error {
	return err.Cause
}
