package jsonrpc2

import (
	"io"
	"io/ioutil"
	"log"

	"github.com/vipnode/jsonrpc/internal/pretty"
)

var logger *log.Logger

// SetLogger overrides the logger output for this package.
func SetLogger(w io.Writer) {
	flags := log.Flags()
	prefix := "[jsonrpc2] "
	logger = log.New(w, prefix, flags)
}

// abbrev shortens a payload for log lines.
func abbrev(raw []byte) pretty.Abbreviated {
	return pretty.Abbrev(string(raw), 200, 180)
}

func init() {
	SetLogger(ioutil.Discard)
}
