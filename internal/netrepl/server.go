// Package netrepl generalizes the teacher's websocket transport
// (internal/network/websocket.go's WebSocketListen/Upgrader pairing) from
// a security-tool scripting transport into a remote-eval transport for
// this language: one message in is one source program; one message out is
// its captured output (or an error string).
//
// Each connection gets its own VM per message — spec.md §5's
// single-threaded, synchronous execution model applies per evaluation,
// never shared across connections or across messages on the same
// connection.
package netrepl

import (
	"net/http"

	"github.com/gorilla/websocket"

	"shkola/internal/analyzer"
	"shkola/internal/astfold"
	"shkola/internal/codegen"
	"shkola/internal/parser"
	"shkola/internal/vm"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades a request to a websocket connection and serves
// eval-per-message until the client disconnects.
func Handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		reply := evalSource(string(data))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			return
		}
	}
}

// ListenAndServe starts an HTTP server exposing Handler at /eval, the
// generalized form of the teacher's WebSocketListen.
func ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/eval", Handler)
	return http.ListenAndServe(addr, mux)
}

// evalSource runs the full parse/analyze/fold/compile/run pipeline over
// one source program and returns either its captured output or an error
// message, never both.
func evalSource(src string) string {
	prog, perr := parser.Parse(src)
	if perr != nil {
		return perr.Error()
	}
	if errs := analyzer.Analyze(prog); len(errs) > 0 {
		msg := ""
		for _, e := range errs {
			msg += e.Error() + "\n"
		}
		return msg
	}
	astfold.Fold(prog)
	bc, cerr := codegen.Generate(prog)
	if cerr != nil {
		return cerr.Error()
	}
	out, rerr := vm.Run(bc)
	if rerr != nil {
		return out + rerr.Error()
	}
	return out
}
