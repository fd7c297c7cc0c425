package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jpalmerr/waitfor"
)

func main() {
	// mock page that starts empty and renders the app after a few requests,
	// standing in for a service that takes a moment to become ready
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 4 {
			fmt.Fprint(w, `<html><body><div id="app"></div></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><div id="app"><p class="ready">hello</p></div></body></html>`)
	}))
	defer server.Close()

	fmt.Println()
	fmt.Println("  waitfor demo")
	fmt.Println("  waiting for #app .ready to render at", server.URL)
	fmt.Println()

	query := waitfor.NewDocumentQuery(waitfor.URLSource(server.URL, 2*time.Second))

	settled := make(chan waitfor.State, 1)

	waitfor.NewNodePoller(query, "#app .ready",
		waitfor.WithInterval(200*time.Millisecond),
		waitfor.WithMaxTrials(25),
	).
		Progress(func(p *waitfor.Poller, ok bool) {
			fmt.Printf("  trial %d: present=%v\n", p.Trials()+1, ok)
		}).
		Done(func(p *waitfor.Poller, ok bool) {
			slog.Info("element rendered", "trials", p.Trials())
		}).
		Fail(func(p *waitfor.Poller, ok bool) {
			slog.Error("element never rendered", "trials", p.Trials())
		}).
		Always(func(p *waitfor.Poller, ok bool) {
			settled <- p.State()
		}).
		Start()

	state := <-settled
	fmt.Println()
	fmt.Println("  run settled:", strings.ToUpper(state.String()))

	if state != waitfor.StateResolved {
		os.Exit(1)
	}
}
