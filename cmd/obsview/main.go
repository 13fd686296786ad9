// Package main is obsview, a small terminal client that connects to the
// order-book aggregator's streaming gRPC endpoint and renders the merged
// top-N bid/ask summary as it updates.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "address of the order-book aggregator's gRPC endpoint")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	summaries := make(chan summaryMsg)
	errs := make(chan streamErrMsg, 1)
	go streamSummaries(ctx, *addr, summaries, errs)

	m := newModel(*addr, summaries, errs)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
