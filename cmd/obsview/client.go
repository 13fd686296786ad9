package main

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ordermesh/orderbook-aggregator/internal/grpccodec"
	orderbookv1 "github.com/ordermesh/orderbook-aggregator/proto/orderbook/v1"
)

// streamSummaries dials addr and forwards every streamed Summary onto
// summaries until the stream ends or ctx is cancelled, reporting the
// error that ended the stream (io.EOF when the server closes it
// cleanly) on errs.
func streamSummaries(ctx context.Context, addr string, summaries chan<- summaryMsg, errs chan<- streamErrMsg) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(grpccodec.Name)),
	)
	if err != nil {
		errs <- streamErrMsg{err: err}
		return
	}
	defer conn.Close()

	client := orderbookv1.NewOrderbookAggregatorClient(conn)
	stream, err := client.BookSummary(ctx, &orderbookv1.Empty{})
	if err != nil {
		errs <- streamErrMsg{err: err}
		return
	}

	for {
		summary, err := stream.Recv()
		if err != nil {
			errs <- streamErrMsg{err: err}
			return
		}
		select {
		case summaries <- summaryMsg{summary: summary}:
		case <-ctx.Done():
			return
		}
	}
}
