package bitstamp

import "github.com/ordermesh/orderbook-aggregator/business/orderbook/domain"

// subscribeRequest is the bts:subscribe envelope sent once per stream.
type subscribeRequest struct {
	Event string              `json:"event"`
	Data  subscribeRequestData `json:"data"`
}

type subscribeRequestData struct {
	Channel string `json:"channel"`
}

func newSubscribeRequest(channel string) subscribeRequest {
	return subscribeRequest{
		Event: "bts:subscribe",
		Data:  subscribeRequestData{Channel: channel},
	}
}

// subscriptionResponse is the shape of both the subscribe
// acknowledgement and any later error/event frame that isn't a book
// update: only event and channel are ever inspected.
type subscriptionResponse struct {
	Event string `json:"event"`
	Channel string `json:"channel"`
}

const eventSubscriptionSucceeded = "bts:subscription_succeeded"

// bookUpdate is a streaming order_book_<pair> frame.
type bookUpdate struct {
	Event   string            `json:"event"`
	Channel string            `json:"channel"`
	Data    domain.OrderBook  `json:"data"`
}
