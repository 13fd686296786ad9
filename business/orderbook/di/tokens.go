// Package di contains dependency injection tokens for the orderbook context.
package di

import (
	"github.com/ordermesh/orderbook-aggregator/business/orderbook/app"
	"github.com/ordermesh/orderbook-aggregator/business/orderbook/infra/bus"
	internaldi "github.com/ordermesh/orderbook-aggregator/internal/di"
)

// DI tokens for the orderbook module.
const (
	MergeEngine = "orderbook.MergeEngine"
	Bus         = "orderbook.Bus"
)

// GetMergeEngine resolves the merge engine from the registry.
func GetMergeEngine(sr internaldi.ServiceRegistry) *app.MergeEngine {
	return internaldi.GetToken[*app.MergeEngine](sr, MergeEngine)
}

// GetBus resolves the fan-out bus from the registry.
func GetBus(sr internaldi.ServiceRegistry) *bus.Bus {
	return internaldi.GetToken[*bus.Bus](sr, Bus)
}
