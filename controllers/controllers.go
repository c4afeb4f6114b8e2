package controllers

import (
	"github.com/bmt-labs/checkout-bridge/gateway"
	"github.com/bmt-labs/checkout-bridge/reconcile"
	"github.com/bmt-labs/checkout-bridge/store"
)

var (
	orders store.OrderStore
	gw     *gateway.Client
	recon  *reconcile.Orchestrator
)

// Setup injects the shared collaborators. Called once from main, and
// from tests with fakes.
func Setup(s store.OrderStore, client *gateway.Client, orch *reconcile.Orchestrator) {
	orders = s
	gw = client
	recon = orch
}
