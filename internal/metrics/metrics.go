// Package metrics declares the Prometheus collectors of the ledger service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// StoreOperations counts record store calls by table, operation and result.
var StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "yafera",
	Subsystem: "store",
	Name:      "operations_total",
	Help:      "Record store operations by table, operation and result.",
}, []string{"table", "op", "result"})

// StoreReadFallbacks counts reads that degraded to an empty collection.
var StoreReadFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "yafera",
	Subsystem: "store",
	Name:      "read_fallbacks_total",
	Help:      "Table reads answered with an empty collection, by reason.",
}, []string{"table", "reason"})

// StoreCoercions counts cells that could not be parsed and were defaulted.
var StoreCoercions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "yafera",
	Subsystem: "store",
	Name:      "cell_coercions_total",
	Help:      "Cells replaced by their zero value while decoding.",
}, []string{"table", "column"})

// SummariesComputed counts ledger summaries served.
var SummariesComputed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "yafera",
	Subsystem: "ledger",
	Name:      "summaries_total",
	Help:      "Ledger summaries computed.",
})

// CommandsHandled counts chat commands by type and result.
var CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "yafera",
	Subsystem: "commands",
	Name:      "handled_total",
	Help:      "Chat commands handled by type and result.",
}, []string{"command", "result"})

// Result maps an error to a result label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
