package engine

import "github.com/VictoriaMetrics/metrics"

// Per-operation counters, incremented only on success.
var (
	initializeTotal   = metrics.NewCounter(`strata_ops_total{op="initialize"}`)
	addTotal          = metrics.NewCounter(`strata_ops_total{op="add"}`)
	removeTotal       = metrics.NewCounter(`strata_ops_total{op="remove"}`)
	adjustTotal       = metrics.NewCounter(`strata_ops_total{op="adjust"}`)
	counterSetTotal   = metrics.NewCounter(`strata_ops_total{op="counter_set"}`)
	counterAddTotal   = metrics.NewCounter(`strata_ops_total{op="counter_add"}`)
	counterResetTotal = metrics.NewCounter(`strata_ops_total{op="counter_reset"}`)
	counterDropTotal  = metrics.NewCounter(`strata_ops_total{op="counter_drop"}`)

	opErrorsTotal = metrics.NewCounter(`strata_op_errors_total`)
)
