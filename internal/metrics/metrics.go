package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "ticks_total", Help: "Count of market ticks ingested"},
		[]string{"symbol"},
	)
	BarsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bars_total", Help: "One-minute bars completed by the host aggregator"},
		[]string{"symbol"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signals detected by strategies"},
		[]string{"strategy", "kind"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders submitted"},
		[]string{"symbol", "type"},
	)
	CancelsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "cancels_total", Help: "Order cancels requested"},
		[]string{"symbol"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "trades_total", Help: "Fills reported by the venue"},
		[]string{"symbol"},
	)
	Position = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "strategy_position", Help: "Net position held by each strategy"},
		[]string{"strategy"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, BarsTotal, SignalsTotal, OrdersTotal, CancelsTotal, TradesTotal, Position)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
