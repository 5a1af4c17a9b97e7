package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BalancesScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "balances_scanned_total", Help: "Wallet balances fetched per chain"},
		[]string{"chain"},
	)
	QuotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bridge_quotes_total", Help: "Bridge quotes requested, by outcome"},
		[]string{"status"},
	)
	LegsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bridge_legs_total", Help: "Bridge legs executed, by terminal state"},
		[]string{"status"},
	)
	SettlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "settlements_total", Help: "Final deposit transfers, by outcome"},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(BalancesScanned, QuotesTotal, LegsTotal, SettlementsTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
