package main

import (
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var GoVersion = runtime.Version()

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "A metric with a constant '1' value labeled by version, goversion, and suite.",
		},
		[]string{"version", "goversion", "suite"},
	)
	proveOps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "prove_operations",
			Help: "Incremented for each prove operation.",
		},
	)
	proveDur = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Name: "prove_duration",
			Help: "Summary of how long a prove operation takes to complete, in microseconds.",
		},
	)
	verifyOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verify_operations",
			Help: "Incremented for each verify operation, labeled by the result.",
		},
		[]string{"result"},
	)
	recordOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_operations",
			Help: "Incremented for each evaluation written to the database, labeled by success or failure.",
		},
		[]string{"success"},
	)
	recordDur = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Name: "record_duration",
			Help: "Summary of how long writing an evaluation to the database takes, in microseconds.",
		},
	)
	requestCtr = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests",
			Help: "Incremented for each API request received.",
		},
		[]string{"path", "status"},
	)
)

func metrics(addr, suite string) {
	buildInfo.WithLabelValues(Version, GoVersion, suite).Set(1)
	prometheus.MustRegister(buildInfo)
	prometheus.MustRegister(proveOps)
	prometheus.MustRegister(proveDur)
	prometheus.MustRegister(verifyOps)
	prometheus.MustRegister(recordOps)
	prometheus.MustRegister(recordDur)
	prometheus.MustRegister(requestCtr)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(rw http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/" {
			fmt.Fprintln(rw, "Hi, I'm a vrf metrics and debugging server!")
		} else {
			rw.WriteHeader(404)
			fmt.Fprintln(rw, "404 not found")
		}
	})
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.HandleFunc("/debug/version", func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, "Version: %s, GoVersion: %s", Version, GoVersion)
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	log.Printf("Starting metrics server at: %v", addr)
	log.Printf("Metrics server stopped: %v", srv.ListenAndServe())
}
