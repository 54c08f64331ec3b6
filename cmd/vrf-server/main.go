// Command vrf-server is the main server process that answers VRF evaluation
// and verification requests, and records every evaluation it makes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bren2010/vrf/db"
	"github.com/Bren2010/vrf/db/memory"
)

var (
	configFile = flag.String("config", "", "Location of config file.")
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.LUTC)
	flag.Parse()

	// Load config from disk.
	if *configFile == "" {
		log.Fatalf("No config file provided, see --help.")
	}
	config, err := ReadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, config)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

// run serves the API until ctx is cancelled or the server fails. The VRF key
// is destroyed before run returns, on every path.
func run(ctx context.Context, config *Config) error {
	defer config.APIConfig.vrfKey.Destroy()

	if config.MetricsAddr != "" {
		go metrics(config.MetricsAddr, config.APIConfig.suite.Name())
	}

	// Start the recorder thread.
	var tx db.EvaluationStore
	if config.DatabaseFile == "" {
		log.Println("No database configured, evaluations will be kept in memory.")
		tx = memory.NewEvaluationStore()
	} else {
		var err error
		tx, err = db.NewLDBEvaluationStore(config.DatabaseFile)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
	}
	defer tx.Close()
	ch := make(chan RecordRequest)
	recorded := make(chan struct{})

	go func() {
		recorder(tx, ch)
		close(recorded)
	}()
	// Stop the recorder, once no handler can still send to it, before the
	// database is closed.
	defer func() {
		close(ch)
		<-recorded
	}()

	// Setup handler for the API server.
	h, err := NewHandler(config.APIConfig, tx.Clone(), ch)
	if err != nil {
		return fmt.Errorf("failed to initialize handler: %v", err)
	}

	// Setup the API server.
	srv := &http.Server{
		Addr:      config.ServerAddr,
		Handler:   h.Router(),
		TLSConfig: config.tlsConfig,

		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctx.Done()
		log.Println("Shutting down API server.")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Println(err)
		}
	}()

	log.Printf("Starting API server with suite %v.", config.APIConfig.suite.Name())
	if config.TLSConfig == nil {
		err = srv.ListenAndServe()
	} else {
		err = srv.ListenAndServeTLS("", "")
	}
	if err != http.ErrServerClosed {
		// Close the server so no handler outlives the recorder.
		srv.Close()
		return err
	}
	// Wait for in-flight requests to finish.
	<-idle
	return nil
}
