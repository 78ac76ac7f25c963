package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tracerlib "github.com/outpostdev/tracer"
)

func main() {
	addr := os.Getenv("TRACEDEMO_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	handler := &Handler{}
	mux := http.NewServeMux()
	mux.HandleFunc("/trace", handler.Trace)

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("tracedemo: server failed: %v", err)
		}
	}()

	log.Printf("tracedemo listening on %s", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("tracedemo: shutdown error: %v", err)
	}
	if err := tracerlib.Shutdown(ctx); err != nil {
		log.Printf("tracedemo: tracer shutdown error: %v", err)
	}
}
