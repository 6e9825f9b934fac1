package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mateluky/f1-race-intelligence/internal/logging"
	"github.com/mateluky/f1-race-intelligence/internal/server"
)

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "Listen address (default from config, :8080)")
	fs.Parse(os.Args[1:])

	a := openApp()
	defer a.Close()

	listen := *addr
	if listen == "" {
		listen = a.Config().Server.Addr
	}

	srv := server.New(a)

	done := make(chan error, 1)
	go func() { done <- srv.Run(listen) }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-done:
		if err != nil {
			fatalf("server failed: %v", err)
		}
	case <-sig:
		logging.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fatalf("shutdown failed: %v", err)
		}
	}
}
