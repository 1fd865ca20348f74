// order-watch is a development utility that follows one order through the
// approval workflow from the command line. It polls the status endpoint the
// same way the storefront does and prints each transition until the order
// reaches a terminal state.
//
// Usage:
//
//	go run ./cmd/order-watch -base-url http://localhost:8080 -order ord_123 -user usr_1
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/approval"
)

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "ordering service base URL")
	orderID := flag.String("order", "", "order id to watch")
	userID := flag.String("user", "", "user id owning the order (needed for -cancel-after)")
	interval := flag.Duration("interval", approval.DefaultPollInterval, "poll interval")
	maxWait := flag.Duration("max-wait", 0, "give up after this long (0 waits forever)")
	cancelAfter := flag.Duration("cancel-after", 0, "send a cancel after this long (0 never cancels)")
	flag.Parse()

	if *orderID == "" {
		fmt.Fprintln(os.Stderr, "order-watch: -order is required")
		flag.Usage()
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "order-watch: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client := approval.NewClient(approval.ClientConfig{BaseURL: *baseURL}, logger)

	done := make(chan string, 1)
	session, err := approval.NewSession(client, *orderID, *userID, approval.SessionConfig{
		PollInterval: *interval,
		MaxWait:      *maxWait,
	}, approval.Callbacks{
		OnTick: func(elapsed time.Duration) {
			fmt.Printf("waiting for vendor approval (%s)\n", elapsed.Round(time.Second))
		},
		OnAccepted: func() {
			done <- "order accepted, preparation started"
		},
		OnDenied: func(reason string) {
			done <- fmt.Sprintf("order denied: %s", reason)
		},
		OnCancelled: func() {
			done <- "order cancelled"
		},
		OnExpired: func() {
			done <- "order expired without a vendor decision"
		},
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "order-watch: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := session.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "order-watch: failed to start session: %v\n", err)
		os.Exit(1)
	}
	defer session.Stop()

	fmt.Printf("watching order %s on %s every %s\n", *orderID, *baseURL, *interval)

	if *cancelAfter > 0 {
		time.AfterFunc(*cancelAfter, func() {
			fmt.Println("sending cancel request")
			if err := session.RequestCancel(); err != nil {
				fmt.Printf("cancel not possible: %v\n", err)
				return
			}
			if err := session.ConfirmCancel(ctx); err != nil {
				fmt.Printf("cancel failed, still waiting: %v\n", err)
			}
		})
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case outcome := <-done:
		fmt.Println(outcome)
	case <-quit:
		fmt.Println("interrupted")
	}
}
