//go:build ignore
// +build ignore

// Manual concurrency stress check for the inventory check-out endpoint.
//
// Usage:
//
//	go run ./scripts/concurrency_check.go <item_id> [workers]
//
// Or with environment variables:
//
//	ITEM_ID=<id> WORKERS=20 AUTH=clerk:secret go run ./scripts/concurrency_check.go
//
// What it does:
//  1. Fires N goroutines all attempting to check out the same inventory item
//     simultaneously.
//  2. Counts successes (200) vs conflicts (409).
//  3. Exactly one success is expected; anything else indicates the guarded
//     update is broken.
//
// Prerequisites: server running, an inventory item that is checked in, and
// Basic-auth credentials with at least the Employee role.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
)

const defaultServerAddr = "http://localhost:8080"

func main() {
	serverAddr := os.Getenv("SERVER_ADDR")
	if serverAddr == "" {
		serverAddr = defaultServerAddr
	}

	auth := os.Getenv("AUTH")
	if auth == "" {
		auth = "clerk:secret"
	}
	creds := strings.SplitN(auth, ":", 2)
	if len(creds) != 2 {
		log.Fatal("AUTH must be user:pass")
	}

	itemID := os.Getenv("ITEM_ID")
	workers := 10
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			workers = n
		}
	}

	args := os.Args[1:]
	if len(args) >= 1 {
		itemID = args[0]
	}
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			workers = n
		}
	}

	if itemID == "" {
		log.Fatal("Usage: ITEM_ID=<id> go run ./scripts/concurrency_check.go\n" +
			"  or: go run ./scripts/concurrency_check.go <item_id> [workers]")
	}

	fmt.Printf("=== Inventory Check-Out Concurrency Check ===\n")
	fmt.Printf("Server: %s, item: %s, workers: %d\n\n", serverAddr, itemID, workers)

	url := fmt.Sprintf("%s/api/inventory/%s/checkout", serverAddr, itemID)

	var wg sync.WaitGroup
	results := make(chan int, workers)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			req, err := http.NewRequest(http.MethodPost, url, nil)
			if err != nil {
				results <- -1
				return
			}
			req.SetBasicAuth(creds[0], creds[1])

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				results <- -1
				return
			}
			resp.Body.Close()
			results <- resp.StatusCode
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	var ok, conflict, other int
	for code := range results {
		switch code {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		default:
			other++
		}
	}

	fmt.Printf("successes: %d\nconflicts: %d\nother:     %d\n\n", ok, conflict, other)
	if ok == 1 && other == 0 {
		fmt.Println("PASS: exactly one check-out succeeded")
	} else {
		fmt.Println("FAIL: expected exactly one success")
		os.Exit(1)
	}
}
