//go:build ignore
// +build ignore

// Package main provides a manual concurrency stress test for borrow-request
// approval.
//
// Usage:
//
//	TOKEN=<staff jwt> go run ./scripts/concurrency_test.go <request_id> [request_id ...]
//
// Or with environment variables:
//
//	TOKEN=<staff jwt> REQUEST_IDS=<id1>,<id2>,... go run ./scripts/concurrency_test.go
//
// What it does:
//  1. Fires one goroutine per pending request, all hitting POST /requests/{id}/approve
//     simultaneously. The requests should all target the same equipment so the
//     combined quantities exceed its available quantity.
//  2. Prints how many approvals succeeded vs. were rejected with an
//     insufficient-availability conflict.
//  3. The guarded conditional decrement means the sum of approved quantities can
//     never exceed the equipment's available quantity — verify via GET /equipment/{id}
//     that available_quantity is still >= 0 afterwards.
//
// Prerequisites:
//   - Server running, staff/admin JWT in TOKEN.
//   - Several pending requests for the same equipment already created.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const defaultServerAddr = "http://localhost:8080"

type approveResult struct {
	RequestID  string
	StatusCode int
	Body       string
	Err        error
}

func main() {
	serverAddr := os.Getenv("SERVER_ADDR")
	if serverAddr == "" {
		serverAddr = defaultServerAddr
	}
	token := os.Getenv("TOKEN")
	if token == "" {
		log.Fatal("TOKEN environment variable is required (staff or admin JWT)")
	}

	var requestIDs []string
	if env := os.Getenv("REQUEST_IDS"); env != "" {
		requestIDs = strings.Split(env, ",")
	}
	if args := os.Args[1:]; len(args) > 0 {
		requestIDs = args
	}
	if len(requestIDs) == 0 {
		log.Fatal("Usage: TOKEN=<jwt> go run ./scripts/concurrency_test.go <request_id> [request_id ...]")
	}

	fmt.Printf("=== Approval Concurrency Test ===\n")
	fmt.Printf("Server   : %s\n", serverAddr)
	fmt.Printf("Requests : %d\n\n", len(requestIDs))

	results := make([]approveResult, len(requestIDs))
	var wg sync.WaitGroup

	// Fire all goroutines simultaneously using a barrier.
	start := make(chan struct{})

	for i, id := range requestIDs {
		wg.Add(1)
		go func(idx int, requestID string) {
			defer wg.Done()
			<-start
			results[idx] = attemptApprove(serverAddr, token, strings.TrimSpace(requestID))
		}(i, id)
	}

	fmt.Println("Firing all approvals simultaneously...")
	close(start)

	wg.Wait()
	fmt.Println("All requests completed.")
	fmt.Println()

	var approved, conflicts, failures int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failures++
			fmt.Printf("  [ERR ] request=%-8s err=%v\n", r.RequestID, r.Err)
		case r.StatusCode == http.StatusOK:
			approved++
			fmt.Printf("  [APRV] request=%-8s status=%d\n", r.RequestID, r.StatusCode)
		case r.StatusCode == http.StatusConflict:
			conflicts++
			fmt.Printf("  [CONF] request=%-8s status=%d body=%s\n", r.RequestID, r.StatusCode, r.Body)
		default:
			failures++
			fmt.Printf("  [FAIL] request=%-8s status=%d body=%s\n", r.RequestID, r.StatusCode, r.Body)
		}
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Approved  : %d\n", approved)
	fmt.Printf("Conflicts : %d\n", conflicts)
	fmt.Printf("Failures  : %d\n", failures)
	fmt.Printf("Total     : %d\n\n", len(requestIDs))

	fmt.Println("--- Invariant Check ---")
	fmt.Println("The conditional decrement (available_quantity + delta >= 0) is applied")
	fmt.Println("inside each approval transaction, so approved quantities can never exceed")
	fmt.Println("the equipment's available quantity. Check GET /equipment/{id} to confirm")
	fmt.Println("available_quantity is non-negative.")

	if failures > 0 {
		fmt.Printf("\n[WARNING] %d request(s) failed — check server logs for details.\n", failures)
		os.Exit(1)
	}
}

// attemptApprove sends POST /requests/{id}/approve with the bearer token.
func attemptApprove(serverAddr, token, requestID string) approveResult {
	url := fmt.Sprintf("%s/requests/%s/approve", serverAddr, requestID)

	req, err := http.NewRequest(http.MethodPost, url, nil)
	if err != nil {
		return approveResult{RequestID: requestID, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return approveResult{RequestID: requestID, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	body := strings.TrimSpace(string(raw))

	// Collapse JSON bodies to a single line for readable output.
	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if msg, ok := parsed["error"].(string); ok {
			body = msg
		}
	}

	return approveResult{RequestID: requestID, StatusCode: resp.StatusCode, Body: body}
}
