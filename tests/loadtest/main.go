// Command loadtest drives a running "livenotes serve" with concurrent
// annotation and listing traffic and prints per-endpoint latency figures.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

var (
	baseURL      = flag.String("url", "http://127.0.0.1:8090", "server base URL")
	numWorkers   = flag.Int("workers", 50, "concurrent workers")
	phaseLength  = flag.Duration("duration", 10*time.Second, "length of each phase")
	numRooms     = flag.Int("rooms", 5, "rooms to spread traffic over")
	broadcasters = []string{"alice", "bob", "carol", "dave"}
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	flag.Parse()
	fmt.Println("=== livenotes load test ===")
	fmt.Printf("Workers: %d | Phase: %s | Rooms: %d\n\n", *numWorkers, *phaseLength, *numRooms)

	fmt.Print("Waiting for server... ")
	if !waitForServer() {
		fmt.Println("FAILED: server not responding")
		return
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: annotations only (POST /points) ---")
	runPhase(func(rng *rand.Rand) result { return doRecord(rng) })

	fmt.Println("\n--- Phase 2: mixed (60% record, 30% list, 10% export) ---")
	runPhase(func(rng *rand.Rand) result {
		switch r := rng.Float64(); {
		case r < 0.60:
			return doRecord(rng)
		case r < 0.90:
			return doList(rng)
		default:
			return doExport(rng)
		}
	})

	fmt.Println("\n--- Phase 3: panel closed (POST /compact) under read load ---")
	runPhase(func(rng *rand.Rand) result {
		if rng.Float64() < 0.05 {
			return doCompact(rng)
		}
		return doList(rng)
	})
}

func waitForServer() bool {
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return true
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false
}

func runPhase(workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var stopped atomic.Bool

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for !stopped.Load() {
				results <- workFn(rng)
			}
		}(time.Now().UnixNano() + int64(i))
	}

	all := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := all[r.endpoint]
			if !ok {
				s = &stats{}
				all[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(*phaseLength)
	stopped.Store(true)
	wg.Wait()
	close(results)
	<-done

	printResults(all, *phaseLength)
}

func printResults(all map[string]*stats, duration time.Duration) {
	var totalOps, totalErrors int64

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s\n", "Endpoint", "Reqs", "Errs", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 76))

	endpoints := make([]string, 0, len(all))
	for ep := range all {
		endpoints = append(endpoints, ep)
	}
	slices.Sort(endpoints)

	for _, ep := range endpoints {
		s := all[ep]
		totalOps += s.count
		totalErrors += s.errors
		slices.Sort(s.latencies)
		fmt.Printf("  %-22s %8d %6d %10s %10s %10s\n", ep, s.count, s.errors,
			fmtDur(percentile(s.latencies, 0.50)), fmtDur(percentile(s.latencies, 0.95)), fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	fmt.Println("  " + strings.Repeat("-", 76))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

func room(rng *rand.Rand) string {
	return fmt.Sprintf("%d", rng.Intn(*numRooms)+1)
}

func call(endpoint, method, url string, body []byte, okStatus ...int) result {
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return result{endpoint: endpoint, err: true}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, lat, !slices.Contains(okStatus, resp.StatusCode)}
}

func doRecord(rng *rand.Rand) result {
	name := broadcasters[rng.Intn(len(broadcasters))]
	body, _ := json.Marshal(map[string]any{
		"text":  fmt.Sprintf("note %d", rng.Intn(1_000_000)),
		"start": 1_700_000_000 + int64(rng.Intn(3))*86_400,
		"name":  name,
		"link":  "https://live.example/" + name,
		"title": fmt.Sprintf("stream %d", rng.Intn(3)),
	})
	return call("POST /points", http.MethodPost, *baseURL+"/points?room="+room(rng), body, http.StatusCreated)
}

func doList(rng *rand.Rand) result {
	return call("GET /sessions", http.MethodGet, *baseURL+"/sessions?room="+room(rng), nil, http.StatusOK)
}

func doExport(rng *rand.Rand) result {
	r := room(rng)
	resp, err := httpClient.Get(*baseURL + "/sessions?room=" + r)
	if err != nil {
		return result{endpoint: "GET /export", err: true}
	}
	var views []struct {
		Sessions []struct {
			ID string `json:"id"`
		} `json:"sessions"`
	}
	err = json.NewDecoder(resp.Body).Decode(&views)
	resp.Body.Close()
	if err != nil || len(views) == 0 || len(views[0].Sessions) == 0 {
		return result{endpoint: "GET /export", err: err != nil}
	}
	id := views[0].Sessions[0].ID
	return call("GET /export", http.MethodGet, *baseURL+"/export?room="+r+"&session="+id, nil, http.StatusOK)
}

func doCompact(rng *rand.Rand) result {
	return call("POST /compact", http.MethodPost, *baseURL+"/compact?room="+room(rng), nil, http.StatusOK)
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
