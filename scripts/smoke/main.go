// Command smoke probes a running API instance and reports whether its
// public surface behaves as deployed instances should: health and
// readiness respond, metrics are exposed, and protected routes reject
// anonymous callers. Exits non-zero when any critical probe fails.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type probe struct {
	Method     string
	Path       string
	WantStatus int
	Critical   bool
}

type result struct {
	Probe    probe
	Status   int
	Match    bool
	Duration time.Duration
	Error    error
}

func main() {
	var (
		base      string
		apiPrefix string
		timeout   time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&apiPrefix, "api-prefix", "/api", "route prefix for the versioned API")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	probes := []probe{
		{Method: http.MethodGet, Path: "/health", WantStatus: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/ready", WantStatus: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/metrics", WantStatus: http.StatusOK, Critical: false},
		{Method: http.MethodGet, Path: apiPrefix + "/documents", WantStatus: http.StatusUnauthorized, Critical: true},
		{Method: http.MethodGet, Path: apiPrefix + "/heads/major", WantStatus: http.StatusUnauthorized, Critical: true},
		{Method: http.MethodGet, Path: apiPrefix + "/admin/stats", WantStatus: http.StatusUnauthorized, Critical: true},
		{Method: http.MethodPost, Path: apiPrefix + "/auth/request-otp", WantStatus: http.StatusBadRequest, Critical: false},
	}

	client := &http.Client{Timeout: timeout}
	var failures int

	fmt.Println("Smoke Report")
	fmt.Println("============")
	for _, p := range probes {
		res := run(client, base, p)
		status := "OK"
		if res.Error != nil || !res.Match {
			if p.Critical {
				status = "FAIL"
				failures++
			} else {
				status = "WARN"
			}
		}
		fmt.Printf("[%s] %s %s\n", status, p.Method, p.Path)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Status: %d (want %d) in %s\n", res.Status, p.WantStatus, res.Duration)
	}

	fmt.Printf("Critical failures: %d\n", failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func run(client *http.Client, base string, p probe) result {
	res := result{Probe: p}
	url := strings.TrimRight(base, "/") + p.Path

	req, err := http.NewRequest(p.Method, url, nil)
	if err != nil {
		res.Error = err
		return res
	}
	if p.Method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err
		return res
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("close response body: %v", err)
		}
	}()

	res.Status = resp.StatusCode
	res.Match = res.Status == p.WantStatus
	return res
}
