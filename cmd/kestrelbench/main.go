// Load generator for exercising a running Kestrel instance.
//
// Usage:
//   go run cmd/kestrelbench/main.go -url http://localhost:8080 -count 10000
//
// This tool:
//   1. Generates synthetic transaction, KYC, and communication payloads
//   2. Streams them at the evaluation endpoints with concurrent workers
//   3. Reports the status distribution, alert rate, and latency profile
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// request is one generated evaluation call.
type request struct {
	Path string
	Body []byte
}

// evaluateResponse is the subset of the evaluation result the bench reads.
type evaluateResponse struct {
	CorrelationID string  `json:"correlationId"`
	Domain        string  `json:"domain"`
	Status        string  `json:"status"`
	Score         float64 `json:"score"`
}

// results accumulates outcomes across workers.
type results struct {
	mu            sync.Mutex
	statusCounts  map[string]int
	domainCounts  map[string]int
	latencies     []time.Duration
	alerts        int64
	totalErrors   int64
	totalRequests int64
}

func (r *results) record(resp *evaluateResponse, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusCounts[resp.Status]++
	r.domainCounts[resp.Domain]++
	r.latencies = append(r.latencies, latency)
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Kestrel base URL")
	count := flag.Int("count", 1000, "Number of evaluations to send")
	workers := flag.Int("workers", 10, "Number of concurrent workers")
	seed := flag.Int64("seed", time.Now().UnixNano(), "PRNG seed for payload generation")
	txShare := flag.Int("tx", 70, "Percent of traffic that is transactions")
	kycShare := flag.Int("kyc", 10, "Percent of traffic that is KYC checks")
	verbose := flag.Bool("verbose", false, "Print each evaluation result")
	flag.Parse()

	if *txShare+*kycShare > 100 {
		fmt.Println("ERROR: -tx and -kyc shares must not exceed 100")
		os.Exit(1)
	}

	fmt.Println("╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║              KESTREL BENCH - Synthetic Load                   ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")
	fmt.Printf("\nKestrel URL: %s\n", *baseURL)
	fmt.Printf("Requests:    %d\n", *count)
	fmt.Printf("Workers:     %d\n", *workers)
	fmt.Printf("Mix:         %d%% tx / %d%% kyc / %d%% comms\n", *txShare, *kycShare, 100-*txShare-*kycShare)
	fmt.Printf("Seed:        %d\n", *seed)
	fmt.Println()

	if err := checkHealth(*baseURL); err != nil {
		fmt.Printf("ERROR: Kestrel not reachable at %s: %v\n", *baseURL, err)
		fmt.Println("\nMake sure Kestrel is running:")
		fmt.Println("  go run cmd/kestrel/main.go")
		os.Exit(1)
	}
	fmt.Println("✓ Kestrel is healthy")

	rng := rand.New(rand.NewSource(*seed))
	requests := make([]request, 0, *count)
	for i := 0; i < *count; i++ {
		requests = append(requests, generate(rng, i, *txShare, *kycShare))
	}
	fmt.Printf("✓ Generated %d payloads\n", len(requests))

	fmt.Printf("\nRunning with %d workers...\n", *workers)
	startTime := time.Now()
	res := run(requests, *baseURL, *workers, *verbose)
	duration := time.Since(startTime)

	printResults(res, duration)
}

func checkHealth(baseURL string) error {
	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

var (
	txTypes    = []string{"domestic", "international", "wire", "ach", "internal"}
	countries  = []string{"US", "GB", "DE", "FR", "JP", "SG", "AE", "PK", "IR", "KY"}
	channels   = []string{"email", "chat", "phone", "meeting", "sms"}
	industries = []string{"technology", "retail", "gambling", "real_estate", "hospitality"}
	messages   = []string{
		"Following up on the portfolio review from last week.",
		"I can guarantee this fund will beat the market, act fast.",
		"Please keep this between us until the announcement.",
		"The quarterly statement is attached for your records.",
		"This is a risk-free opportunity with assured returns.",
		"Can we schedule a call to discuss the rebalancing?",
	}
)

// generate builds one synthetic payload. The mix percentages choose the
// evaluation domain; amounts and attributes skew mostly benign with a
// heavy tail so some traffic trips alerts.
func generate(rng *rand.Rand, i, txShare, kycShare int) request {
	roll := rng.Intn(100)
	switch {
	case roll < txShare:
		amount := 50 + rng.Float64()*5000
		if rng.Intn(10) == 0 {
			amount = 10000 + rng.Float64()*90000
		}
		body := map[string]any{
			"amount":           fmt.Sprintf("%.2f", amount),
			"currency":         "USD",
			"senderId":         fmt.Sprintf("acct-%04d", rng.Intn(500)),
			"recipientId":      fmt.Sprintf("acct-%04d", rng.Intn(500)),
			"senderCountry":    countries[rng.Intn(len(countries))],
			"recipientCountry": countries[rng.Intn(len(countries))],
			"type":             txTypes[rng.Intn(len(txTypes))],
			"analyzePatterns":  true,
		}
		return request{Path: "/evaluate/transaction", Body: mustJSON(body)}

	case roll < txShare+kycShare:
		body := map[string]any{
			"customerId":           fmt.Sprintf("cust-%04d", rng.Intn(500)),
			"name":                 fmt.Sprintf("Customer %d", i),
			"dateOfBirth":          "1985-06-15",
			"address":              "1 Main Street",
			"documentType":         "passport",
			"documentId":           fmt.Sprintf("P-%06d", rng.Intn(1000000)),
			"nationality":          countries[rng.Intn(len(countries))],
			"industrySector":       industries[rng.Intn(len(industries))],
			"isPoliticallyExposed": rng.Intn(20) == 0,
		}
		return request{Path: "/evaluate/kyc", Body: mustJSON(body)}

	default:
		body := map[string]any{
			"content":                   messages[rng.Intn(len(messages))],
			"senderId":                  fmt.Sprintf("advisor-%02d", rng.Intn(20)),
			"recipientId":               fmt.Sprintf("client-%04d", rng.Intn(500)),
			"channel":                   channels[rng.Intn(len(channels))],
			"checkRegulatoryCompliance": true,
		}
		return request{Path: "/evaluate/communication", Body: mustJSON(body)}
	}
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func run(requests []request, baseURL string, numWorkers int, verbose bool) *results {
	res := &results{
		statusCounts: make(map[string]int),
		domainCounts: make(map[string]int),
	}

	work := make(chan request, 100)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}

			for req := range work {
				start := time.Now()
				resp, err := send(client, baseURL, req)
				latency := time.Since(start)

				atomic.AddInt64(&res.totalRequests, 1)
				if err != nil {
					atomic.AddInt64(&res.totalErrors, 1)
					if verbose {
						fmt.Printf("ERROR: %s -> %v\n", req.Path, err)
					}
					continue
				}

				res.record(resp, latency)
				if isAlerting(resp.Status) {
					atomic.AddInt64(&res.alerts, 1)
				}

				if verbose {
					fmt.Printf("%-24s | %-10s | %-26s | %.2f | %v\n",
						req.Path, resp.Domain, resp.Status, resp.Score, latency.Round(time.Millisecond))
				}
			}
		}()
	}

	for _, req := range requests {
		work <- req
	}
	close(work)
	wg.Wait()

	return res
}

func send(client *http.Client, baseURL string, req request) (*evaluateResponse, error) {
	httpReq, err := http.NewRequest(http.MethodPost, baseURL+req.Path, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var result evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func isAlerting(status string) bool {
	switch status {
	case "HIGH_RISK", "POTENTIALLY_NON_COMPLIANT", "REJECTED":
		return true
	}
	return false
}

func printResults(res *results, duration time.Duration) {
	fmt.Println("\n╔═══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                        BENCH RESULTS                          ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════╝")

	fmt.Printf("\n📊 TRAFFIC\n")
	fmt.Printf("   Total Sent:    %d\n", res.totalRequests)
	fmt.Printf("   Errors:        %d\n", res.totalErrors)
	for _, d := range sortedKeys(res.domainCounts) {
		fmt.Printf("   %-14s %d\n", d+":", res.domainCounts[d])
	}

	fmt.Printf("\n🚦 STATUS DISTRIBUTION\n")
	evaluated := int64(len(res.latencies))
	for _, s := range sortedKeys(res.statusCounts) {
		count := res.statusCounts[s]
		fmt.Printf("   %-28s %6d (%.2f%%)\n", s, count, 100*float64(count)/float64(evaluated))
	}
	if evaluated > 0 {
		fmt.Printf("   Alert rate: %.2f%%\n", 100*float64(res.alerts)/float64(evaluated))
	}

	fmt.Printf("\n⏱️  PERFORMANCE\n")
	fmt.Printf("   Total Duration:   %v\n", duration.Round(time.Millisecond))
	if evaluated > 0 {
		sort.Slice(res.latencies, func(i, j int) bool { return res.latencies[i] < res.latencies[j] })
		var total time.Duration
		for _, l := range res.latencies {
			total += l
		}
		avg := total / time.Duration(evaluated)
		p50 := res.latencies[evaluated/2]
		p95 := res.latencies[evaluated*95/100]
		p99 := res.latencies[evaluated*99/100]

		fmt.Printf("   Avg Latency:      %v\n", avg.Round(time.Microsecond))
		fmt.Printf("   p50 / p95 / p99:  %v / %v / %v\n",
			p50.Round(time.Microsecond), p95.Round(time.Microsecond), p99.Round(time.Microsecond))
		fmt.Printf("   Throughput:       %.2f req/sec\n", float64(res.totalRequests)/duration.Seconds())
	}

	fmt.Println()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
