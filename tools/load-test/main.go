package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	baseURL     string
	adminToken  string
	employees   int
	concurrency int
	breakLength time.Duration
}

type scanOutcome struct {
	Status  string `json:"status"`
	Success bool   `json:"success"`
	Reason  string `json:"reason"`
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:   "load-test",
		Short: "Open and close a break for many employees concurrently",
		Long: `load-test seeds employees LT00000.. through the admin API (when --admin-token is
set), then every employee scans twice: once to start a break and once to end it.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}
	cmd.Flags().StringVar(&opts.baseURL, "url", "http://localhost:8080/api/v1", "API base URL")
	cmd.Flags().StringVar(&opts.adminToken, "admin-token", os.Getenv("ADMIN_TOKEN"), "admin bearer token used to seed employees")
	cmd.Flags().IntVar(&opts.employees, "employees", 2000, "number of employees")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 50, "concurrent employees, to avoid local port exhaustion")
	cmd.Flags().DurationVar(&opts.breakLength, "break", 0, "pause between the two scans of an employee")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func badge(i int) string {
	return fmt.Sprintf("LT%05d", i)
}

func run(opts options) error {
	if opts.adminToken != "" {
		if err := seed(opts); err != nil {
			return err
		}
	}

	fmt.Printf("Starting load test: %d employees (2 scans each) against %s with concurrency %d\n",
		opts.employees, opts.baseURL, opts.concurrency)

	var (
		wg        sync.WaitGroup
		started   int64
		ended     int64
		rejected  int64
		failed    int64
		startTime = time.Now()
	)
	sem := make(chan struct{}, opts.concurrency)

	for i := 0; i < opts.employees; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(token string) {
			defer wg.Done()
			defer func() { <-sem }()

			for j := 0; j < 2; j++ {
				if j == 1 && opts.breakLength > 0 {
					time.Sleep(opts.breakLength)
				}
				out, err := scan(opts.baseURL, token)
				switch {
				case err != nil:
					atomic.AddInt64(&failed, 1)
				case !out.Success:
					atomic.AddInt64(&rejected, 1)
				case out.Status == "entrada":
					atomic.AddInt64(&started, 1)
				default:
					atomic.AddInt64(&ended, 1)
				}
			}
		}(badge(i))
	}

	wg.Wait()
	duration := time.Since(startTime)
	total := opts.employees * 2

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration:  %v\n", duration)
	fmt.Printf("Total Scans:     %d\n", total)
	fmt.Printf("Breaks started:  %d\n", started)
	fmt.Printf("Breaks ended:    %d\n", ended)
	fmt.Printf("Rejected:        %d\n", rejected)
	fmt.Printf("Failed:          %d\n", failed)
	fmt.Printf("Scans/Sec:       %.2f\n", float64(total)/duration.Seconds())
	return nil
}

func scan(baseURL, token string) (scanOutcome, error) {
	var out scanOutcome

	payload, _ := json.Marshal(map[string]string{"token": token})
	resp, err := http.Post(baseURL+"/scan", "application/json", bytes.NewReader(payload))
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("status %d", resp.StatusCode)
	}
	return out, json.NewDecoder(resp.Body).Decode(&out)
}

func seed(opts options) error {
	client := &http.Client{Timeout: 10 * time.Second}
	created := 0

	for i := 0; i < opts.employees; i++ {
		body, _ := json.Marshal(map[string]string{
			"name":  fmt.Sprintf("Load Test %05d", i),
			"badge": badge(i),
			"code":  badge(i),
			"shift": "Full",
		})
		req, err := http.NewRequest(http.MethodPost, opts.baseURL+"/admin/employees", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+opts.adminToken)

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("seed employee %d: %w", i, err)
		}
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			return fmt.Errorf("seed employee %d: status %d", i, resp.StatusCode)
		}
	}

	fmt.Printf("Seeded %d employees (%d already present)\n", created, opts.employees-created)
	return nil
}
