// README: Smoke cases; reference quote scenarios, validation failures, summary text, DB/Redis and load checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	Latency time.Duration `json:"latency_ns,omitempty"`
	Note    string        `json:"note,omitempty"`
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	quotes := base + "/api/quotes"
	return []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "tariff table reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "tariff cache reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "apply the tariff migration",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: StatusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: StatusFail, Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: StatusFail, Note: err.Error()}
					}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "tables declared by the migration exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: StatusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: StatusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Migration: default tariff seeded",
			Focus: "default row matches the built-in rates",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: StatusSkip, Note: "db not configured"}
				}
				var rate int64
				var minEquipment int
				err := r.db.QueryRow(ctx,
					"SELECT daily_rate_per_unit, min_equipment FROM tariffs WHERE code = 'default'",
				).Scan(&rate, &minEquipment)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if rate != 35000 || minEquipment != 2 {
					return Result{Status: StatusFail, Note: fmt.Sprintf("rate=%d min=%d", rate, minEquipment)}
				}
				return Result{Status: StatusPass}
			},
		},
		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}),

		// Reference scenarios
		quoteCase("Quote: A within city", quotes, 2, 3, 0, "WithinCity", 210000.00),
		quoteCase("Quote: B outside city", quotes, 3, 4, 0, "OutsideCity", 441000.00),
		quoteCase("Quote: C extra days", quotes, 2, 3, 2, "WithinCity", 336000.00),
		quoteCase("Quote: D outside city with extra day", quotes, 3, 2, 1, "OutsideCity", 324135.00),
		quoteCase("Quote: on premises", quotes, 4, 2, 0, "OnPremises", 266000.00),
		quoteCase("Quote: on premises with extra days", quotes, 5, 4, 3, "OnPremises", 1093925.00),
		quoteCase("Quote: 50 extra days reach zero", quotes, 2, 1, 50, "WithinCity", 0),

		// Validation
		rejectCase("Validation: one unit", quotes, map[string]any{"equipment_count": 1, "initial_days": 5}, "BelowMinimum"),
		rejectCase("Validation: zero days", quotes, map[string]any{"equipment_count": 2, "initial_days": 0}, "NonPositiveDays"),
		rejectCase("Validation: negative extra days", quotes, map[string]any{"equipment_count": 2, "initial_days": 5, "extra_days": -1}, "NegativeExtraDays"),
		rejectCase("Validation: fractional days", quotes, map[string]any{"equipment_count": 2, "initial_days": 5.5}, "InvalidType"),
		rejectCase("Validation: unknown mode", quotes, map[string]any{"equipment_count": 2, "initial_days": 5, "mode": "Imprimir"}, "UnknownMode"),

		{
			Name:  "Summary: outside city text",
			Focus: "summary block carries the formatted total",
			Run: func(ctx context.Context, r *Runner) Result {
				status, body, latency, err := r.post(ctx, base+"/api/quotes/summary", map[string]any{
					"equipment_count": 2, "initial_days": 3, "extra_days": 1, "mode": "OutsideCity",
				})
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				text := string(body)
				if status != http.StatusOK || !strings.Contains(text, "VALOR TOTAL A CANCELAR: $288,120.00") || strings.Contains(text, "Imprimir") {
					return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: StatusPass, Latency: latency}
			},
		},

		httpCaseMethod("Tariff: default", http.MethodGet, base+"/api/tariffs/default", nil, []int{200}),
		httpCaseMethod("Tariff: unknown -> 404", http.MethodGet, base+"/api/tariffs/does-not-exist", nil, []int{404}),
		{
			Name:  "Tariff: cached in Redis",
			Focus: "store hits are written back to the cache",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: StatusSkip, Note: "redis not configured"}
				}
				n, err := r.redis.Exists(ctx, "alquipc:tariff:default").Result()
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if n == 0 {
					return Result{Status: StatusSkip, Note: "not cached; API may serve tariffs from config"}
				}
				return Result{Status: StatusPass}
			},
		},
		{
			Name:  "Mode: resolve address",
			Focus: "geocoding suggests a mode",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.post(ctx, base+"/api/modes/resolve", map[string]any{"address": "Carrera 7 # 32-16, Bogotá"})
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				switch status {
				case http.StatusOK:
					return Result{Status: StatusPass, Latency: latency}
				case http.StatusServiceUnavailable:
					return Result{Status: StatusSkip, Latency: latency, Note: "maps not configured"}
				}
				return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			},
		},

		// Concurrency
		{
			Name:  "Concurrency: identical quotes agree",
			Focus: "pricing is deterministic under load",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentQuotes(ctx, r, quotes)
			},
		},

		// Performance
		{
			Name:  "Perf: quote throughput",
			Focus: "sustained quote requests",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, quotes, map[string]any{
					"equipment_count": 3, "initial_days": 2, "extra_days": 1, "mode": "OutsideCity",
				})
			},
		},
	}
}

func (r *Runner) post(ctx context.Context, url string, body any) (int, []byte, time.Duration, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return 0, nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	return resp.StatusCode, out, time.Since(start), err
}

func quoteCase(name, url string, equipment, days, extra int, mode string, want float64) TestCase {
	return TestCase{
		Name:  name,
		Focus: "reference total",
		Run: func(ctx context.Context, r *Runner) Result {
			status, body, latency, err := r.post(ctx, url, map[string]any{
				"equipment_count": equipment, "initial_days": days, "extra_days": extra, "mode": mode,
			})
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			if status != http.StatusOK {
				return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			var got struct {
				Total float64 `json:"total"`
			}
			if err := json.Unmarshal(body, &got); err != nil {
				return Result{Status: StatusFail, Latency: latency, Note: err.Error()}
			}
			if got.Total != want {
				return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("total=%.2f want=%.2f", got.Total, want)}
			}
			return Result{Status: StatusPass, Latency: latency}
		},
	}
}

func rejectCase(name, url string, body map[string]any, kind string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "typed validation error",
		Run: func(ctx context.Context, r *Runner) Result {
			status, out, latency, err := r.post(ctx, url, body)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			var got struct {
				Kind string `json:"kind"`
			}
			_ = json.Unmarshal(out, &got)
			if status != http.StatusBadRequest || got.Kind != kind {
				return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d kind=%q", status, got.Kind)}
			}
			return Result{Status: StatusPass, Latency: latency}
		},
	}
}

func httpCaseMethod(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, err := json.Marshal(body)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				reader = strings.NewReader(string(b))
			}
			req, err := http.NewRequestWithContext(ctx, method, url, reader)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if contains(okStatuses, resp.StatusCode) {
				return Result{Status: StatusPass, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: StatusFail, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func concurrentQuotes(ctx context.Context, r *Runner, url string) Result {
	payload := map[string]any{"equipment_count": 7, "initial_days": 9, "extra_days": 3, "mode": "OnPremises"}
	wg := sync.WaitGroup{}
	mu := sync.Mutex{}
	totals := map[float64]int{}
	failed, limited := 0, 0

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, body, _, err := r.post(ctx, url, payload)
			var got struct {
				Total float64 `json:"total"`
			}
			mu.Lock()
			defer mu.Unlock()
			if status == http.StatusTooManyRequests {
				limited++
				return
			}
			if err != nil || status != http.StatusOK || json.Unmarshal(body, &got) != nil {
				failed++
				return
			}
			totals[got.Total]++
		}()
	}
	wg.Wait()

	if failed > 0 {
		return Result{Status: StatusFail, Note: fmt.Sprintf("failed=%d", failed)}
	}
	if len(totals) == 0 {
		return Result{Status: StatusSkip, Note: "all requests rate limited"}
	}
	if len(totals) != 1 {
		return Result{Status: StatusFail, Note: fmt.Sprintf("distinct totals=%d", len(totals))}
	}
	return Result{Status: StatusPass, Note: fmt.Sprintf("requests=%d rate_limited=%d", r.cfg.Concurrency, limited)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, err := json.Marshal(payload)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	if _, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil); err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
				if err != nil {
					return
				}
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				mu.Lock()
				if err != nil || resp.StatusCode != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
				if err == nil {
					io.Copy(io.Discard, resp.Body)
					resp.Body.Close()
				}
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	// 429s from the per-IP limiter are expected here.
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f non-200=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	matches := createTableRe.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	cleaned := strings.Join(filtered, "\n")
	parts := strings.Split(cleaned, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
