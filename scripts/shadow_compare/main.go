// Command shadow_compare replays read-only requests against the legacy HR
// system and this service, and reports status and body differences. It is run
// from CI against staging while legacy traffic is being shadowed.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Method       string   `json:"method"`
	Path         string   `json:"path"`
	Critical     bool     `json:"critical"`
	IgnoreFields []string `json:"ignoreFields"`
}

type config struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target         target
	LegacyStatus   int
	RosterStatus   int
	StatusMatch    bool
	BodyMatch      bool
	Error          error
	DurationRoster time.Duration
	DurationLegacy time.Duration
}

// Fields whose values legitimately differ between the two systems. Record IDs
// are regenerated on migration and timestamps reflect write time.
var defaultIgnoreFields = []string{"id", "staff_id", "created_at", "updated_at"}

func main() {
	var (
		rosterBase  string
		legacyBase  string
		rosterToken string
		legacyToken string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&rosterBase, "roster-base", "http://localhost:8080", "Roster API base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:3000", "Legacy HR API base URL")
	flag.StringVar(&rosterToken, "roster-token", os.Getenv("ROSTER_API_TOKEN"), "Bearer token for the roster API")
	flag.StringVar(&legacyToken, "legacy-token", os.Getenv("LEGACY_API_TOKEN"), "Bearer token for the legacy API")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		comparisons  []comparison
		breaking     int
		optionalDiff int
	)

	for _, t := range targets {
		comp := compareTarget(client, rosterBase, legacyBase, rosterToken, legacyToken, t)
		if comp.Error != nil {
			if t.Critical {
				breaking++
			}
		} else {
			if !comp.StatusMatch || !comp.BodyMatch {
				if t.Critical {
					breaking++
				} else {
					optionalDiff++
				}
			}
		}
		comparisons = append(comparisons, comp)
	}

	printReport(comparisons)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func compareTarget(client *http.Client, rosterBase, legacyBase, rosterToken, legacyToken string, tgt target) comparison {
	comp := comparison{Target: tgt}
	rosterResp, rosterDur, rosterErr := performRequest(client, rosterBase, rosterToken, tgt)
	legacyResp, legacyDur, legacyErr := performRequest(client, legacyBase, legacyToken, tgt)
	comp.DurationRoster = rosterDur
	comp.DurationLegacy = legacyDur

	if rosterErr != nil {
		comp.Error = fmt.Errorf("roster request failed: %w", rosterErr)
		return comp
	}
	if legacyErr != nil {
		comp.Error = fmt.Errorf("legacy request failed: %w", legacyErr)
		return comp
	}

	comp.RosterStatus = rosterResp.StatusCode
	comp.LegacyStatus = legacyResp.StatusCode
	comp.StatusMatch = comp.RosterStatus == comp.LegacyStatus

	defer rosterResp.Body.Close()
	defer legacyResp.Body.Close()

	rosterBody, err := io.ReadAll(rosterResp.Body)
	if err != nil {
		comp.Error = fmt.Errorf("read roster body: %w", err)
		return comp
	}
	legacyBody, err := io.ReadAll(legacyResp.Body)
	if err != nil {
		comp.Error = fmt.Errorf("read legacy body: %w", err)
		return comp
	}

	ignore := append([]string{}, defaultIgnoreFields...)
	ignore = append(ignore, tgt.IgnoreFields...)
	comp.BodyMatch = bodiesEqual(rosterBody, legacyBody, ignore)

	return comp
}

func performRequest(client *http.Client, base, token string, tgt target) (*http.Response, time.Duration, error) {
	if client == nil {
		return nil, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := strings.TrimRight(base, "/") + path

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return resp, time.Since(start), nil
}

func bodiesEqual(a, b []byte, ignoreFields []string) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	ignored := make(map[string]struct{}, len(ignoreFields))
	for _, f := range ignoreFields {
		ignored[f] = struct{}{}
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	normalize(&aj, ignored)
	normalize(&bj, ignored)
	return reflect.DeepEqual(aj, bj)
}

func normalize(v *interface{}, ignored map[string]struct{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, v2 := range val {
			if _, skip := ignored[k]; skip {
				delete(val, k)
				continue
			}
			normalize(&v2, ignored)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2, ignored)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func printReport(results []comparison) {
	fmt.Println("Shadow Compare Report")
	fmt.Println("======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		fmt.Printf("  Roster Status: %d (%s)\n", res.RosterStatus, res.DurationRoster)
		fmt.Printf("  Legacy Status: %d (%s)\n", res.LegacyStatus, res.DurationLegacy)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
		}
	}
}
