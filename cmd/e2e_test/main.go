package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
)

var baseURL = flag.String("base", "http://localhost:8080", "server under test")

func main() {
	flag.Parse()

	// Wait for server to start
	time.Sleep(2 * time.Second)

	// 1. Health Check
	checkEndpoint("GET", "/health", nil, 200)

	// 2. Seed and read back the portfolio
	checkEndpoint("POST", "/api/portfolio/init-test-data", nil, 200)
	cur := checkEndpoint("GET", "/api/portfolio/current", nil, 200)
	expectNumber(cur, "$.totalValue", 105000)
	expectNumber(cur, "$.items[0].value", 67500)

	// 3. Replace holdings
	upd := checkEndpoint("PUT", "/api/portfolio", map[string]interface{}{
		"items": []map[string]interface{}{
			{"cryptoType": "BTC", "quantity": 1.5, "price": 45000},
			{"cryptoType": "ETH", "quantity": 10, "price": 3000},
		},
	}, 200)
	expectNumber(upd, "$.data.totalValue", 97500)
	checkEndpoint("PUT", "/api/portfolio", map[string]interface{}{"items": []interface{}{}}, 400)

	// 4. History includes today's row set
	hist := checkEndpoint("GET", "/api/portfolio/history?days=1", nil, 200)
	expectNumber(hist, "$[-1:].totalValue", 97500)

	// 5. AI projection
	ai := checkEndpoint("GET", "/api/portfolio/ai/holdings", nil, 200)
	expectNumber(ai, "$.totalValueUSD", 97500)

	// 6. Messages and reports
	msg := checkEndpoint("POST", "/api/messages", map[string]interface{}{
		"cryptoType": "BTC", "content": "e2e message", "sentiment": "neutral",
	}, 200)
	msgID := intAt(msg, "$.data.id")
	checkEndpoint("PUT", fmt.Sprintf("/api/messages/%d/read", msgID), nil, 200)

	rep := checkEndpoint("POST", "/api/reports", map[string]interface{}{"title": "e2e report"}, 201)
	repID := intAt(rep, "$.id")
	checkEndpoint("POST", fmt.Sprintf("/api/reports/%d/suggestions", repID), map[string]interface{}{
		"cryptoType": "BTC", "currentPercentage": 69.23, "suggestedPercentage": 60, "reason": "e2e",
	}, 201)
	detail := checkEndpoint("GET", fmt.Sprintf("/api/reports/%d", repID), nil, 200)
	expectNumber(detail, "$.portfolioSnapshot.totalValue", 97500)
	checkEndpoint("PUT", fmt.Sprintf("/api/reports/%d/status", repID), map[string]interface{}{"status": "approved"}, 200)

	// 7. Overview
	checkEndpoint("GET", "/api/system/overview", nil, 200)

	fmt.Println("ALL TESTS PASSED")
}

func checkEndpoint(method, path string, body interface{}, expectedStatus int) interface{} {
	fmt.Printf("Testing %s %s...\n", method, path)
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, _ := http.NewRequest(method, *baseURL+path, bodyReader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		log.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(respBody))
	}
	fmt.Printf("Response: %s\n", string(respBody))

	var v interface{}
	if err := json.Unmarshal(respBody, &v); err != nil {
		log.Fatalf("Response is not JSON: %v", err)
	}
	return v
}

// valueAt evaluates a JSONPath expression, unwrapping single-element results.
func valueAt(doc interface{}, path string) interface{} {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		log.Fatalf("jsonpath %q: %v", path, err)
	}
	if list, ok := v.([]interface{}); ok && len(list) > 0 {
		v = list[0]
	}
	return v
}

func expectNumber(doc interface{}, path string, want float64) {
	got, ok := valueAt(doc, path).(float64)
	if !ok || math.Abs(got-want) > 1e-6 {
		log.Fatalf("%s: expected %v, got %v", path, want, got)
	}
}

func intAt(doc interface{}, path string) int64 {
	v, ok := valueAt(doc, path).(float64)
	if !ok {
		log.Fatalf("%s: not a number", path)
	}
	return int64(v)
}
