package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

// End-to-end tests against a running server. They exercise the guest
// scope only, so no identity provider or admin key is needed.

var baseURL = "http://localhost:8080/api/v1"

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type testResponse struct {
	StatusCode int
	Success    bool
	Data       map[string]interface{}
	Items      []map[string]interface{}
	Message    string
}

func (r testResponse) GetString(key string) string {
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

func makeRequest(t *testing.T, method, path string, body interface{}) testResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("parse response %s: %v", string(raw), err)
	}

	out := testResponse{StatusCode: resp.StatusCode, Success: parsed.Success}
	if parsed.Error != nil {
		out.Message = parsed.Error.Message
	}
	if len(parsed.Data) > 0 {
		var asMap map[string]interface{}
		if err := json.Unmarshal(parsed.Data, &asMap); err == nil {
			out.Data = asMap
		} else {
			var asList []map[string]interface{}
			if err := json.Unmarshal(parsed.Data, &asList); err == nil {
				out.Items = asList
			}
		}
	}
	return out
}

func serverUp() bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health/live")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func TestMain(m *testing.M) {
	if url := os.Getenv("MEDIIQ_API_URL"); url != "" {
		baseURL = url
	}
	if !serverUp() {
		fmt.Printf("skipping end-to-end tests: no server at %s\n", baseURL)
		os.Exit(0)
	}
	os.Exit(m.Run())
}
