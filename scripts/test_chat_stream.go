//go:build ignore
// +build ignore

// test_chat_stream is a manual end-to-end check against a running
// PromptDeck instance. It posts a chat request and prints the streamed
// events as they arrive. NOT executed during CI (go test ./...).
//
// Usage:
//
//	go run scripts/test_chat_stream.go
//	PROMPTDECK_URL=http://localhost:28084 PROMPTDECK_CHAT_SECRET=... go run scripts/test_chat_stream.go
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	baseURL := os.Getenv("PROMPTDECK_URL")
	if baseURL == "" {
		baseURL = "http://localhost:28084"
	}

	body := map[string]any{
		"messages": []map[string]any{
			{
				"id":   "manual-1",
				"role": "user",
				"parts": []map[string]any{
					{"type": "text", "text": "Reply with one short sentence."},
				},
			},
		},
		"model": "grok-3-mini",
	}
	payload, _ := json.Marshal(body)

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if secret := os.Getenv("PROMPTDECK_CHAT_SECRET"); secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	fmt.Printf("status: %s (after %s)\n", resp.Status, time.Since(start))

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fmt.Printf("%8s  %s\n", time.Since(start).Truncate(time.Millisecond), line)
		if strings.HasSuffix(line, "[DONE]") {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
}
