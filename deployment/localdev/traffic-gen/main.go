// Command traffic-gen posts synthetic interactions, feedback, and
// performance snapshots at a running pmm-engine for local development.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"
)

type interaction struct {
	ID           string         `json:"interaction_id"`
	Prompt       string         `json:"prompt"`
	Response     string         `json:"response"`
	ResponseTime float64        `json:"response_time"`
	ModelVersion string         `json:"model_version"`
	Metadata     map[string]any `json:"metadata"`
}

type feedback struct {
	InteractionID string `json:"interaction_id"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment,omitempty"`
}

type snapshot struct {
	Availability float64 `json:"availability"`
	ErrorRate    float64 `json:"error_rate"`
	Throughput   float64 `json:"throughput"`
	ActiveUsers  int     `json:"active_users"`
}

func main() {
	var (
		base     string
		interval time.Duration
		degrade  bool
	)
	flag.StringVar(&base, "base", "http://localhost:8080", "pmm-engine base URL")
	flag.DurationVar(&interval, "interval", 2*time.Second, "delay between batches")
	flag.BoolVar(&degrade, "degrade", false, "simulate gradually degrading accuracy")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	accuracy := 0.96

	for i := 0; ; i++ {
		if degrade && accuracy > 0.80 {
			accuracy -= 0.005
		}

		in := interaction{
			ID:           fmt.Sprintf("dev-%d", i),
			Prompt:       "what is the capital of France?",
			Response:     "Paris",
			ResponseTime: 80 + rand.Float64()*200,
			ModelVersion: "dev-1",
			Metadata: map[string]any{
				"response_accuracy":  accuracy + rand.Float64()*0.01,
				"hallucination_rate": rand.Float64() * 0.03,
			},
		}
		post(client, base+"/api/v1/interactions/log", in)

		if i%5 == 0 {
			post(client, base+"/api/v1/feedback/submit", feedback{
				InteractionID: in.ID,
				Rating:        3 + rand.Intn(3),
			})
		}
		if i%10 == 0 {
			post(client, base+"/api/v1/performance/snapshot", snapshot{
				Availability: 99.9 + rand.Float64()*0.09,
				ErrorRate:    rand.Float64() * 0.8,
				Throughput:   100 + rand.Float64()*50,
				ActiveUsers:  50 + rand.Intn(100),
			})
		}

		time.Sleep(interval)
	}
}

func post(client *http.Client, url string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal: %v", err)
		return
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		log.Printf("POST %s: %v", url, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("POST %s: status %d", url, resp.StatusCode)
	}
}
