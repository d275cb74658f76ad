// Package advisor provides the smart-diagnosis suggestion for repair
// check-ins: one call to a text-generation API, a fixed fallback string on
// any failure. Nothing here is ever stored, retried, or raised to the caller
// as an error.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"bitbucket.org/iberryms/repairshop_backend/config"
	"github.com/sirupsen/logrus"
)

const (
	// Fallback is the literal string returned on every failure path.
	Fallback = "AI diagnostic service currently unavailable."

	// emptyFallback covers a successful call that produced no text.
	emptyFallback = "No diagnosis available."

	defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel    = "gemini-3-pro-preview"
)

type Advisor struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
	logg     *logrus.Logger
}

func New(logg *logrus.Logger) *Advisor {
	endpoint := os.Getenv("GENAI_ENDPOINT")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	model := os.Getenv("GENAI_MODEL")
	if model == "" {
		model = defaultModel
	}
	return &Advisor{
		endpoint: endpoint,
		model:    model,
		apiKey:   os.Getenv("GENAI_API_KEY"),
		client:   &http.Client{Timeout: 20 * time.Second},
		logg:     logg,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Diagnose returns a short diagnosis suggestion for the device and fault, or
// the fallback string. It never returns an error and is never retried.
func (a *Advisor) Diagnose(ctx context.Context, model string, fault string) string {
	prompt := fmt.Sprintf(
		"Analyze the device model %q and the reported fault %q. Provide a professional diagnosis and suggested repair steps in under 80 words.",
		model, fault,
	)

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return Fallback
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.endpoint, a.model, a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Fallback
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		config.LogError(a.logg, "advisor.go", "Diagnose", "request", nil, err)
		return Fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		config.LogError(a.logg, "advisor.go", "Diagnose", "status", resp.StatusCode, fmt.Errorf("diagnosis service returned %s", resp.Status))
		return Fallback
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		config.LogError(a.logg, "advisor.go", "Diagnose", "decode", nil, err)
		return Fallback
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return emptyFallback
	}
	text := parsed.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return emptyFallback
	}
	return text
}
