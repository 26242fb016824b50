package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const (
	textModel  = "gemini-2.5-flash"
	imageModel = "imagen-3.0-generate-002"
)

// ErrEmptyResponse is returned when the API answers without any
// usable content.
var ErrEmptyResponse = errors.New("empty response from coach")

// Gemini is a Coach Service client backed by the Generative Language
// REST API.
type Gemini struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGemini creates a client with the given API key.
func NewGemini(apiKey string) *Gemini {
	return &Gemini{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewGeminiWithBaseURL creates a client against a custom endpoint.
// Used by tests.
func NewGeminiWithBaseURL(apiKey, baseURL string) *Gemini {
	g := NewGemini(apiKey)
	g.baseURL = baseURL
	return g
}

// Motivation implements Service.
func (g *Gemini) Motivation(ctx context.Context, activityType ActivityType, goalKm, coveredKm float64) (string, error) {
	remaining := goalKm - coveredKm
	prompt := fmt.Sprintf("I'm currently on a %s. My goal is %g km. I've covered %.1f km so far, with %.1f km left. Give me a short, punchy, and encouraging message (max 2 sentences) to keep me motivated. Be upbeat and include a relevant emoji!",
		lower(activityType), goalKm, coveredKm, remaining)
	return g.generateText(ctx, prompt)
}

// Encouragement implements Service.
func (g *Gemini) Encouragement(ctx context.Context, activityType ActivityType, goalKm, coveredKm float64) (string, error) {
	remaining := goalKm - coveredKm
	prompt := fmt.Sprintf("I'm trying to finish my %s early. My goal was %g km, but I've only done %.1f km. I have %.1f km left. Give me a short, friendly, but professional and encouraging message (2-3 sentences) that nudges me to finish the last bit. Frame it from the perspective of a supportive AI coach.",
		lower(activityType), goalKm, coveredKm, remaining)
	return g.generateText(ctx, prompt)
}

// Insight implements Service.
func (g *Gemini) Insight(ctx context.Context, samples []int) (string, error) {
	if len(samples) < 5 {
		return "Not enough data for an insight yet. Keep recording data during an activity!", nil
	}

	sum := 0
	max := samples[0]
	min := samples[0]
	for _, bpm := range samples {
		sum += bpm
		if bpm > max {
			max = bpm
		}
		if bpm < min {
			min = bpm
		}
	}
	avg := int(math.Round(float64(sum) / float64(len(samples))))

	prompt := fmt.Sprintf("I just completed a workout. Here is my heart rate data (in bpm):\n- Average: %d\n- Max: %d\n- Min: %d\n\nBased on this, give me one short, positive, and actionable insight (2-3 sentences) about my performance or recovery. Frame it as a friendly AI coach. Include an emoji.",
		avg, max, min)
	return g.generateText(ctx, prompt)
}

// --- wire types ---

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type generateImagesRequest struct {
	Instances  []imageInstance `json:"instances"`
	Parameters imageParameters `json:"parameters"`
}

type imageInstance struct {
	Prompt string `json:"prompt"`
}

type imageParameters struct {
	SampleCount  int    `json:"sampleCount"`
	AspectRatio  string `json:"aspectRatio"`
	OutputFormat string `json:"outputMimeType"`
}

type generateImagesResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
	} `json:"predictions"`
}

func (g *Gemini) generateText(ctx context.Context, prompt string) (string, error) {
	reqBody := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	path := fmt.Sprintf("/models/%s:generateContent", textModel)
	var resp generateContentResponse
	if err := g.post(ctx, path, reqBody, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// GenerateImage implements Service. The returned reference is a JPEG
// data URL.
func (g *Gemini) GenerateImage(ctx context.Context, prompt, aspectRatio string) (string, error) {
	reqBody := generateImagesRequest{
		Instances: []imageInstance{{Prompt: prompt}},
		Parameters: imageParameters{
			SampleCount:  1,
			AspectRatio:  aspectRatio,
			OutputFormat: "image/jpeg",
		},
	}

	path := fmt.Sprintf("/models/%s:predict", imageModel)
	var resp generateImagesResponse
	if err := g.post(ctx, path, reqBody, &resp); err != nil {
		return "", err
	}

	if len(resp.Predictions) == 0 || resp.Predictions[0].BytesBase64Encoded == "" {
		return "", ErrEmptyResponse
	}
	return "data:image/jpeg;base64," + resp.Predictions[0].BytesBase64Encoded, nil
}

func (g *Gemini) post(ctx context.Context, path string, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
