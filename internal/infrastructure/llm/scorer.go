package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"newsbrief/internal/config"
	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

const maxTags = 3

// ErrMalformedVerdict marks responses whose content is not the JSON object
// the prompt demands.
var ErrMalformedVerdict = errors.New("malformed scoring verdict")

// RelevanceScorer rates items against an OpenAI-compatible chat endpoint.
type RelevanceScorer struct {
	endpoint   string
	model      string
	apiKey     string
	topic      string
	httpClient *http.Client
}

var _ ports.Scorer = (*RelevanceScorer)(nil)

// NewRelevanceScorer builds a scorer from configuration.
func NewRelevanceScorer(cfg config.ScoringConfig) *RelevanceScorer {
	return &RelevanceScorer{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		topic:    cfg.Topic,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// verdict is the strict JSON object the model must return.
type verdict struct {
	RelevanceScore float64  `json:"relevance_score"`
	Tags           []string `json:"tags"`
	Reasoning      string   `json:"reasoning"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Score sends one item for rating and returns a new scored record; the
// input item is never mutated.
func (s *RelevanceScorer) Score(ctx context.Context, item domain.Item) (domain.ScoredItem, error) {
	if s == nil || s.apiKey == "" || s.endpoint == "" || s.model == "" {
		return domain.ScoredItem{}, fmt.Errorf("relevance scorer misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": s.systemPrompt()},
			{"role": "user", "content": itemPrompt(item)},
		},
		"temperature": 0.2,
	})
	if err != nil {
		return domain.ScoredItem{}, fmt.Errorf("marshal scoring payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.ScoredItem{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.ScoredItem{}, fmt.Errorf("score item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.ScoredItem{}, fmt.Errorf("scoring service error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return domain.ScoredItem{}, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return domain.ScoredItem{}, fmt.Errorf("%w: no choices returned", ErrMalformedVerdict)
	}

	v, err := parseVerdict(chat.Choices[0].Message.Content)
	if err != nil {
		return domain.ScoredItem{}, err
	}

	return domain.ScoredItem{
		Item:  item,
		Score: clampScore(v.RelevanceScore),
		Tags:  capTags(v.Tags),
	}, nil
}

func (s *RelevanceScorer) systemPrompt() string {
	topic := strings.TrimSpace(s.topic)
	if topic == "" {
		topic = "technology news"
	}
	return fmt.Sprintf(
		"You rate news items for relevance to %s. "+
			"Respond with a strict JSON object only: "+
			`{"relevance_score": <number 0-10>, "tags": [<up to 3 short strings>], "reasoning": <string>}`,
		topic)
}

func itemPrompt(item domain.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	if item.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", item.Summary)
	}
	fmt.Fprintf(&b, "Source: %s\n", item.Source)
	return b.String()
}

// parseVerdict tolerates markdown code fences around the JSON object but
// rejects anything that does not validate against the schema.
func parseVerdict(content string) (verdict, error) {
	content = stripFences(content)
	if content == "" {
		return verdict{}, fmt.Errorf("%w: empty content", ErrMalformedVerdict)
	}

	var v verdict
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return verdict{}, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}
	return v, nil
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func capTags(tags []string) []string {
	cleaned := make([]string, 0, maxTags)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		cleaned = append(cleaned, tag)
		if len(cleaned) == maxTags {
			break
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}
