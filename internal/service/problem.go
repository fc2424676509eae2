package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const DefaultProblemEndpoint = "https://leetcode.com/graphql"

const problemQuery = `
query questionData($titleSlug: String!) {
  question(titleSlug: $titleSlug) {
    title
    titleSlug
    difficulty
    content
    exampleTestcases
    codeSnippets {
      lang
      langSlug
      code
    }
  }
}`

var ErrProblemNotFound = errors.New("problem not found")

type CodeSnippet struct {
	Lang     string `json:"lang"`
	LangSlug string `json:"langSlug"`
	Code     string `json:"code"`
}

type Problem struct {
	Title            string        `json:"title"`
	TitleSlug        string        `json:"titleSlug"`
	Difficulty       string        `json:"difficulty"`
	Content          string        `json:"content"`
	ExampleTestcases string        `json:"exampleTestcases"`
	CodeSnippets     []CodeSnippet `json:"codeSnippets"`
}

type graphQLResponse struct {
	Data struct {
		Question *Problem `json:"question"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ProblemClient fetches problem metadata from the practice site's public
// GraphQL endpoint
type ProblemClient struct {
	Endpoint string
	HTTP     *http.Client
}

func NewProblemClient(endpoint string) *ProblemClient {
	if endpoint == "" {
		endpoint = DefaultProblemEndpoint
	}

	return &ProblemClient{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *ProblemClient) Fetch(ctx context.Context, slug string) (*Problem, error) {
	body, err := json.Marshal(map[string]any{
		"query":     problemQuery,
		"variables": map[string]string{"titleSlug": slug},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare problem request, %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Referer", "https://leetcode.com")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		upstreamErrors.WithLabelValues("problem").Inc()
		return nil, fmt.Errorf("%w, %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		upstreamErrors.WithLabelValues("problem").Inc()
		return nil, fmt.Errorf("%w, problem API returned status %d", ErrUpstream, resp.StatusCode)
	}

	var out graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		upstreamErrors.WithLabelValues("problem").Inc()
		return nil, fmt.Errorf("%w, failed to decode problem response, %w", ErrUpstream, err)
	}

	if len(out.Errors) > 0 {
		upstreamErrors.WithLabelValues("problem").Inc()
		return nil, fmt.Errorf("%w, %s", ErrUpstream, out.Errors[0].Message)
	}

	if out.Data.Question == nil {
		return nil, ErrProblemNotFound
	}

	return out.Data.Question, nil
}
