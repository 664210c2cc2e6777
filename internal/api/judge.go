package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"contest-ranking/internal/config"
)

// JudgeClient pulls judged submissions from the external judge cluster.
// The judge exposes a poll endpoint keyed by a judged-at cursor, so the
// service never receives a submission twice under normal operation and
// duplicates are absorbed by the idempotent ledger insert anyway.
type JudgeClient struct {
	baseURL string
	apiKey  string
	client  *fasthttp.Client
}

func NewJudgeClient(cfg *config.Config) *JudgeClient {
	return &JudgeClient{
		baseURL: cfg.JudgeAPIURL,
		apiKey:  cfg.JudgeAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// Enabled reports whether a judge endpoint is configured. Without one the
// ingest loop stays dormant and submissions arrive by other means.
func (c *JudgeClient) Enabled() bool {
	return c.baseURL != ""
}

// FetchJudged returns up to limit submissions judged strictly after the
// cursor, oldest first.
func (c *JudgeClient) FetchJudged(ctx context.Context, since time.Time, limit int) ([]JudgedSubmission, error) {
	endpoint := fmt.Sprintf("%s/v1/submissions/judged?since=%s&limit=%s",
		c.baseURL,
		url.QueryEscape(since.UTC().Format(time.RFC3339Nano)),
		strconv.Itoa(limit))
	resp, err := doRequest[JudgedResponse](ctx, c, endpoint)
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func doRequest[T any](ctx context.Context, client *JudgeClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if client.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+client.apiKey)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("judge API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type JudgedResponse struct {
	Status int                `json:"status"`
	Data   []JudgedSubmission `json:"data"`
}

type JudgedSubmission struct {
	ID          string    `json:"id"`
	ContestID   int64     `json:"contest_id"`
	UserID      int64     `json:"user_id"`
	UserHandle  string    `json:"user_handle"`
	ProblemID   int64     `json:"problem_id"`
	Verdict     string    `json:"verdict"`
	TestPassed  *int      `json:"test_passed"`
	TestTotal   *int      `json:"test_total"`
	SubmittedAt time.Time `json:"submitted_at"`
	JudgedAt    time.Time `json:"judged_at"`
}
