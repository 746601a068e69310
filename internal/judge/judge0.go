// Package judge wraps the external code execution service. The rest of the
// system only sees the Client interface; transport failures and timeouts
// collapse into ErrUnavailable so callers can treat the attempt as
// retry-safe (nothing was recorded).
package judge

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/bughuntlab/bughunt-backend/internal/config"
	"github.com/bughuntlab/bughunt-backend/internal/model"
)

// ErrUnavailable indicates the judge service could not be reached or did
// not answer in time. No verdict can be derived from it.
var ErrUnavailable = errors.New("judge service unavailable")

// Judge0 status ids. Everything above CompileError is a runtime-class error.
const (
	StatusAccepted          = 3
	StatusWrongAnswer       = 4
	StatusTimeLimitExceeded = 5
	StatusCompileError      = 6
)

// Submission is one test-case execution request.
type Submission struct {
	SourceCode     string
	Language       model.Language
	Stdin          string
	ExpectedOutput string
}

// Result is the judge's answer for one test case.
type Result struct {
	StatusID int
	Stdout   string
}

// Client executes one submission against the judge service.
type Client interface {
	Evaluate(ctx context.Context, sub Submission) (*Result, error)
}

// languageIDs maps competition languages to Judge0 language ids.
var languageIDs = map[model.Language]int{
	model.LanguageC:      50, // C (GCC)
	model.LanguageJava:   62,
	model.LanguagePython: 71,
}

// Judge0Client is the production Client over the Judge0 HTTP API.
type Judge0Client struct {
	http *resty.Client
}

// NewJudge0Client builds a Judge0 client from configuration. The request
// timeout bounds the single suspension point of an attempt evaluation.
func NewJudge0Client(cfg *config.Config) *Judge0Client {
	client := resty.New().
		SetBaseURL(cfg.JudgeURL).
		SetTimeout(cfg.JudgeTimeout).
		SetHeader("Content-Type", "application/json")
	if cfg.JudgeAPIKey != "" {
		client.SetHeader("X-Auth-Token", cfg.JudgeAPIKey)
	}
	return &Judge0Client{http: client}
}

type judge0Request struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

type judge0Response struct {
	Stdout string `json:"stdout"`
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

// Evaluate runs one test case synchronously (wait=true).
func (c *Judge0Client) Evaluate(ctx context.Context, sub Submission) (*Result, error) {
	langID, ok := languageIDs[sub.Language]
	if !ok {
		return nil, fmt.Errorf("no judge language id for %q", sub.Language)
	}

	var out judge0Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"base64_encoded": "false",
			"wait":           "true",
		}).
		SetBody(judge0Request{
			SourceCode:     sub.SourceCode,
			LanguageID:     langID,
			Stdin:          sub.Stdin,
			ExpectedOutput: sub.ExpectedOutput,
		}).
		SetResult(&out).
		Post("/submissions")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: judge returned HTTP %d", ErrUnavailable, resp.StatusCode())
	}

	return &Result{StatusID: out.Status.ID, Stdout: out.Stdout}, nil
}
