package opentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Open Trivia DB endpoint.
const DefaultBaseURL = "https://opentdb.com/api.php"

// Response codes reported in-band by Open Trivia DB.
const (
	CodeSuccess          = 0
	CodeNoResults        = 1
	CodeInvalidParameter = 2
	CodeTokenNotFound    = 3
	CodeTokenEmpty       = 4
	CodeRateLimit        = 5
)

var (
	ErrUnexpectedStatus = errors.New("unexpected http status")
	ErrResponseCode     = errors.New("trivia provider returned an error")
	ErrMalformedBody    = errors.New("malformed response body")
)

// RawQuestion is one record of the provider response, still HTML-entity encoded.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

// Params selects the question batch.
type Params struct {
	Amount     int
	Category   int
	Difficulty string
	Type       string
}

// Client fetches question batches from Open Trivia DB.
type Client struct {
	httpClient *http.Client
	baseURL    string
	params     Params
}

// NewClient creates a client for baseURL with a per-request timeout.
func NewClient(baseURL string, params Params, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		params:     params,
	}
}

// FetchQuestions performs exactly one GET and returns the raw records.
func (c *Client) FetchQuestions(ctx context.Context) ([]RawQuestion, error) {
	reqURL, err := c.requestURL()
	if err != nil {
		return nil, fmt.Errorf("build request url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	if body.ResponseCode != CodeSuccess {
		return nil, fmt.Errorf("%w: %s", ErrResponseCode, describeCode(body.ResponseCode))
	}

	return body.Results, nil
}

func (c *Client) requestURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	if c.params.Amount > 0 {
		q.Set("amount", strconv.Itoa(c.params.Amount))
	}
	if c.params.Category > 0 {
		q.Set("category", strconv.Itoa(c.params.Category))
	}
	if c.params.Difficulty != "" {
		q.Set("difficulty", c.params.Difficulty)
	}
	if c.params.Type != "" {
		q.Set("type", c.params.Type)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func describeCode(code int) string {
	switch code {
	case CodeNoResults:
		return "not enough questions for the requested batch"
	case CodeInvalidParameter:
		return "invalid request parameter"
	case CodeTokenNotFound:
		return "session token not found"
	case CodeTokenEmpty:
		return "session token exhausted"
	case CodeRateLimit:
		return "rate limited, too many requests"
	default:
		return "response code " + strconv.Itoa(code)
	}
}
