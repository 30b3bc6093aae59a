// Package webhook posts analysis results to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ccollicutt/gcstw/pkg/config"
	"github.com/ccollicutt/gcstw/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// Event names the reason a payload was sent.
type Event string

const (
	EventThresholdExceeded Event = "stw_threshold_exceeded"
	EventAnalysisComplete  Event = "analysis_complete"
)

// Payload is the JSON body posted to a webhook.
type Payload struct {
	Event             Event          `json:"event"`
	TotalPauseSeconds float64        `json:"total_pause_seconds"`
	Threshold         float64        `json:"stw_threshold,omitempty"`
	OverThreshold     bool           `json:"over_threshold"`
	Report            *output.Report `json:"report"`
}

// NewPayload wraps a report for delivery.
func NewPayload(report *output.Report) Payload {
	event := EventAnalysisComplete
	if report.OverThreshold() {
		event = EventThresholdExceeded
	}
	return Payload{
		Event:             event,
		TotalPauseSeconds: report.TotalPauseSeconds,
		Threshold:         report.Threshold,
		OverThreshold:     report.OverThreshold(),
		Report:            report,
	}
}

// Client sends analysis reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new webhook client. version is added to the User-Agent.
func NewClient(version string) *Client {
	return &Client{
		httpClient: &http.Client{},
		userAgent:  "gcstw-webhook/" + version,
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	Name       string
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// ShouldSend reports whether a webhook with the given trigger fires for report.
func ShouldSend(trigger config.WebhookTrigger, report *output.Report) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return report.OverThreshold()
	}
}

// Notify sends report to every configured webhook whose trigger fires.
// Failures are logged and returned; they never stop the remaining sends.
func (c *Client) Notify(ctx context.Context, hooks []config.WebhookConfig, report *output.Report) []*Response {
	var responses []*Response
	for _, wh := range hooks {
		if !ShouldSend(wh.Trigger, report) {
			continue
		}

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		resp := c.Send(ctx, report, SendOptions{URL: wh.URL, Token: wh.Token, Timeout: wh.Timeout})
		resp.Name = name
		if resp.Success() {
			slog.Info("webhook sent", "webhook", name, "status", resp.StatusCode, "duration", resp.Duration)
		} else {
			slog.Warn("webhook failed", "webhook", name, "status", resp.StatusCode, "error", resp.Error)
		}
		responses = append(responses, resp)
	}
	return responses
}

// Send posts an analysis report to a webhook endpoint.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}

	payload, err := json.Marshal(NewPayload(report))
	if err != nil {
		resp.Error = fmt.Errorf("marshaling payload: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		resp.Error = fmt.Errorf("creating request: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 64*1024))
	if err != nil {
		resp.Error = fmt.Errorf("reading response: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)
	resp.Duration = time.Since(start)

	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return resp
}
