package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

const maxResponseBytes = 10 << 20 // 10MB

// postJSON sends a JSON request and decodes a JSON response. Non-2xx
// statuses become DomainErrors with the response body as message context.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, reqBody, respBody any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return core.ErrTimeout("generation request cancelled or timed out").WithCause(err)
		}
		return &core.DomainError{
			Category:  core.ErrCatNetwork,
			Code:      core.CodeAgentUnavailable,
			Message:   "backend unreachable",
			Retryable: true,
			Cause:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpStatusError(resp.StatusCode, body)
	}

	if respBody != nil {
		if err := json.Unmarshal(body, respBody); err != nil {
			return core.ErrExecution(core.CodeGenerationFailed, "malformed backend response").WithCause(err)
		}
	}
	return nil
}

func httpStatusError(status int, body []byte) error {
	msg := fmt.Sprintf("backend returned HTTP %d", status)
	if len(body) > 0 {
		const maxErrBody = 512
		if len(body) > maxErrBody {
			body = body[:maxErrBody]
		}
		msg = fmt.Sprintf("%s: %s", msg, body)
	}

	e := core.ErrExecution(core.CodeGenerationFailed, msg)
	switch {
	case status == http.StatusTooManyRequests || status >= 500:
		e.Retryable = true
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Category = core.ErrCatValidation
		e.Code = core.CodeAgentUnavailable
		e.Retryable = false
	default:
		e.Retryable = false
	}
	return e
}
