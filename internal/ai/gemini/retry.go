package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/utils"
)

const (
	defaultTimeout = 60 * time.Second
	baseRetryDelay = 2 * time.Second
	maxRetryDelay  = 30 * time.Second
	// Quota errors asking to wait longer than this are surfaced instead of retried.
	maxQuotaDelay = 30 * time.Second
)

var sleep = utils.WaitFor

var retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

// retrier runs gateway calls with a per-attempt timeout and bounded
// exponential backoff between attempts.
type retrier struct {
	maxAttempts int
	timeout     time.Duration
	logger      *zap.Logger
}

func (r retrier) do(ctx context.Context, op string, call func(ctx context.Context) error) error {
	attempts := r.maxAttempts
	if attempts < 1 {
		attempts = 1
	}
	timeout := r.timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := r.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := r.once(ctx, timeout, call)
		if err == nil {
			return nil
		}
		lastErr = classify(ctx, op, timeout, err)

		if ctx.Err() != nil {
			return lastErr
		}

		delay, ok := retryDelay(lastErr, attempt)
		if !ok || attempt == attempts-1 {
			break
		}

		logger.Warn("gemini call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", attempts),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

func (r retrier) once(ctx context.Context, timeout time.Duration, call func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return call(callCtx)
}

// classify maps a raw SDK error onto the gateway error taxonomy. Errors caused
// by the caller's own context are returned unchanged. API errors that no
// amount of retrying fixes (bad request, bad key, long quota waits) stay plain
// errors so callers do not retry them either.
func classify(parent context.Context, op string, timeout time.Duration, err error) error {
	if parent.Err() != nil {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ai.GatewayTimeoutError{Op: op, Timeout: timeout}
	}
	var gwErr *ai.GatewayError
	if errors.As(err, &gwErr) {
		return err
	}
	if apiErr, ok := asAPIError(err); ok && !transient(apiErr) {
		return fmt.Errorf("gemini %s: %w", op, err)
	}
	return &ai.GatewayError{Op: op, Err: err}
}

// transient reports whether the server may accept the same request later.
func transient(apiErr genai.APIError) bool {
	switch apiErr.Code {
	case http.StatusTooManyRequests:
		quota, found := quotaDelay(apiErr)
		return !found || quota <= maxQuotaDelay
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// retryDelay decides whether a classified error is worth another attempt and
// how long to wait before it.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	backoff := utils.Backoff(attempt, baseRetryDelay, maxRetryDelay)

	var timeoutErr *ai.GatewayTimeoutError
	if errors.As(err, &timeoutErr) {
		return backoff, true
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		return backoff, ai.IsRetryable(err)
	}

	if !transient(apiErr) {
		return 0, false
	}
	if quota, found := quotaDelay(apiErr); found && apiErr.Code == http.StatusTooManyRequests && quota > backoff {
		return quota, true
	}
	return backoff, true
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

// quotaDelay extracts the server-requested wait from RetryInfo details or,
// failing that, from the error message.
func quotaDelay(apiErr genai.APIError) (time.Duration, bool) {
	for _, detail := range apiErr.Details {
		kind, _ := detail["@type"].(string)
		if !strings.HasSuffix(kind, "RetryInfo") {
			continue
		}
		raw, _ := detail["retryDelay"].(string)
		if d, err := time.ParseDuration(strings.TrimSpace(raw)); err == nil {
			return d, true
		}
	}

	match := retryAfterPattern.FindStringSubmatch(apiErr.Message)
	if len(match) != 2 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}
