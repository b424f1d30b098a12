package client

import (
	"context"
	"errors"
	"strings"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

// Error category constants used as metric labels.
const (
	ErrorCategoryTimeout      ErrorCategory = "timeout"
	ErrorCategoryNetwork      ErrorCategory = "network"
	ErrorCategoryCityNotFound ErrorCategory = "city_not_found"
	ErrorCategoryEmptyPayload ErrorCategory = "empty_payload"
	ErrorCategoryRateLimited  ErrorCategory = "rate_limited"
	ErrorCategoryUpstream     ErrorCategory = "upstream"
	ErrorCategoryParsing      ErrorCategory = "parsing"
	ErrorCategoryValidation   ErrorCategory = "validation"
	ErrorCategoryCache        ErrorCategory = "cache"
	ErrorCategoryUnknown      ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory for metrics.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorCategoryTimeout
	}
	if errors.Is(err, ErrCityNotFound) {
		return ErrorCategoryCityNotFound
	}
	if errors.Is(err, ErrEmptyForecast) {
		return ErrorCategoryEmptyPayload
	}
	if errors.Is(err, ErrRateLimited) {
		return ErrorCategoryRateLimited
	}
	if errors.Is(err, ErrUpstreamFailure) {
		return ErrorCategoryUpstream
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "context deadline exceeded"):
		return ErrorCategoryTimeout
	case strings.Contains(errStr, "network") || strings.Contains(errStr, "connection"):
		return ErrorCategoryNetwork
	case strings.Contains(errStr, "parse") || strings.Contains(errStr, "unmarshal"):
		return ErrorCategoryParsing
	case strings.Contains(errStr, "invalid") || strings.Contains(errStr, "validation"):
		return ErrorCategoryValidation
	case strings.Contains(errStr, "cache"):
		return ErrorCategoryCache
	}
	return ErrorCategoryUnknown
}
