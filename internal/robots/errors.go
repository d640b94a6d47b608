package robots

import (
	"fmt"

	"github.com/kowhai-tools/nzcrawl/internal/metadata"
	"github.com/kowhai-tools/nzcrawl/pkg/failure"
)

type RobotsErrorCause string

const (
	ErrCausePreFetchFailure  RobotsErrorCause = "failed before making fetch"
	ErrCauseHTTPFetchFailure RobotsErrorCause = "failed to fetch"
	ErrCauseHTTPServerError  RobotsErrorCause = "http server error"
	ErrCauseParseError       RobotsErrorCause = "failed to parse robots.txt"
)

// RobotsError classifies a robots.txt fetch/parse failure. Every
// RobotsError is absorbed by the policy cache into a permissive decision;
// it never escapes to the orchestrator.
type RobotsError struct {
	Message   string
	Retryable bool
	Cause     RobotsErrorCause
}

func (e *RobotsError) Error() string {
	return fmt.Sprintf("robots error: %s", e.Cause)
}

func (e *RobotsError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapRobotsErrorToMetadataCause is observational only; it must never be
// used to drive control flow. It lets the crawl report attribute a
// permissive-by-failure decision to a specific cause.
func mapRobotsErrorToMetadataCause(err *RobotsError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCausePreFetchFailure:
		return metadata.CauseUnknown
	case ErrCauseHTTPFetchFailure:
		return metadata.CauseNetworkFailure
	case ErrCauseHTTPServerError:
		return metadata.CauseNetworkFailure
	case ErrCauseParseError:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
