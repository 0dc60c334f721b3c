package apiclient

import "errors"

var (
	// ErrNotFound marks a 404 on a document resource.
	ErrNotFound = errors.New("document not found")

	// ErrAnalysisUnsupported marks a deployment without the joint
	// analysis endpoint; callers fall back to a degraded report.
	ErrAnalysisUnsupported = errors.New("analysis endpoint not available")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
