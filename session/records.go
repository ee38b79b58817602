package session

import (
	"context"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Records returns a copy of everything recorded in the named instrumentation log so far, oldest
// first. A log that was never written to is empty.
func (s *Session) Records(ctx context.Context, log string) ([]ldvalue.Value, error) {
	var ret []ldvalue.Value
	err := s.call(ctx, &ret, "records", log)
	return ret, err
}

// ClearRecords empties the named log.
func (s *Session) ClearRecords(ctx context.Context, log string) error {
	return s.call(ctx, nil, "clear", log)
}
