// Nearby - Local Discovery Feed Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nearby

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestGenerateIDs(t *testing.T) {
	t.Parallel()

	if id := GenerateRequestID(); len(id) != 36 {
		t.Errorf("GenerateRequestID() length = %d, want 36", len(id))
	}
	if id := GenerateCorrelationID(); len(id) != 8 {
		t.Errorf("GenerateCorrelationID() length = %d, want 8", len(id))
	}
	if GenerateRequestID() == GenerateRequestID() {
		t.Error("request IDs should be unique")
	}
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext(empty) = %q, want empty", got)
	}

	ctx = ContextWithRequestID(ctx, "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext() = %q, want req-123", got)
	}
}

func TestCorrelationIDContext(t *testing.T) {
	t.Parallel()

	ctx := ContextWithNewCorrelationID(context.Background())
	if got := CorrelationIDFromContext(ctx); len(got) != 8 {
		t.Errorf("CorrelationIDFromContext() = %q, want 8 characters", got)
	}
}

func TestCtx(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRequestID(ctx, "req-abc")
	ctx = ContextWithNewCorrelationID(ctx)

	Ctx(ctx).Info().Msg("with context")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-abc"`) {
		t.Errorf("output missing request_id: %s", out)
	}
	if !strings.Contains(out, `"correlation_id":"`+CorrelationIDFromContext(ctx)+`"`) {
		t.Errorf("output missing correlation_id: %s", out)
	}
}

func TestCtx_NoValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	Ctx(ctx).Info().Msg("bare")

	out := buf.String()
	if strings.Contains(out, "request_id") || strings.Contains(out, "correlation_id") {
		t.Errorf("unexpected context fields: %s", out)
	}
}
