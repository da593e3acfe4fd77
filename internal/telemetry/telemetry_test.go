package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopTracer(t *testing.T) {
	_, span := NoopTracer().Start(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.False(t, span.IsRecording())
}

func TestTracer_UsesGlobalProvider(t *testing.T) {
	assert.NotNil(t, Tracer("ability"))
}
