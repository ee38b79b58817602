package pagetests

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/pagecheck/page-contract-tests/rubric"
)

const tracerName = "github.com/pagecheck/page-contract-tests/pagetests"

var (
	AttrRubric    = attribute.Key("pagecheck.rubric")
	AttrRunID     = attribute.Key("pagecheck.run.id")
	AttrURL       = attribute.Key("pagecheck.url")
	AttrOutcome   = attribute.Key("pagecheck.outcome")
	AttrStepIndex = attribute.Key("pagecheck.step.index")
	AttrMessage   = attribute.Key("pagecheck.message")
)

func defaultTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// InstallTraceExporter makes w the destination of all spans, as JSON, by installing a global
// tracer provider. The returned function flushes and removes it.
func InstallTraceExporter(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", "pagecheck"))),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

func startCaseSpan(ctx context.Context, tracer trace.Tracer, name, runID, url string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "case "+name, trace.WithAttributes(
		AttrRubric.String(name),
		AttrRunID.String(runID),
		AttrURL.String(url),
	))
}

func endCaseSpan(span trace.Span, outcome string, result rubric.Result, err error) {
	span.SetAttributes(AttrOutcome.String(outcome))
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !result.Passed:
		span.SetAttributes(AttrStepIndex.Int(result.Step), AttrMessage.String(result.Message))
		span.SetStatus(codes.Error, "rubric failed")
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// traceStep records a span for every evaluated step, as a child of the case span in ctx. Steps
// report after they finish, so the span is backdated to the step's start.
func traceStep(ctx context.Context, tracer trace.Tracer) rubric.Observer {
	return func(o rubric.StepOutcome) {
		end := time.Now()
		_, span := tracer.Start(ctx, "step "+o.Name,
			trace.WithTimestamp(end.Add(-o.Duration)),
			trace.WithAttributes(AttrStepIndex.Int(o.Index)),
		)
		switch {
		case o.Err != nil:
			span.RecordError(o.Err)
			span.SetStatus(codes.Error, o.Err.Error())
		case !o.Verdict.IsCorrect():
			span.SetAttributes(AttrMessage.String(o.Verdict.Message()))
			span.SetStatus(codes.Error, "wrong")
		}
		span.End(trace.WithTimestamp(end))
	}
}
