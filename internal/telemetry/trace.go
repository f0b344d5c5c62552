package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartCommandSpan creates a span for a CLI command execution.
//
// Usage:
//
//	ctx, span := telemetry.StartCommandSpan(ctx, "plan start")
//	defer span.End()
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("commands")
	ctx, span := tracer.Start(ctx, "command."+cmdName)

	span.SetAttributes(
		attribute.String("command", cmdName),
		attribute.String("component", "cli"),
	)
	return ctx, span
}

// StartAdmissionSpan creates a span for a scheduler admission pass.
func StartAdmissionSpan(ctx context.Context, planID, trigger string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("scheduler")
	ctx, span := tracer.Start(ctx, "scheduler.admit")

	span.SetAttributes(
		attribute.String("plan_id", planID),
		attribute.String("trigger", trigger),
		attribute.String("component", "scheduler"),
	)
	return ctx, span
}

// StartGatewaySpan creates a span for an external gateway call.
func StartGatewaySpan(ctx context.Context, gatewayName, operation string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("gateways")
	ctx, span := tracer.Start(ctx, "gateway."+operation)

	span.SetAttributes(
		attribute.String("gateway", gatewayName),
		attribute.String("operation", operation),
		attribute.String("component", "gateway"),
	)
	return ctx, span
}

// RecordError marks a span as failed and records the error.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
