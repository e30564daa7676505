package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys
const (
	AttrRunID         = attribute.Key("vcxstrip.run.id")
	AttrPlatform      = attribute.Key("vcxstrip.platform")
	AttrFileCount     = attribute.Key("vcxstrip.files.count")
	AttrFilesModified = attribute.Key("vcxstrip.files.modified")
	AttrFilesFailed   = attribute.Key("vcxstrip.files.failed")
	AttrFilePath      = attribute.Key("file.path")
	AttrFileModified  = attribute.Key("file.modified")
	AttrBlocksRemoved = attribute.Key("blocks.removed")
)

// StartRunSpan starts the root span of one vcxstrip invocation
func StartRunSpan(ctx context.Context, runID, platform string, fileCount int) (context.Context, trace.Span) {
	return StartSpan(ctx, "vcxstrip.run",
		trace.WithAttributes(
			AttrRunID.String(runID),
			AttrPlatform.String(platform),
			AttrFileCount.Int(fileCount),
		),
	)
}

// RecordRunTotals records the batch outcome on the current span
func RecordRunTotals(ctx context.Context, modified, failed int) {
	SetAttributes(ctx, AttrFilesModified.Int(modified), AttrFilesFailed.Int(failed))
}

// StartStripSpan starts a span for stripping one project file
func StartStripSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return StartSpan(ctx, "project.strip",
		trace.WithAttributes(AttrFilePath.String(path)),
	)
}

// RecordStripResult records the outcome of a strip on the current span
func RecordStripResult(ctx context.Context, modified bool, blocks int) {
	SetAttributes(ctx, AttrFileModified.Bool(modified), AttrBlocksRemoved.Int(blocks))
}

// EndSpanWithError ends a span with an error status
func EndSpanWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
