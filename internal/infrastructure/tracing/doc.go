/*
Package tracing correlates bridge requests with the client calls that caused
them.

# Overview

Every bridge request runs inside a span. The trace identifier arrives in the
X-Trace-ID header (or is minted when absent) and is echoed back with the
span's own X-Span-ID, so a client can tie a failed call to the server log
line that records it. Finished spans are logged asynchronously.

# Usage

	tracer := tracing.New("bridge", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	// Client side: forward the caller's trace.
	headers := map[string]string{}
	tracing.InjectTraceContext(ctx, headers)

	// Manual span
	span, ctx := tracer.StartSpan(ctx, "archive_mount")
	defer tracer.Finish(span)
	span.SetTag("path", path)

# Trace Format

  - X-Trace-ID: identifier for the whole request flow
  - X-Span-ID: identifier for the current operation
*/
package tracing
