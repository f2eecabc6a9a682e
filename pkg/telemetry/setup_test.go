package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupStdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()

	shutdown, err := Setup(ctx, Options{ServiceName: "formrelay-test", Exporter: ExporterStdout, Writer: &buf})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "unit-span")
	span.End()

	require.NoError(t, shutdown(ctx))
	require.Contains(t, buf.String(), "unit-span")
	require.Contains(t, buf.String(), "formrelay-test")
}

func TestSetupRejectsUnknownExporter(t *testing.T) {
	_, err := Setup(context.Background(), Options{Exporter: "zipkin"})
	require.ErrorContains(t, err, "unknown trace exporter")
}
