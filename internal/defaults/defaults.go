package defaults

import (
	"github.com/artuross/formula-engine/internal/util/timeutil"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	Clock         = timeutil.RealClock()
	TraceProvider = noop.NewTracerProvider()
)
