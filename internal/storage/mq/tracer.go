package mq

import (
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var (
	tracer = otel.Tracer("internal/storage/mq")

	// kTracer produces the kafka client spans. It picks up the global
	// provider and propagator lazily, so it works whether or not tracing
	// export is enabled.
	kTracer = kotel.NewTracer()
	kHooks  = kotel.NewKotel(kotel.WithTracer(kTracer)).Hooks()
)
