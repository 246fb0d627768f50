// Package observability exports traces and metrics of graph runs over
// OTLP/HTTP.
//
//	tel, err := observability.Init(ctx, observability.Config{
//		ServiceName: "graphx",
//		Endpoint:    "localhost:4318",
//		Insecure:    true,
//		SampleRate:  1,
//	})
//	if err != nil {
//		return err
//	}
//	defer tel.Shutdown(ctx)
//
//	engine := dag.NewEngine(dag.WithTelemetry(tel.Metrics))
//
// The engine keeps a RunContext in the run's context and opens one span per
// node computation.
package observability
