// Package metrics records build and compiler-pass metrics.
//
// Components receive a Recorder and default to NoopRecorder, so no nil checks
// are needed at call sites:
//
//	d := compile.NewDriver(cfg, compile.WithRecorder(metrics.NoopRecorder{}))
//
// PrometheusRecorder registers its collectors on a private registry. texbuild
// is a one-shot process, so instead of serving an endpoint the registry is
// written to a node_exporter textfile at exit with WriteTextfile.
package metrics
