// Package metrics provides build metrics for ssio.
//
// Components receive a Recorder and default to NoopRecorder, so metric calls
// never need nil checks:
//
//	recorder := metrics.Recorder(metrics.NoopRecorder{})
//	if cfg.MetricsFile != "" {
//	    recorder = metrics.NewPrometheusRecorder(nil)
//	}
//
// A PrometheusRecorder can be exported two ways: WriteTextfile writes a file for
// node_exporter's textfile collector after a one-shot build, and HTTPHandler
// serves the registry while `ssio watch` is running.
package metrics
