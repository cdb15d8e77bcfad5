// Package metric provides Prometheus metrics for keyforge.
//
//   - prometheus.go: registry, operation counters and histograms, HTTP
//     handler and textfile export
//   - collector.go: a custom collector describing the active codec
//
// Metrics:
//
//   - keyforge_keys_issued_total
//   - keyforge_key_verifications_total{outcome}
//   - keyforge_invite_operations_total{operation,outcome}
//   - keyforge_operation_duration_seconds{operation}
//   - keyforge_codec_info{format_version,key_length}
//
// The CLI runs briefly, so metrics are usually exported with WriteTextfile
// for the node_exporter textfile collector rather than scraped.
package metric
