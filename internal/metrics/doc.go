// Package metrics records tournament activity with Prometheus collectors.
//
// samplerank is a short-lived CLI, so nothing is served over HTTP. Each
// command records into a private registry and, when configured, the registry
// is written to a node_exporter textfile collector target.
package metrics
