// Package infra contains technical adapters: the MQTT machine client, the
// Mongo and in-memory stores, and metrics exporters. These packages should
// depend only on the interfaces defined in the core packages.
package infra
