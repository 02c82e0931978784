// Package prometheus renders techhatch client metrics in the Prometheus text
// exposition format. Counters are named techhatch_*_total and the per-attempt
// latency histogram is techhatch_request_latency_seconds. Nothing is registered
// globally; mount Handler where it fits.
package prometheus
