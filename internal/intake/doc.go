// Package intake implements the asynchronous asset intake pipeline:
// raw submissions are queued as jobs, workers extract structured fields,
// persist the asset and run verification, with retry and alerting on
// failure.
package intake
