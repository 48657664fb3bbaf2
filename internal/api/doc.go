// Package api exposes the REST surface for asset intake, verification,
// tokenization, and portfolio queries.
package api
