// Package llm defines the provider-agnostic contract for the external
// field-extraction service and hosts its concrete clients in sub-packages.
package llm
