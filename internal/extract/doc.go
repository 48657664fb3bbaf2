// Package extract turns free-text asset descriptions into structured records.
// Two strategies share one contract: a pure pattern/keyword extractor and an
// LLM-backed extractor that degrades to the pattern path on any failure.
package extract
