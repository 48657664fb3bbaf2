// Package asset defines the structured asset record shared by the extraction,
// verification, and tokenization layers. Records are transient value objects
// constructed per request; nothing in this package holds state.
package asset
