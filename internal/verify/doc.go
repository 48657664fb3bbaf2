// Package verify implements the multi-agent scoring pipeline at the heart of
// the service. A set of independent, side-effect-free agents each score one
// concern over an asset record; the Coordinator averages their output into a
// single verdict with remediation hints and next steps.
package verify
