// Package token mints mock on-chain identifiers and ERC-721 style
// metadata for verified assets. No real blockchain interaction happens
// here; identifiers are keccak256-derived and deterministic given a
// clock and salt source.
package token
