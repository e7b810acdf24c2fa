// Package generator holds the two build rules confwatch knows: Versioned
// renders one template per version, Concat joins shell fragments into a
// single rc file. Both implement compiler.Generator.
package generator
