// Package app wires confwatch together: it builds the logger, loads the
// configuration model, creates one compiler per target with its plugins and
// drives the render and watch lifecycles, decoupled from the CLI entrypoint.
package app
