// Package hcl is the HCL implementation of config.Loader. It parses
// confwatch.hcl files, evaluates their expressions against a small context
// (config_dir, env and a handful of string functions) and translates the
// decoded blocks into the format-agnostic config.Model with all paths
// resolved and defaults applied.
package hcl
