// Package config defines the format-agnostic model of what confwatch builds:
// one entry per template target (rendered once per version) and per concat
// target (fragments joined into one file), plus the Loader interface that
// format-specific packages such as internal/hcl implement.
//
// Paths in the model are always resolved; loaders turn relative paths from
// the config file into absolute ones before handing the model out.
package config
