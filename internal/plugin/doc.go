// Package plugin holds the post-process plugins a compiler can be configured
// with, and the name registry the config loader resolves them through.
package plugin
