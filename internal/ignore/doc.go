// Package ignore classifies directory names and paths that repository scans
// should prune, combining a built-in denylist with caller-supplied glob excludes.
package ignore
