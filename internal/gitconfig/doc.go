// Package gitconfig parses remote declarations out of git configuration text and
// performs targeted, whitespace-preserving url rewrites against it.
package gitconfig
