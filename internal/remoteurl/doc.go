// Package remoteurl recognizes the SSH and HTTPS remote URL shapes, extracts and
// rewrites their owner segment, and hosts the match strategies used by scans and
// migrations.
package remoteurl
