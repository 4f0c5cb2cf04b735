// Package utils hosts configuration loading and logger construction shared by
// the command-line entrypoint.
package utils
