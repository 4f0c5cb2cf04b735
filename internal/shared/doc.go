// Package shared provides the clock, cancellation, filesystem, and reporting
// abstractions consumed by the scanner and migration services.
package shared
