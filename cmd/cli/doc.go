// Package cli wires the ownershift Cobra command hierarchy, configuration
// loading, and structured logging.
package cli
