// Package scan implements the cancellable, progress-reporting repository walker:
// it prunes irrelevant subtrees, identifies repository roots, matches their
// remotes against the selected strategy, and aggregates the results.
package scan
