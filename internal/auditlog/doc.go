// Package auditlog writes the append-only migration log artifact: a header
// identifying the run, one entry per migration attempt, and a totals footer.
package auditlog
