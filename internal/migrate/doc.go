// Package migrate applies accepted remote URL rewrites to repository
// configurations, collecting per-remote outcomes and feeding the audit log.
package migrate
