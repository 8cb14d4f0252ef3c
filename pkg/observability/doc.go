/*
Package observability turns editor lifecycle hooks into Prometheus metrics and
structured log lines.

A Metrics value owns its own registry, so several editors or tests can run
side by side. Plug it in with Hooks (for workflows and the variable
registry) and FetchObserver (for option caches), and expose it with Handler.
*/
package observability
