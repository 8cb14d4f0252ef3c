/*
Package ports defines the driven ports (interfaces) for the Weave editor core.

These interfaces decouple the editor from the collaborators it consumes, so the
same graph and variable logic runs behind an HTTP server, an MCP server or a
test harness.

# Key Interfaces

  - VariableStore: durable load/save of the full custom-variable set (Memory, File, Redis).
  - OptionsProvider: asynchronous lists of choices for select-like fields.
  - Notifier: one-way sink for short success/error/info notifications.
  - Host: receives graph snapshots after each mutation and the payload on publish.
*/
package ports
