/*
Package domain contains the core model of the workflow editor.

It defines the entities the rest of the module operates on: Nodes (Trigger,
Condition, Action) with their kind-specific configuration, Edges with their
derived styling, Variables with a declared type, and the Snapshot handed to the
host after every mutation. The package is pure: no I/O, no persistence, no
logging.

# Key Entities

  - Node: a point on the canvas. Its Data carries exactly one configuration
    variant, selected by Kind.
  - Edge: a directed connection. Condition sources name a Handle (true/false).
  - Variable: a named, typed value. System variables are constants; custom ones
    live under the "variables." namespace.
  - Snapshot: the {nodes, edges} view pushed to the host.
*/
package domain
