/*
Package dsl provides a Go DSL for programmatically constructing workflow graphs.

It lets developers define triggers, conditions and actions with a fluent
builder instead of hand-writing YAML or JSON documents. Connections declared
with Go and Branch are checked against the same rules the editor enforces, so
a graph that builds is a graph the editor would accept.

Example usage:

	b := dsl.New()

	b.Add("start").
		Trigger(domain.TriggerTaskStatusChanged).
		Param("status", "Completed").
		Go("check")

	b.Add("check").
		Condition(domain.ModeVariableCompare, "{{task.priority}}", domain.OpEquals, "High").
		Branch(domain.HandleTrue, "notify")

	b.Add("notify").
		Action(domain.ActionSendNotification).
		Param("recipient", "team_members").
		Param("message", "Task completed")

	doc, err := b.Build()
	// ... pass doc to workflow.Load(...)
*/
package dsl
