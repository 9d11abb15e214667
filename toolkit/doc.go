// Package toolkit provides the built-in demonstration tools for AgentRun: a
// simulated web search, a safe arithmetic expression evaluator and a
// session-scoped note store. They are deliberately small stand-ins meant to
// exercise the loop's dispatch and correlation machinery; replace them with
// real capabilities via tool.Registry in production use.
package toolkit
