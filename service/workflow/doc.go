// Package workflow implements the offboarding state machine.
//
// Every permitted change is an explicit row of the transition table keyed by
// (role, action, source status). Approvers reach the table through verified
// approval tokens (Engine.Apply); HR and IT steps run under the operator
// pseudo-role (Engine.Operate). A transition commits with a compare-and-swap
// on the status and then publishes at most one notification effect.
package workflow
