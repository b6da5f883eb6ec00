// Package approval implements the inbound side of emailed approval links.
// Inspect backs the confirmation page a link opens; Decide verifies the token
// again and applies the decision through the workflow engine.
package approval
