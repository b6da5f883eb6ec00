// Package model contains the domain types shared by the offboarding engine:
// submission records, the closed status and role enumerations, notification
// effects and the request-level error taxonomy.
package model
