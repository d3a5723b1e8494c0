// Package kernel provides the shared value objects of the order flow domain:
// identifiers (UUID), geo points (Location), role-tagged identities (Actor, Role)
// and the Clock abstraction used wherever a rule depends on wall-clock time.
//
// Every value object is immutable and must be created through its constructor;
// zero values fail Validate.
package kernel
