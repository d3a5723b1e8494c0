// Package errs holds the typed errors shared by the domain, the use cases and the adapters.
//
// Each type unwraps to one sentinel (ErrObjectNotFound, ErrValueIsInvalid,
// ErrValueIsOutOfRange, ErrValueIsRequired, ErrVersionIsInvalid, ErrForbidden), which is
// what the HTTP layer classifies on. The typed value carries the parameter name and,
// optionally, the underlying cause for logs.
package errs
