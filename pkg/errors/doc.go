/*
Package errors provides structured error handling for the system.

It defines a standard AppError type that includes:
  - Error Code (standardized strings like NOT_FOUND, INTERNAL)
  - Category (coarse classification: NOT_FOUND, CONFLICT, INVALID_ARGUMENT, FORBIDDEN, INTERNAL)
  - Message (human-readable description)
  - Underlying Error (chaining via Unwrap)

Category-specific constructors (NotFound, Conflict, InvalidArgument, Forbidden,
Internal) are the preferred way to build an AppError; New is for a custom
Code that still needs an Internal-shaped error.
*/
package errors
