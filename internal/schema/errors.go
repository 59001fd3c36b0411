package schema

import "errors"

// ErrSchemaParse marks fatal rules-document errors. Compilation never
// returns a partial plan alongside it.
var ErrSchemaParse = errors.New("schema parse error")

// ErrUnboundPath marks a validator reference whose JSON path does not
// exist in the output schema.
var ErrUnboundPath = errors.New("validator path not present in output schema")
