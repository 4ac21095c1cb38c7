// Package executor runs a compiled directory program against a set of base
// parameters and records one emission each time control reaches a thisfile
// leaf.
//
// Loops and conditionals delegate all expression work to the host. Every
// loop iteration and every taken branch gets its own child scope, so
// bindings never leak between iterations, and each emission carries an
// immutable snapshot of the variables visible at the leaf.
package executor
