// Package registry provides the central "glue" for the function module system.
//
// The Registry maps the function names available inside templates (e.g.
// "upper" or "camelcase") to their go-cty implementations. Modules contribute
// functions at startup through Register; the populated registry is then
// validated and handed to the host language as its function table.
package registry
