// Package hcl provides the concrete HCL implementation of the host language
// and of the data conversion interfaces defined in the `config` package.
// It is responsible for parsing and evaluating HCL template snippets, parsing
// HCL variable files, and converting native Go data into cty values.
package hcl
