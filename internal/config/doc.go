// Package config defines the format-agnostic template parameter model, along
// with the core interfaces (Loader, Converter) for loading parameters from
// variable files of various formats.
//
// Params is the single source of base variables for a directory template
// render. Concrete implementations of the interfaces live in separate
// packages: `varfile` for loading and `hcl` for value conversion.
package config
