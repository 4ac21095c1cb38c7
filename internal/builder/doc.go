// Package builder compiles the canonical span list of one template file into
// a directory-level program: a small tree of control nodes that decides how
// many output files the template produces and with which bindings.
//
// # Core Concepts
//
//   - Program: the compiled form of a template file. It owns the control tree,
//     the default content template (everything outside dirlevel blocks) and
//     the file's name template. Programs are immutable and safe to share.
//   - Node: a sealed variant. *Sequence runs children in order, *Loop repeats
//     its body per item of a host iterable, *Conditional enters the first
//     branch whose condition holds, *Emit records one output file and *Merge
//     spreads a loop item into scope.
//   - Template: a host template snippet with its position in the source file,
//     rendered later by the host language.
//
// # Build
//
// The build is a single recursive-descent pass over the spans produced by
// tags.Extract and desugar.Canonicalize:
//
//  1. Text and host directives outside dirlevel blocks are concatenated into
//     the default content template.
//  2. The contents of every dirlevel block are parsed into nodes and appended
//     to the program root, in source order.
//  3. If no thisfile leaf was found, the root is replaced by a single *Emit so
//     the file renders once under its own name.
//
// Expressions are never evaluated here. They are kept as source text with
// their ranges so the interpreter can hand them to the host.
package builder
