// internal/nodeid/doc.go

/*
Package nodeid names the nodes of a compiled directory program.

An address is a dot-separated path from the program root down to a node,
where each segment carries the node kind and its position among the
children of its parent, e.g. `dirlevel.for[0].if[2].branch[1].thisfile[0]`.

Addresses are attached to every emission and every rendering error so a
failure can be traced back to the `thisfile` leaf that produced it.
*/
package nodeid
