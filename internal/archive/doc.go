// Package archive packages chaincode source trees into portable
// gzip-compressed tar artifacts, preserving a caller-chosen path prefix
// so peers can unpack the tree into the layout their build expects.
package archive
