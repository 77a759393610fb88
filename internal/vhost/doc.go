// Package vhost implements the virtual compiler host: the four file-system
// operations of toolchain.Host served from an overlay of preprocessed text,
// an optional allow-list of visible files and a disk delegate.
//
// Lookup order for FileExists, ReadFile and ParseSourceUnit is the same
// everywhere: overlay entry, then the allow-list, then disk. Writes of module
// outputs get alias specifiers rewritten to relative paths.
package vhost
