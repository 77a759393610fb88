// Package toolchain is the built-in check and emit engine behind the compiler
// host.
//
// It only talks to the file system through the four Host operations
// (FileExists, ReadFile, ParseSourceUnit, WriteFile), so a host can serve
// preprocessed text from memory and hide or redirect files. Syntax checking
// and JavaScript emission are delegated to esbuild; import resolution and the
// export map are computed here from the lexer's token stream.
//
// A Program is built once per compile. WatchSession keeps rebuilding programs
// on file-system events and reports diagnostics and status signals through
// callbacks.
package toolchain
