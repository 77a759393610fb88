// Package fuzztests houses Go fuzz harnesses for the preprocessing pipeline
// (classifier -> unit/color rewriter -> macro preprocessor). They guard against
// panics and broken offsets on arbitrary inputs.
//
// Назначение: прогонять произвольные байты через lexer.Scan, rewrite.Rewrite и
// macro.Process.
//
// Не делает: компиляцию, запись файлов, выполнение CLI.
package fuzztests
