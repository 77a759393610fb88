package diag

// Reporter получает диагностики от фаз по одной.
type Reporter interface {
	Report(d Diagnostic)
}

// FuncReporter adapts a function to Reporter; a nil function drops everything.
type FuncReporter func(d Diagnostic)

func (f FuncReporter) Report(d Diagnostic) {
	if f != nil {
		f(d)
	}
}
