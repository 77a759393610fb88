package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Конфигурация проекта и опций компилятора
	CfgInfo               Code = 1000
	CfgInvalidOption      Code = 1001
	CfgUnknownTarget      Code = 1002
	CfgConflictingOptions Code = 1003
	CfgManifest           Code = 1004

	// Входные пути
	EntryNotFound  Code = 1101
	EntryNoSources Code = 1102

	// Синтаксис (от движка разбора)
	SynInfo    Code = 2000
	SynError   Code = 2001
	SynWarning Code = 2002

	// Импорты
	ImpModuleNotFound Code = 2101
	ImpMissingExport  Code = 2102

	// Эмиссия
	EmitFailed       Code = 3001
	EmitWriteFailed  Code = 3002
	BuildInfoCorrupt Code = 3003

	// Бандлер
	BndError   Code = 4001
	BndWarning Code = 4002
	BndPanic   Code = 4003

	// Watch
	WchInfo Code = 5000

	// Препроцессор и пользовательский transform
	PreTransformFailed Code = 6001
	PreReadFailed      Code = 6002
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		CfgInfo:               "Configuration information",
		CfgInvalidOption:      "Invalid compiler option",
		CfgUnknownTarget:      "Unknown language target",
		CfgConflictingOptions: "Conflicting compiler options",
		CfgManifest:           "Invalid project manifest",
		EntryNotFound:         "Input file not found",
		EntryNoSources:        "No source files in input",
		SynInfo:               "Syntax information",
		SynError:              "Syntax error",
		SynWarning:            "Syntax warning",
		ImpModuleNotFound:     "Cannot find module",
		ImpMissingExport:      "Module has no exported member",
		EmitFailed:            "Emit failed",
		EmitWriteFailed:       "Cannot write output file",
		BuildInfoCorrupt:      "Build info cache is unreadable",
		BndError:              "Bundler error",
		BndWarning:            "Bundler warning",
		BndPanic:              "Bundler crashed",
		WchInfo:               "Watch information",
		PreTransformFailed:    "Source transform failed",
		PreReadFailed:         "Cannot read source file",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 1100:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 1100 && ic < 2000:
		return fmt.Sprintf("ENT%04d", ic)
	case ic >= 2000 && ic < 2100:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 2100 && ic < 3000:
		return fmt.Sprintf("IMP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("EMT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("BND%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("WCH%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PRE%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
