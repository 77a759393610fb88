package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of a tri-state switch flag: --ui and --color.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func parseSwitch(flag, value string) (uiMode, error) {
	switch mode := uiMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
}

// enabled resolves auto against f.
func (m uiMode) enabled(f *os.File) bool {
	switch m {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return isTerminal(f)
}

func readUIMode(value string) (uiMode, error) {
	return parseSwitch("ui", value)
}

// shouldUseTUI включает прогресс только для интерактивного stdout;
// json-вывод всегда без него.
func shouldUseTUI(mode uiMode, jsonOutput bool) bool {
	return !jsonOutput && mode.enabled(os.Stdout)
}

// useColor resolves --color against the given stream.
func useColor(value string, f *os.File) (bool, error) {
	mode, err := parseSwitch("color", value)
	if err != nil {
		return false, err
	}
	return mode.enabled(f), nil
}
