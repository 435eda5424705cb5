package config

import "strings"

const badFileName = "_bad_file_name_"

// CleanFileName removes characters not allowed in file names, control
// characters and leading dots.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if sym < 0x20 || strings.ContainsRune(forbiddenNameChars, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimRight(strings.TrimLeft(out, "."), " ")
	if len(out) == 0 {
		return badFileName
	}
	return out
}
