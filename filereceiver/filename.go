package filereceiver

import "strings"

// OutputName derives the output file name from the basename carried by a
// FILE_NAME frame's payload (spec.md §4.5/§6): insert "_output" before
// the final extension, append it if there is no extension, and fall back
// to the literal name "output" for an empty payload.
func OutputName(basename string) string {
	if basename == "" {
		return "output"
	}
	dot := strings.LastIndex(basename, ".")
	if dot < 0 {
		return basename + "_output"
	}
	return basename[:dot] + "_output" + basename[dot:]
}
