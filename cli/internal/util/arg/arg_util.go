package arg

import "strings"

// SplitLeading consumes the flags at the front of rawArgs that are named in
// known and returns them keyed without dashes, together with the rest of
// rawArgs untouched. known maps a flag name to whether it takes a value.
// Scanning stops at the first argument that is not a known flag, so
// everything meant for git passes through as typed.
func SplitLeading(rawArgs []string, known map[string]bool) (map[string]string, []string) {
	flags := make(map[string]string)
	i := 0
	for ; i < len(rawArgs); i++ {
		arg := rawArgs[i]
		if len(arg) < 2 || arg[0] != '-' {
			break
		}

		// Remove leading dashes
		key := arg
		for len(key) > 0 && key[0] == '-' {
			key = key[1:]
		}
		value, inline := "", false
		if name, v, ok := strings.Cut(key, "="); ok {
			key, value, inline = name, v, true
		}

		takesValue, ok := known[key]
		if !ok {
			break
		}
		switch {
		case !takesValue && !inline:
			value = "true" // Boolean flag
		case takesValue && !inline:
			if i+1 >= len(rawArgs) {
				return flags, rawArgs[i:]
			}
			i++ // Skip next arg since we consumed it
			value = rawArgs[i]
		}
		flags[key] = value
	}
	return flags, rawArgs[i:]
}
