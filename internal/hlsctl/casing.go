package hlsctl

import "strings"

// Engine-native event names are camelCase ("hlsLevelLoaded");
// player-level event names are kebab-case ("hls-level-loaded"). The two
// transforms below are exact inverses for names that are well-formed in
// their own convention.

// CamelToKebab converts an engine-native camelCase event name to the
// player-level kebab-case form.
func CamelToKebab(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// KebabToCamel converts a player-level kebab-case event name back to
// the engine-native camelCase form.
func KebabToCamel(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	upper := false
	for _, r := range name {
		if r == '-' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			b.WriteRune(r - ('a' - 'A'))
			upper = false
			continue
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}
