// SPDX-License-Identifier: MPL-2.0

package discovery

import "regexp"

// ConfigBaseName is the file name, without extension, of a config module.
const ConfigBaseName = "mikro-orm.config"

var (
	tsExtPattern = regexp.MustCompile(`\.[mc]?tsx?$`)

	// TSExtnames are the TypeScript config extensions in priority order.
	TSExtnames = Extnames([]string{"ts"}, moduleInfixes)
	// JSExtnames are the JavaScript config extensions in priority order.
	JSExtnames = Extnames([]string{"js"}, moduleInfixes)
	// AllExtnames lists TypeScript extensions before JavaScript ones.
	AllExtnames = Extnames([]string{"ts", "js"}, moduleInfixes)

	// moduleInfixes are the module-kind markers: none, ES module, CommonJS.
	moduleInfixes = []string{"", "m", "c"}
)

// Extnames returns "." + infix + root for every root and infix. Roots are the
// outer loop, so all variants of the first root come before the second.
func Extnames(roots, infixes []string) []string {
	out := make([]string, 0, len(roots)*len(infixes))
	for _, root := range roots {
		for _, infix := range infixes {
			out = append(out, "."+infix+root)
		}
	}
	return out
}

// ConfigNames appends each extension to base, preserving order.
func ConfigNames(base string, extnames []string) []string {
	out := make([]string, 0, len(extnames))
	for _, ext := range extnames {
		out = append(out, base+ext)
	}
	return out
}

// IsTS reports whether specifier has a TypeScript extension.
func IsTS(specifier string) bool {
	return tsExtPattern.MatchString(specifier)
}
