package secret

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

var bracedEnvVar = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict expands $VAR and ${VAR} in s.
//
// A braced ${VAR} whose variable is unset is an error listing every missing
// name. Bare $VAR expands to "" when unset. $$ yields a literal $.
func ExpandEnvStrict(s string) (string, error) {
	const escapedDollar = "\x00mediaquery-dollar\x00"
	s = strings.ReplaceAll(s, "$$", escapedDollar)

	var missing []string
	for _, m := range bracedEnvVar.FindAllStringSubmatch(s, -1) {
		if _, ok := os.LookupEnv(m[1]); !ok && !slices.Contains(missing, m[1]) {
			missing = append(missing, m[1])
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	return strings.ReplaceAll(os.ExpandEnv(s), escapedDollar, "$"), nil
}
