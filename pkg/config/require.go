package config

import (
	"fmt"
	"sort"
	"strings"
)

// Require returns an error naming every variable in vars whose value is
// empty. Keys are env names, values their loaded contents.
func Require(vars map[string]string) error {
	var missing []string
	for name, v := range vars {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing required env %s", strings.Join(missing, ", "))
}
