package paint

import (
	"strconv"
	"strings"
)

// OpacityFromClass reads a utility-class style override such as "opacity-75" or
// "hidden" and returns the layer opacity it asks for. Unknown tokens are ignored;
// the last opacity token wins.
func OpacityFromClass(class string) float64 {
	opacity := 1.0
	for _, tok := range strings.Fields(class) {
		switch {
		case tok == "hidden" || tok == "invisible":
			opacity = 0
		case strings.HasPrefix(tok, "opacity-"):
			n, err := strconv.Atoi(strings.TrimPrefix(tok, "opacity-"))
			if err != nil || n < 0 {
				continue
			}
			opacity = clamp01(float64(n) / 100)
		}
	}
	return opacity
}
