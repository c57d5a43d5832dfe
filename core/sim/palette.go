package sim

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/telmova/dotfield/internal/log"
)

// BuildPalette turns configured hex colors into render colors. Malformed
// entries are skipped with a diagnostic; when nothing usable remains a
// generated palette keeps the field visible rather than failing.
func BuildPalette(hexes []string, single string, logg *log.Logger) [][3]uint8 {
	src := hexes
	if len(src) == 0 && single != "" {
		src = []string{single}
	}

	var out [][3]uint8
	for _, hex := range src {
		c, err := colorful.Hex(hex)
		if err != nil {
			logg.Warnf("palette: skipping malformed color %q: %v", hex, err)
			continue
		}
		r, g, b := c.RGB255()
		out = append(out, [3]uint8{r, g, b})
	}
	if len(out) == 0 {
		logg.Warnf("palette: no usable colors configured, generating one")
		for _, c := range colorful.FastHappyPalette(5) {
			r, g, b := c.RGB255()
			out = append(out, [3]uint8{r, g, b})
		}
	}
	return out
}
