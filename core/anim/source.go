package anim

import (
	"path/filepath"
	"strconv"

	"github.com/telmova/dotfield/internal/config"
)

// defaultFrameDir is the last-resort directory for numeric frame entries
// when neither a base path nor a primary image path is available.
const defaultFrameDir = "assets/frames"

// Source pairs a frame id with the location its bitmap loads from.
type Source struct {
	ID   string
	Path string
}

// ResolveSources maps configured frame entries onto load locations. Explicit
// string entries are used verbatim; bare integers are joined with the
// configured base path and suffix, falling back to a "frames" sibling of the
// primary image, then to a fixed default directory. Pure path construction,
// no I/O.
func ResolveSources(cfg config.Animation, primaryImagePath string) []Source {
	base := cfg.BasePath
	if base == "" && primaryImagePath != "" {
		base = filepath.Join(filepath.Dir(primaryImagePath), "frames")
	}
	if base == "" {
		base = defaultFrameDir
	}
	suffix := cfg.Suffix
	if suffix == "" {
		suffix = ".png"
	}

	out := make([]Source, 0, len(cfg.Frames))
	for _, entry := range cfg.Frames {
		if _, err := strconv.Atoi(entry); err == nil {
			out = append(out, Source{ID: entry, Path: filepath.Join(base, entry+suffix)})
			continue
		}
		out = append(out, Source{ID: entry, Path: entry})
	}
	return out
}

// IDs returns just the frame ids, in sequence order.
func IDs(sources []Source) []string {
	ids := make([]string, len(sources))
	for i, s := range sources {
		ids[i] = s.ID
	}
	return ids
}
