package compose

import (
	"fmt"
	"os"
	"sync"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSource resolves the label font once and hands out fresh faces.
// font.Face values are not safe for concurrent use, so each render gets its own.
type FontSource struct {
	path   string
	logger hclog.Logger

	mu     sync.Mutex
	parsed *opentype.Font
}

// NewFontSource returns a source for the TrueType/OpenType font at path. An
// empty path selects the embedded Go Regular font.
func NewFontSource(path string, logger hclog.Logger) *FontSource {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FontSource{path: path, logger: logger}
}

// Face returns a new face of the given point size at 72 DPI. The caller must
// close it.
func (s *FontSource) Face(size float64) (font.Face, error) {
	f, err := s.font()
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// font parses the configured font on first use. Failures are not cached so a
// font file that appears later is picked up.
func (s *FontSource) font() (*opentype.Font, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.parsed != nil {
		return s.parsed, nil
	}

	data := goregular.TTF
	if s.path == "" {
		s.logger.Debug("no font configured, using embedded Go Regular")
	} else {
		raw, err := os.ReadFile(s.path) // #nosec G304 -- font path comes from operator configuration
		if err != nil {
			return nil, fmt.Errorf("read font %q: %w", s.path, err)
		}
		data = raw
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %q: %w", s.path, err)
	}
	s.parsed = parsed
	s.logger.Debug("font loaded", "path", s.path)
	return parsed, nil
}
