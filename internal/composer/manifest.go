package composer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is a job description dropped into the input folder.
type Manifest struct {
	Provider   string            `yaml:"provider"`
	Voice      string            `yaml:"voice"`
	Title      string            `yaml:"title"`
	TitleImage string            `yaml:"title_image"`
	Background string            `yaml:"background"`
	Overlays   []Overlay         `yaml:"overlays"`
	Lines      []Line            `yaml:"lines"`
	Subtitles  *SubtitleOverride `yaml:"subtitles"`
	Width      int               `yaml:"width"`
	Height     int               `yaml:"height"`
	OutputDir  string            `yaml:"output_dir"`
}

// Overlay is an image composited over the background.
type Overlay struct {
	Image string `yaml:"image"`
	// Duration is how long the image stays visible; 0 keeps it for the whole video.
	Duration   float64 `yaml:"duration"`
	ScaleToFit bool    `yaml:"scale_to_fit"`
}

// Line is one narrated sentence.
type Line struct {
	Text    string `yaml:"text"`
	Speaker string `yaml:"speaker"`
	Voice   string `yaml:"voice"`
}

// SubtitleOverride replaces the configured caption style field by field.
type SubtitleOverride struct {
	Disabled bool   `yaml:"disabled"`
	Font     string `yaml:"font"`
	Color    string `yaml:"color"`
	Position string `yaml:"position"`
	FontSize int    `yaml:"font_size"`
}

// LoadManifest reads a manifest and resolves its file references relative
// to the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	m.resolve(filepath.Dir(path))
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) resolve(base string) {
	m.TitleImage = resolvePath(base, m.TitleImage)
	m.Background = resolvePath(base, m.Background)
	m.OutputDir = resolvePath(base, m.OutputDir)
	for i := range m.Overlays {
		m.Overlays[i].Image = resolvePath(base, m.Overlays[i].Image)
	}
}

// Validate checks that the manifest describes something renderable.
func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Title) == "" && len(m.Lines) == 0 {
		return fmt.Errorf("%w: no title or lines to narrate", ErrInvalidManifest)
	}
	for i, l := range m.Lines {
		if strings.TrimSpace(l.Text) == "" {
			return fmt.Errorf("%w: line %d has no text", ErrInvalidManifest, i+1)
		}
	}
	if m.Background == "" && m.TitleImage == "" && len(m.Overlays) == 0 {
		return fmt.Errorf("%w: background, title_image or an overlay is required", ErrInvalidManifest)
	}
	for i, o := range m.Overlays {
		if o.Image == "" {
			return fmt.Errorf("%w: overlay %d has no image", ErrInvalidManifest, i+1)
		}
	}
	if m.Width < 0 || m.Height < 0 {
		return fmt.Errorf("%w: negative dimensions", ErrInvalidManifest)
	}
	return nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
