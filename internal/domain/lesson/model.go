package lesson

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Lesson is one numbered page of the course.
type Lesson struct {
	Number  int    `yaml:"number"`
	Slug    string `yaml:"slug"` // empty for the home page
	Nav     string `yaml:"nav"`  // navigation label
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"` // Markdown
}

// Path returns the URL path of the lesson page.
func (l Lesson) Path() string {
	if l.Slug == "" {
		return "/"
	}
	return "/" + l.Slug
}

// Catalog is the ordered list of lessons.
// INVARIANT: numbers strictly increase; slugs are unique.
type Catalog struct {
	Lessons []Lesson `yaml:"lessons"`
}

var (
	ErrEmptyCatalog   = errors.New("lesson catalog is empty")
	ErrLessonNotFound = errors.New("lesson not found")
)

// LoadCatalog parses a YAML catalog and validates it.
// PRE: data is a YAML document with a top-level "lessons" list
// POST: returns a valid Catalog or an error describing the first violation
func LoadCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse lesson catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// DefaultCatalog returns the embedded catalog.
// PRE: none
// POST: returns the built-in lessons; panics if the embedded file is invalid
func DefaultCatalog() Catalog {
	c, err := LoadCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks the catalog invariants.
func (c Catalog) Validate() error {
	if len(c.Lessons) == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]bool, len(c.Lessons))
	for i, l := range c.Lessons {
		if l.Title == "" {
			return fmt.Errorf("lesson %d: title cannot be empty", l.Number)
		}
		if i > 0 && l.Number <= c.Lessons[i-1].Number {
			return fmt.Errorf("lesson %d: numbers must strictly increase", l.Number)
		}
		if seen[l.Slug] {
			return fmt.Errorf("lesson %d: duplicate slug %q", l.Number, l.Slug)
		}
		seen[l.Slug] = true
	}
	return nil
}

// BySlug looks up a lesson by its slug.
// PRE: none
// POST: returns the lesson or ErrLessonNotFound
func (c Catalog) BySlug(slug string) (Lesson, error) {
	for _, l := range c.Lessons {
		if l.Slug == slug {
			return l, nil
		}
	}
	return Lesson{}, fmt.Errorf("%w: %q", ErrLessonNotFound, slug)
}
