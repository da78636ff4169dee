package stub

import (
	"crypto/sha256"
	"fmt"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/face-compare/internal/compare"
	"github.com/kozaktomas/face-compare/internal/constants"
)

type catalogEntry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	PhotoURL    string `yaml:"photo_url"`
	Description string `yaml:"description"`
	DetailURL   string `yaml:"detail_url"`
	BirthDate   string `yaml:"birth_date"`
	Nationality string `yaml:"nationality"`
	Occupation  string `yaml:"occupation"`
	Works       string `yaml:"works"`
	CreatedAt   string `yaml:"created_at"`
}

// LoadCatalog reads a YAML (or JSON) list of celebrities. Every entry needs
// a unique id and a name.
func LoadCatalog(path string) ([]compare.Celebrity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var entries []catalogEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	seen := make(map[string]bool, len(entries))
	catalog := make([]compare.Celebrity, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" || e.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: id and name are required", i)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true
		catalog = append(catalog, compare.Celebrity{
			ID:          compare.ID(e.ID),
			Name:        e.Name,
			PhotoURL:    e.PhotoURL,
			Description: e.Description,
			DetailURL:   e.DetailURL,
			BirthDate:   e.BirthDate,
			Nationality: e.Nationality,
			Occupation:  e.Occupation,
			Works:       e.Works,
			CreatedAt:   e.CreatedAt,
		})
	}
	return catalog, nil
}

// SeedCatalog returns the catalog the stub serves by default.
func SeedCatalog() []compare.Celebrity {
	return []compare.Celebrity{
		{ID: "1", Name: "Ada Lovelace", Nationality: "British", Occupation: "Mathematician",
			BirthDate: "1815-12-10", Description: "Wrote the first published algorithm for a computing machine.",
			PhotoURL: "/media/celebrities/ada-lovelace.jpg", CreatedAt: "2024-01-01T00:00:00Z"},
		{ID: "2", Name: "Alan Turing", Nationality: "British", Occupation: "Computer scientist",
			BirthDate: "1912-06-23", Description: "Formalised computation with the Turing machine.",
			PhotoURL: "/media/celebrities/alan-turing.jpg", CreatedAt: "2024-01-01T00:00:00Z"},
		{ID: "3", Name: "Grace Hopper", Nationality: "American", Occupation: "Computer scientist",
			BirthDate: "1906-12-09", Description: "Pioneered machine-independent programming languages.",
			PhotoURL: "/media/celebrities/grace-hopper.jpg", CreatedAt: "2024-01-01T00:00:00Z"},
		{ID: "4", Name: "Marie Curie", Nationality: "Polish", Occupation: "Physicist",
			BirthDate: "1867-11-07", Description: "Conducted pioneering research on radioactivity.",
			PhotoURL: "/media/celebrities/marie-curie.jpg", CreatedAt: "2024-01-01T00:00:00Z"},
		{ID: "5", Name: "Nikola Tesla", Nationality: "Serbian-American", Occupation: "Inventor",
			BirthDate: "1856-07-10", Description: "Developed the alternating current induction motor.",
			PhotoURL: "/media/celebrities/nikola-tesla.jpg", CreatedAt: "2024-01-01T00:00:00Z"},
	}
}

// rankMatches scores every catalog entry against the photo and returns the
// best matches, highest similarity first. Scores depend only on the photo
// bytes, so the same upload always yields the same result.
func rankMatches(photo []byte, catalog []compare.Celebrity) []compare.Match {
	sum := sha256.Sum256(photo)

	matches := make([]compare.Match, len(catalog))
	for i, c := range catalog {
		a := sum[i%len(sum)]
		b := sum[(i+16)%len(sum)]
		score := 40 + float64(a)/255*55 + float64(b)/255
		matches[i] = compare.Match{Celebrity: c, Similarity: math.Round(score*100) / 100}
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Similarity > matches[b].Similarity
	})

	if len(matches) > constants.StubTopMatches {
		matches = matches[:constants.StubTopMatches]
	}
	return matches
}
