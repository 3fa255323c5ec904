// Package refdata loads the region and category lookup tables used to
// build filter states. The tables are read once at startup into an
// immutable snapshot and never re-fetched mid-session.
package refdata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Region is one selectable municipality or organization.
type Region struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

// Category is one selectable document category.
type Category struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Snapshot is the immutable reference data loaded at startup.
// Shared read-only across all sessions.
type Snapshot struct {
	regions      []Region
	categories   []Category
	regionByCode map[string]string
	categoryByID map[int]string
}

type regionsFile struct {
	Regions []Region `yaml:"regions"`
}

type categoriesFile struct {
	Categories []Category `yaml:"categories"`
}

// Load reads both lookup tables from their YAML files.
func Load(regionsPath, categoriesPath string) (*Snapshot, error) {
	var rf regionsFile
	if err := readYAML(regionsPath, &rf); err != nil {
		return nil, fmt.Errorf("load regions: %w", err)
	}

	var cf categoriesFile
	if err := readYAML(categoriesPath, &cf); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	s := &Snapshot{
		regions:      rf.Regions,
		categories:   cf.Categories,
		regionByCode: make(map[string]string, len(rf.Regions)),
		categoryByID: make(map[int]string, len(cf.Categories)),
	}
	for _, r := range rf.Regions {
		if r.Code == "" {
			return nil, fmt.Errorf("load regions: entry %q has empty code", r.Name)
		}
		s.regionByCode[r.Code] = r.Name
	}
	for _, c := range cf.Categories {
		s.categoryByID[c.ID] = c.Name
	}

	return s, nil
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Regions returns the region list in file order.
func (s *Snapshot) Regions() []Region {
	out := make([]Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// Categories returns the category list in file order.
func (s *Snapshot) Categories() []Category {
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// RegionName resolves a region code to its display name.
func (s *Snapshot) RegionName(code string) (string, bool) {
	name, ok := s.regionByCode[code]
	return name, ok
}

// CategoryName resolves a category id to its display name.
func (s *Snapshot) CategoryName(id int) (string, bool) {
	name, ok := s.categoryByID[id]
	return name, ok
}
