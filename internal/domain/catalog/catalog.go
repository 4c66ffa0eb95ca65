package catalog

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// weightTolerance absorbs float noise when checking that a role's weights sum to 100.
const weightTolerance = 1e-9

// Catalog is the immutable set of scoreable metrics for one catalog version.
type Catalog struct {
	version string
	metrics []Metric
	byID    map[string]int
}

type document struct {
	Version string   `yaml:"version"`
	Metrics []Metric `yaml:"metrics"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog embedded in the binary. It is parsed once per process.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(defaultCatalog)
	})
	return defaultCat, defaultErr
}

// LoadFile parses a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(doc.Version, doc.Metrics)
}

// New builds a catalog from metrics in display order.
func New(version string, metrics []Metric) (*Catalog, error) {
	if len(metrics) == 0 {
		return nil, fmt.Errorf("%w: no metrics defined", ErrInvalidCatalog)
	}
	c := &Catalog{
		version: version,
		metrics: make([]Metric, 0, len(metrics)),
		byID:    make(map[string]int, len(metrics)),
	}
	for _, metric := range metrics {
		if metric.ID == "" {
			return nil, fmt.Errorf("%w: metric without id", ErrInvalidCatalog)
		}
		if _, dup := c.byID[metric.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate metric id %s", ErrInvalidCatalog, metric.ID)
		}
		if !metric.Pillar.Valid() {
			return nil, fmt.Errorf("%w: metric %s has unknown pillar %q", ErrInvalidCatalog, metric.ID, metric.Pillar)
		}
		for role, weight := range metric.Weights {
			if !role.Valid() {
				return nil, fmt.Errorf("%w: metric %s has weight for unknown role %q", ErrInvalidCatalog, metric.ID, role)
			}
			if weight < 0 || weight > 100 || math.IsNaN(weight) {
				return nil, fmt.Errorf("%w: metric %s weight %v for %s outside 0-100", ErrInvalidCatalog, metric.ID, weight, role)
			}
		}
		for score := range metric.ScoringGuide {
			if score < 1 || score > 5 {
				return nil, fmt.Errorf("%w: metric %s guide entry %d outside 1-5", ErrInvalidCatalog, metric.ID, score)
			}
		}
		c.byID[metric.ID] = len(c.metrics)
		c.metrics = append(c.metrics, metric)
	}
	return c, nil
}

func (c *Catalog) Version() string {
	return c.version
}

func (c *Catalog) Metrics() []Metric {
	out := make([]Metric, len(c.metrics))
	copy(out, c.metrics)
	return out
}

func (c *Catalog) Metric(id string) (Metric, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Metric{}, false
	}
	return c.metrics[idx], true
}

// Applicable returns the metrics with a nonzero weight for role, in catalog order.
func (c *Catalog) Applicable(role Role) ([]WeightedMetric, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	var out []WeightedMetric
	for _, metric := range c.metrics {
		weight := metric.Weights[role]
		if weight == 0 {
			continue
		}
		out = append(out, WeightedMetric{Metric: metric, Weight: weight})
	}
	return out, nil
}

// Groups resolves the applicable metrics for role and partitions them into pillars.
func (c *Catalog) Groups(role Role) ([]PillarGroup, error) {
	metrics, err := c.Applicable(role)
	if err != nil {
		return nil, err
	}
	return Group(metrics), nil
}

// RoleWeight is the sum of every metric weight for role.
func (c *Catalog) RoleWeight(role Role) float64 {
	var total float64
	for _, metric := range c.metrics {
		total += metric.Weights[role]
	}
	return total
}

// CheckWeights lists roles whose weights do not sum to 100.
func (c *Catalog) CheckWeights() []WeightDrift {
	var drift []WeightDrift
	for _, role := range Roles {
		total := c.RoleWeight(role)
		if math.Abs(total-100) > weightTolerance {
			drift = append(drift, WeightDrift{Role: role, Total: total})
		}
	}
	return drift
}

// Group partitions metrics into the five fixed pillars. Pillars without
// metrics are returned empty with zero weight.
func Group(metrics []WeightedMetric) []PillarGroup {
	groups := make([]PillarGroup, len(Pillars))
	index := make(map[Pillar]int, len(Pillars))
	for i, pillar := range Pillars {
		groups[i] = PillarGroup{Pillar: pillar, Title: pillar.Title(), Metrics: []WeightedMetric{}}
		index[pillar] = i
	}
	for _, metric := range metrics {
		i, ok := index[metric.Pillar]
		if !ok {
			continue
		}
		groups[i].Metrics = append(groups[i].Metrics, metric)
		groups[i].TotalWeight += metric.Weight
	}
	return groups
}
