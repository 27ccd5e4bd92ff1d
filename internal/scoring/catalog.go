package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/quarterpay/internal/config"
)

// Catalog is the read-only registry of project/region weight sets. It is
// built once at startup and safe for concurrent readers.
type Catalog struct {
	projects map[string]WeightSet
	aliases  map[string]string
	keys     []string
}

// NewCatalog validates and copies the given projects and aliases. Alias
// lookups are case-insensitive; canonical names match exactly.
func NewCatalog(projects map[string]WeightSet, aliases map[string]string) (*Catalog, error) {
	c := &Catalog{
		projects: make(map[string]WeightSet, len(projects)),
		aliases:  make(map[string]string, len(aliases)),
	}
	for name, w := range projects {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("catalog: empty project name")
		}
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: project %s: %w", name, err)
		}
		c.projects[name] = w.Clone()
		c.keys = append(c.keys, name)
	}
	sort.Strings(c.keys)

	for alias, target := range aliases {
		key := aliasKey(alias)
		if key == "" {
			return nil, fmt.Errorf("catalog: empty alias for %s", target)
		}
		if _, ok := c.projects[target]; !ok {
			return nil, fmt.Errorf("catalog: alias %q targets unknown project %q", alias, target)
		}
		if _, ok := c.projects[strings.TrimSpace(alias)]; ok && strings.TrimSpace(alias) != target {
			return nil, fmt.Errorf("catalog: alias %q shadows project of the same name", alias)
		}
		c.aliases[key] = target
	}
	return c, nil
}

// DefaultCatalog returns the regional weight sets used by the sales department.
func DefaultCatalog() *Catalog {
	c, err := CatalogFromConfig(config.DefaultCatalog())
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

// CatalogFromConfig builds a Catalog from configuration. Weight keys may be
// metric identifiers or sheet labels.
func CatalogFromConfig(cfg config.CatalogConfig) (*Catalog, error) {
	projects := make(map[string]WeightSet, len(cfg.Projects))
	for name, raw := range cfg.Projects {
		w := WeightsFromMap(raw)
		if unknown := w.Unknown(); len(unknown) > 0 {
			return nil, fmt.Errorf("catalog: project %s: unknown metrics %v", name, unknown)
		}
		projects[name] = w
	}
	return NewCatalog(projects, cfg.Aliases)
}

func aliasKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Canonical resolves an alias to its canonical project name. Keys that are
// not aliases are returned trimmed but otherwise unchanged.
func (c *Catalog) Canonical(key string) string {
	if target, ok := c.aliases[aliasKey(key)]; ok {
		return target
	}
	return strings.TrimSpace(key)
}

// Lookup returns a copy of the weight set for key or one of its aliases.
func (c *Catalog) Lookup(key string) (WeightSet, error) {
	name := c.Canonical(key)
	w, ok := c.projects[name]
	if !ok {
		return nil, &ConfigNotFoundError{Key: key, Known: c.Keys()}
	}
	return w.Clone(), nil
}

// Keys returns the canonical project names, sorted.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Aliases returns a copy of the alias table (lower-cased alias -> project).
func (c *Catalog) Aliases() map[string]string {
	out := make(map[string]string, len(c.aliases))
	for k, v := range c.aliases {
		out[k] = v
	}
	return out
}

type sourceKind int

const (
	sourceNone sourceKind = iota
	sourceExplicit
	sourceProject
)

// WeightSource says where a calculation's weights come from: either an
// explicit weight map or a catalog key. The zero value names neither.
type WeightSource struct {
	kind     sourceKind
	explicit WeightSet
	project  string
}

// ExplicitWeights selects a caller-supplied weight map.
func ExplicitWeights(raw map[string]float64) WeightSource {
	return WeightSource{kind: sourceExplicit, explicit: WeightsFromMap(raw)}
}

// ProjectKey selects the catalog entry for key (or an alias of it).
func ProjectKey(key string) WeightSource {
	return WeightSource{kind: sourceProject, project: key}
}

// SourceFrom applies the precedence rule for callers that may receive both:
// a non-empty weight map always wins over the project key.
func SourceFrom(weights map[string]float64, project string) WeightSource {
	if len(weights) > 0 {
		return ExplicitWeights(weights)
	}
	if strings.TrimSpace(project) != "" {
		return ProjectKey(project)
	}
	return WeightSource{}
}

// IsExplicit reports whether the source carries its own weights.
func (s WeightSource) IsExplicit() bool { return s.kind == sourceExplicit }

// Project returns the requested catalog key, if any.
func (s WeightSource) Project() string { return s.project }

// Resolve returns the weights for src and, for catalog lookups, the canonical
// project name they were found under.
func (c *Catalog) Resolve(src WeightSource) (WeightSet, string, error) {
	switch src.kind {
	case sourceExplicit:
		return src.explicit.Clone(), "", nil
	case sourceProject:
		w, err := c.Lookup(src.project)
		if err != nil {
			return nil, "", err
		}
		return w, c.Canonical(src.project), nil
	default:
		return nil, "", &ConfigNotFoundError{Known: c.Keys()}
	}
}
