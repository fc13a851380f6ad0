package analysis

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed reason_taxonomy.yaml
var defaultTaxonomy []byte

// reasonGroup is one ordered keyword group of the taxonomy.
type reasonGroup struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

type taxonomyFile struct {
	Unspecified string        `yaml:"unspecified"`
	Groups      []reasonGroup `yaml:"groups"`
}

// ReasonNormalizer canonicalizes free-text refund reasons into a fixed
// taxonomy. Matching is ordered: the first keyword group that matches wins,
// so the group order in the taxonomy file must be preserved exactly.
type ReasonNormalizer struct {
	unspecified string
	groups      []reasonGroup
	titler      cases.Caser
}

// NewReasonNormalizer builds a normalizer from the embedded default taxonomy.
func NewReasonNormalizer() *ReasonNormalizer {
	n, err := newFromYAML(defaultTaxonomy)
	if err != nil {
		// The embedded taxonomy ships with the binary; a parse failure here is
		// a build defect, not a runtime condition.
		panic(fmt.Sprintf("embedded reason taxonomy is invalid: %v", err))
	}
	return n
}

// NewReasonNormalizerFromFile builds a normalizer from a taxonomy override
// file. An empty path falls back to the embedded default.
func NewReasonNormalizerFromFile(path string) (*ReasonNormalizer, error) {
	if path == "" {
		return NewReasonNormalizer(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reason taxonomy %s: %w", path, err)
	}
	n, err := newFromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing reason taxonomy %s: %w", path, err)
	}
	return n, nil
}

func newFromYAML(data []byte) (*ReasonNormalizer, error) {
	var f taxonomyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Unspecified == "" {
		return nil, fmt.Errorf("taxonomy: unspecified label must not be empty")
	}
	for i, g := range f.Groups {
		if g.Label == "" {
			return nil, fmt.Errorf("taxonomy: group %d has no label", i)
		}
		if len(g.Keywords) == 0 {
			return nil, fmt.Errorf("taxonomy: group %q has no keywords", g.Label)
		}
	}
	return &ReasonNormalizer{
		unspecified: f.Unspecified,
		groups:      f.Groups,
		titler:      cases.Title(language.Und),
	}, nil
}

// Unspecified returns the label used for empty or absent reasons.
func (n *ReasonNormalizer) Unspecified() string {
	return n.unspecified
}

// Normalize maps a raw refund reason to its canonical label. An empty reason
// returns the fixed unspecified label; a reason matching no group is returned
// title-cased.
func (n *ReasonNormalizer) Normalize(raw string) string {
	reason := strings.ToLower(strings.TrimSpace(raw))
	if reason == "" {
		return n.unspecified
	}
	for _, g := range n.groups {
		for _, kw := range g.Keywords {
			if strings.Contains(reason, kw) {
				return g.Label
			}
		}
	}
	return n.titler.String(reason)
}
