// internal/roster/roster.go
//
// Roster management for the game core.
//
// Responsibilities:
//   - Define the ordered attribute columns shared by every character.
//   - Load the roster from the embedded YAML asset or a file (ROSTER_FILE).
//   - Validate it once at startup (non-empty, unique IDs, non-blank names).
//   - Case-folded name lookup and a uniform random pick.
//
// A Roster is immutable after Load and safe for concurrent use.

package roster

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRoster is returned for an empty or malformed roster.
var ErrInvalidRoster = errors.New("invalid roster")

// Attribute is one comparison column.
type Attribute struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Attributes is the comparison and render order.
var Attributes = []Attribute{
	{Key: "gender", Label: "Gender"},
	{Key: "species", Label: "Species"},
	{Key: "pathway", Label: "Pathway"},
	{Key: "sequence", Label: "Sequence"},
	{Key: "volume", Label: "Volume"},
	{Key: "affiliation", Label: "Affiliation"},
	{Key: "epoch", Label: "Epoch"},
}

// Entity is one character. Attrs is keyed by Attribute.Key.
type Entity struct {
	ID    int              `yaml:"id"`
	Name  string           `yaml:"name"`
	Attrs map[string]Value `yaml:",inline"`
}

// Attr returns the value for key; missing keys read as empty.
func (e Entity) Attr(key string) Value {
	return e.Attrs[key]
}

// Roster is the fixed, ordered list of candidate characters.
type Roster struct {
	entities []Entity
	folded   []string       // Fold(entities[i].Name)
	byName   map[string]int // folded name -> index
}

type rosterFile struct {
	Characters []Entity `yaml:"characters"`
}

// New validates entities and builds a Roster. Order is preserved.
func New(entities []Entity) (*Roster, error) {
	if len(entities) == 0 {
		return nil, fmt.Errorf("%w: no characters", ErrInvalidRoster)
	}
	r := &Roster{
		entities: append([]Entity(nil), entities...),
		folded:   make([]string, len(entities)),
		byName:   make(map[string]int, len(entities)),
	}
	ids := make(map[int]struct{}, len(entities))
	for i, e := range r.entities {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("%w: character %d has no name", ErrInvalidRoster, e.ID)
		}
		if _, dup := ids[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidRoster, e.ID)
		}
		ids[e.ID] = struct{}{}
		key := Fold(e.Name)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidRoster, e.Name)
		}
		r.byName[key] = i
		r.folded[i] = key
	}
	return r, nil
}

// Load parses a YAML roster document.
func Load(data []byte) (*Roster, error) {
	var f rosterFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
	}
	return New(f.Characters)
}

// LoadFile reads and parses a roster from disk.
func LoadFile(path string) (*Roster, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster %s: %w", path, err)
	}
	return Load(b)
}

// Entities returns the roster in its fixed order.
func (r *Roster) Entities() []Entity { return append([]Entity(nil), r.entities...) }

// Each calls fn with every entity and its folded name, in roster order,
// until fn returns false.
func (r *Roster) Each(fn func(e Entity, folded string) bool) {
	for i := range r.entities {
		if !fn(r.entities[i], r.folded[i]) {
			return
		}
	}
}

// Len returns the number of characters.
func (r *Roster) Len() int { return len(r.entities) }

// Find resolves an exact, case-insensitive name match.
func (r *Roster) Find(name string) (Entity, bool) {
	i, ok := r.byName[Fold(name)]
	if !ok {
		return Entity{}, false
	}
	return r.entities[i], true
}

// Fold trims and case-folds s for name comparisons.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// RandomTarget returns a uniformly random entity using crypto/rand.
func RandomTarget(entities []Entity) (Entity, error) {
	if len(entities) == 0 {
		return Entity{}, fmt.Errorf("%w: no characters", ErrInvalidRoster)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(entities))))
	if err != nil {
		return Entity{}, fmt.Errorf("random target: %w", err)
	}
	return entities[n.Int64()], nil
}
