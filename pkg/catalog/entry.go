package catalog

// Entry is one selectable model harvested from the target site.
// Entries are values; callers must not modify Features in place.
type Entry struct {
	Name string `yaml:"name" json:"name"`

	// BetaLabel is the badge text, empty when the model has no badge
	BetaLabel string `yaml:"beta,omitempty" json:"beta,omitempty"`

	// Features are the capability labels in page order
	Features []string `yaml:"features,omitempty" json:"features,omitempty"`
}

// HasBeta reports whether the entry carries a beta badge.
func (e Entry) HasBeta() bool {
	return e.BetaLabel != ""
}

func (e Entry) clone() Entry {
	c := e
	c.Features = append([]string(nil), e.Features...)
	return c
}

// Catalog is the ordered list of entries fetched for one user. A catalog is
// replaced wholesale on re-fetch and never patched.
type Catalog []Entry

// New builds a catalog from extracted entries. Entries without a name and
// repeated names are dropped so names are non-empty and unique; the first
// occurrence wins.
func New(entries []Entry) Catalog {
	out := make(Catalog, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Name == "" || seen[e.Name] {
			continue
		}
		seen[e.Name] = true
		out = append(out, e.clone())
	}
	return out
}

// Lookup finds an entry by exact name.
func (c Catalog) Lookup(name string) (Entry, bool) {
	for _, e := range c {
		if e.Name == name {
			return e.clone(), true
		}
	}
	return Entry{}, false
}

// Index returns the position of name, or -1.
func (c Catalog) Index(name string) int {
	for i, e := range c {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the entry names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, e := range c {
		names[i] = e.Name
	}
	return names
}
