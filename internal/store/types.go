package store

// Row types mirror the artifact tables one to one. They carry no engine
// semantics: the root package converts them to and from its graph types.

type Languoid struct {
	ID                string
	Name              string
	Endonym           string
	SpeakerCount      *int64
	Latitude          *float64
	Longitude         *float64
	Level             string
	Scope             string
	Status            string
	Endangerment      string
	Description       string
	WikipediaURL      string
	WikipediaCode     string
	WikipediaArticles *int64
	WikipediaUsers    *int64
	ParentID          string // canonical ID, "" when root
	MacroID           string
}

type LanguoidCode struct {
	LanguoidID string
	Standard   string
	Code       string
}

type Script struct {
	ID         string
	Code       string // ISO 15924
	Name       string
	FullName   string
	Historical int64 // tri-state: 0 unknown, 1 false, 2 true
}

type Region struct {
	ID              string
	Code            string // ISO 3166
	Name            string
	OfficialName    string
	SubdivisionCode string
	SubdivisionType string
	Historical      int64
	ParentID        string
}

type ScriptUse struct {
	LanguoidID      string
	ScriptID        string
	Canonical       int64
	Historical      int64
	Religious       int64
	Transliteration int64
	Accessibility   int64
	Widespread      int64
	Official        int64
	Symbolic        int64
	Source          string
}

type RegionUse struct {
	LanguoidID   string
	RegionID     string
	Official     int64
	SpeakerCount *int64
	Source       string
}

type Name struct {
	LanguoidID string
	InLanguage string
	Name       string
	Canonical  bool
	Source     string
}

type DeprecatedCode struct {
	Standard   string
	Code       string
	LanguoidID string // "" for tombstones (retired with no successor)
	Reason     string
	Name       string
	Effective  string
	Remedy     string
}

type Conflict struct {
	EntityID       string
	Field          string
	Candidates     string // JSON array of {source, value} pairs
	Selected       string
	SelectedSource string
}

type DanglingRef struct {
	EntityID string
	Field    string
	Ref      string
}

// Snapshot is the complete artifact content. Slice order is insertion order
// and survives a save/load round trip; the root package relies on that to
// keep arena indices stable.
type Snapshot struct {
	Languoids  []Languoid
	Codes      []LanguoidCode
	Scripts    []Script
	Regions    []Region
	ScriptUses []ScriptUse
	RegionUses []RegionUse
	Names      []Name
	Deprecated []DeprecatedCode
	Conflicts  []Conflict
	Dangling   []DanglingRef
	Malformed  int64
}
