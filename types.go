package glossa

// Standard identifies an external identifier namespace (code space).
type Standard string

const (
	BCP47       Standard = "bcp_47"
	ISO6391     Standard = "iso_639_1"
	ISO6392B    Standard = "iso_639_2b"
	ISO6392T    Standard = "iso_639_2t" // alias: 2T codes are identical to ISO 639-3
	ISO6393     Standard = "iso_639_3"
	ISO6395     Standard = "iso_639_5"
	Glottocode  Standard = "glottocode"
	WikidataID  Standard = "wikidata_id"
	WikipediaID Standard = "wikipedia_id"
	ISO15924    Standard = "iso_15924" // scripts
	ISO3166     Standard = "iso_3166"  // regions
)

// standardOrder ranks standards from most specific (lowest collision risk)
// to least. It drives Guess and the deterministic group ordering used for
// canonical ID assignment.
var standardOrder = []Standard{
	Glottocode,
	WikidataID,
	ISO6393,
	BCP47,
	ISO6392B,
	ISO6391,
	ISO6395,
	WikipediaID,
	ISO15924,
	ISO3166,
}

// standardRank returns the position of std in standardOrder, or a rank past
// the end for unknown standards.
func standardRank(std Standard) int {
	for i, s := range standardOrder {
		if s == std {
			return i
		}
	}
	return len(standardOrder)
}

// Kind distinguishes the three entity domains.
type Kind string

const (
	KindLanguoid Kind = "languoid"
	KindScript   Kind = "script"
	KindRegion   Kind = "region"
)

// TriState is a three-valued flag: true, false, or unknown. Optional booleans
// are never modeled as plain bools defaulting to false — "we don't know" and
// "no" are different facts with different sources.
type TriState int8

const (
	TriUnknown TriState = iota
	TriFalse
	TriTrue
)

// TriOf converts a known boolean into a TriState.
func TriOf(b bool) TriState {
	if b {
		return TriTrue
	}
	return TriFalse
}

// Bool reports the underlying value and whether it is known.
func (t TriState) Bool() (value, known bool) {
	switch t {
	case TriTrue:
		return true, true
	case TriFalse:
		return false, true
	default:
		return false, false
	}
}

func (t TriState) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return "unknown"
	}
}

// Level is the Glottolog-style classification of a languoid node.
type Level string

const (
	LevelLanguage Level = "language"
	LevelDialect  Level = "dialect"
	LevelFamily   Level = "family"
)

// Scope is the ISO 639-3 scope classification.
type Scope string

const (
	ScopeIndividual    Scope = "I"
	ScopeMacrolanguage Scope = "M"
	ScopeSpecial       Scope = "S"
)

// LifeStatus is the ISO 639-3 language type (living, extinct, ...).
type LifeStatus string

const (
	StatusLiving      LifeStatus = "L"
	StatusHistorical  LifeStatus = "H"
	StatusAncient     LifeStatus = "A"
	StatusConstructed LifeStatus = "C"
	StatusExtinct     LifeStatus = "E"
	StatusSpecial     LifeStatus = "S"
)

// Endangerment follows the UNESCO endangerment scale.
type Endangerment string

const (
	NotEndangered        Endangerment = "Not endangered"
	Vulnerable           Endangerment = "Vulnerable"
	DefinitelyEndangered Endangerment = "Definitely endangered"
	SeverelyEndangered   Endangerment = "Severely endangered"
	CriticallyEndangered Endangerment = "Critically endangered"
	EndangermentExtinct  Endangerment = "Extinct"
)

// WikipediaInfo holds Wikipedia edition metadata for a languoid.
type WikipediaInfo struct {
	URL          string
	Code         string
	ArticleCount *int64
	ActiveUsers  *int64
}

// NameEntry is a name for a languoid expressed in a given language.
type NameEntry struct {
	InLanguage string // code of the language the name is written in
	Name       string
	Canonical  bool
	Source     string
}

// DeprecatedCode is a retired identifier that formerly denoted a languoid
// (or a predecessor of one).
type DeprecatedCode struct {
	Code      string
	Standard  Standard
	Reason    string // C=Change, M=Merge, D=Duplicate, S=Split, N=Non-existent, or free text
	Name      string // reference name from the retirements table
	Effective string // date retired, YYYY-MM-DD
	Remedy    string
}

// none marks an absent arena edge.
const none int32 = -1

// Languoid is a canonical language-like entity: an individual language,
// dialect, macrolanguage, or language family. It is immutable after build;
// traversal accessors resolve arena indices against the owning Database.
type Languoid struct {
	ID    string // canonical ID, stable across rebuilds ("lang:000042")
	Codes map[Standard]string

	Name         string
	Endonym      string
	SpeakerCount *int64
	Latitude     *float64
	Longitude    *float64
	Level        Level
	Scope        Scope
	Status       LifeStatus
	Endangerment Endangerment
	Description  string
	Wikipedia    *WikipediaInfo

	Names      []NameEntry
	Deprecated []DeprecatedCode

	db          *Database
	self        int32
	parent      int32
	children    []int32
	macro       int32
	individuals []int32
	scripts     []ScriptUse
	regions     []RegionUse
}

// Code returns the languoid's code under the given standard, or "" if it has
// none. ISO 639-2T is answered from the ISO 639-3 value.
func (l *Languoid) Code(std Standard) string {
	if std == ISO6392T {
		std = ISO6393
	}
	return l.Codes[std]
}

// ScriptUse is one languoid-script attachment with its tri-state usage flags.
type ScriptUse struct {
	Code            string // ISO 15924
	Canonical       TriState
	Historical      TriState
	Religious       TriState
	Transliteration TriState
	Accessibility   TriState
	Widespread      TriState
	Official        TriState
	Symbolic        TriState
	Source          string

	script int32
}

// RegionUse is one languoid-region attachment.
type RegionUse struct {
	Code         string // ISO 3166
	Official     TriState
	SpeakerCount *int64
	Source       string

	region int32
}

// Script is a writing system.
type Script struct {
	ID         string // canonical ID ("script:0007")
	Code       string // ISO 15924
	Name       string
	FullName   string
	Historical TriState

	db    *Database
	users []scriptUser
}

type scriptUser struct {
	languoid  int32
	canonical TriState
}

// Region is a country or subdivision.
type Region struct {
	ID              string // canonical ID ("region:0031")
	Code            string // ISO 3166
	Name            string
	OfficialName    string
	SubdivisionCode string
	SubdivisionType string
	Historical      TriState

	db        *Database
	parent    int32
	children  []int32
	languoids []regionUser
}

type regionUser struct {
	languoid     int32
	official     TriState
	speakerCount *int64
}

// ConflictValue is one competing (source, value) pair in a ConflictRecord.
type ConflictValue struct {
	Source string
	Value  string
}

// ConflictRecord documents a field that was offered with two or more distinct
// values across sources, and how the conflict was resolved. Recorded even
// when resolution was unambiguous, for audit purposes.
type ConflictRecord struct {
	EntityID       string
	Field          string
	Values         []ConflictValue
	Selected       string
	SelectedSource string
}

// DanglingReference documents a parent/script/region reference that did not
// resolve to a known canonical entity. The edge is dropped, not fatal.
type DanglingReference struct {
	EntityID string
	Field    string // "parent", "macrolanguage", "script", "region", "region_parent"
	Ref      string
}

// Report is the build report: conflict log, dropped references, and the
// count of malformed records skipped during normalization.
type Report struct {
	Conflicts []ConflictRecord
	Dangling  []DanglingReference
	Malformed int
}

// Redirect describes a deprecated-code hit: the retired code, why it was
// retired, and (via the accompanying Languoid, when non-nil) what replaced it.
type Redirect struct {
	Code     string
	Standard Standard
	Reason   string
}
