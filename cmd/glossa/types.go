package main

import "github.com/jward/glossa"

// CLIResult is the top-level JSON envelope for all query commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIRedirect reports that the queried code is retired.
type CLIRedirect struct {
	Code     string `json:"code"`
	Standard string `json:"standard"`
	Reason   string `json:"reason,omitempty"`
}

// CLILanguoid is a JSON-friendly languoid representation.
type CLILanguoid struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Endonym      string            `json:"endonym,omitempty"`
	Level        string            `json:"level,omitempty"`
	Scope        string            `json:"scope,omitempty"`
	Status       string            `json:"status,omitempty"`
	Endangerment string            `json:"endangerment,omitempty"`
	Codes        map[string]string `json:"codes"`
	SpeakerCount *int64            `json:"speaker_count,omitempty"`
	Latitude     *float64          `json:"latitude,omitempty"`
	Longitude    *float64          `json:"longitude,omitempty"`
	Parent       string            `json:"parent,omitempty"`
	Scripts      []string          `json:"scripts,omitempty"`
	Regions      []string          `json:"regions,omitempty"`
	NLLBCodes    []string          `json:"nllb_codes,omitempty"`
	Matched      string            `json:"matched_standard,omitempty"`
	Redirect     *CLIRedirect      `json:"redirect,omitempty"`
}

// CLILanguoidBrief is the compact form used in lists and trees.
type CLILanguoidBrief struct {
	ID    string `json:"id"`
	Code  string `json:"code,omitempty"`
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// CLIConversion is the result of a code conversion.
type CLIConversion struct {
	Input    string       `json:"input"`
	From     string       `json:"from,omitempty"`
	To       string       `json:"to"`
	Output   string       `json:"output"`
	Redirect *CLIRedirect `json:"redirect,omitempty"`
}

// CLIScript is a JSON-friendly script representation.
type CLIScript struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	FullName   string `json:"full_name,omitempty"`
	Historical string `json:"historical,omitempty"`
	Languoids  int    `json:"languoid_count"`
}

// CLIScriptUse is one languoid-script attachment with its flags.
type CLIScriptUse struct {
	Code            string `json:"code"`
	Canonical       string `json:"canonical,omitempty"`
	Historical      string `json:"historical,omitempty"`
	Religious       string `json:"religious,omitempty"`
	Transliteration string `json:"transliteration,omitempty"`
	Accessibility   string `json:"accessibility,omitempty"`
	Widespread      string `json:"widespread,omitempty"`
	Official        string `json:"official,omitempty"`
	Symbolic        string `json:"symbolic,omitempty"`
	Source          string `json:"source,omitempty"`
}

// CLIRegion is a JSON-friendly region representation.
type CLIRegion struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	OfficialName string `json:"official_name,omitempty"`
	Parent       string `json:"parent,omitempty"`
	Languoids    int    `json:"languoid_count"`
}

// CLIRegionUse is one languoid-region attachment.
type CLIRegionUse struct {
	Code         string `json:"code"`
	Official     string `json:"official,omitempty"`
	SpeakerCount *int64 `json:"speaker_count,omitempty"`
	Source       string `json:"source,omitempty"`
}

// CLITree is the tree command result: lineage from root plus direct children.
type CLITree struct {
	Lineage  []CLILanguoidBrief `json:"lineage"`
	Children []CLILanguoidBrief `json:"children,omitempty"`
}

// CLIConflict is a JSON-friendly conflict record.
type CLIConflict struct {
	EntityID       string            `json:"entity_id"`
	Field          string            `json:"field"`
	Values         map[string]string `json:"values"`
	Selected       string            `json:"selected"`
	SelectedSource string            `json:"selected_source"`
}

// CLIDangling is a JSON-friendly dropped reference.
type CLIDangling struct {
	EntityID string `json:"entity_id"`
	Field    string `json:"field"`
	Ref      string `json:"ref"`
}

// CLIReport is the build report.
type CLIReport struct {
	Conflicts []CLIConflict `json:"conflicts"`
	Dangling  []CLIDangling `json:"dangling"`
	Malformed int           `json:"malformed_records"`
}

// CLIStats mirrors glossa.Stats.
type CLIStats struct {
	Languoids  int `json:"languoids"`
	Languages  int `json:"languages"`
	Families   int `json:"families"`
	Dialects   int `json:"dialects"`
	Scripts    int `json:"scripts"`
	Regions    int `json:"regions"`
	Deprecated int `json:"deprecated_codes"`
	Conflicts  int `json:"conflicts"`
	Dangling   int `json:"dangling_refs"`
	Malformed  int `json:"malformed_records"`
}

// --- Converters ---

func toCLILanguoid(l *glossa.Languoid) CLILanguoid {
	out := CLILanguoid{
		ID:           l.ID,
		Name:         l.Name,
		Endonym:      l.Endonym,
		Level:        string(l.Level),
		Scope:        string(l.Scope),
		Status:       string(l.Status),
		Endangerment: string(l.Endangerment),
		Codes:        make(map[string]string, len(l.Codes)),
		SpeakerCount: l.SpeakerCount,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		NLLBCodes:    l.NLLBCodes(),
	}
	for std, code := range l.Codes {
		out.Codes[string(std)] = code
	}
	if p := l.Parent(); p != nil {
		out.Parent = p.ID
	}
	for _, u := range l.Scripts() {
		out.Scripts = append(out.Scripts, u.Code)
	}
	for _, u := range l.Regions() {
		out.Regions = append(out.Regions, u.Code)
	}
	return out
}

func toBrief(l *glossa.Languoid) CLILanguoidBrief {
	return CLILanguoidBrief{
		ID:    l.ID,
		Code:  bestCode(l),
		Name:  l.Name,
		Level: string(l.Level),
	}
}

// bestCode picks the most familiar code for display.
func bestCode(l *glossa.Languoid) string {
	for _, std := range []glossa.Standard{glossa.ISO6393, glossa.BCP47, glossa.Glottocode} {
		if code := l.Code(std); code != "" {
			return code
		}
	}
	return ""
}

func toCLIRedirect(r *glossa.Redirect) *CLIRedirect {
	if r == nil {
		return nil
	}
	return &CLIRedirect{Code: r.Code, Standard: string(r.Standard), Reason: r.Reason}
}

func toCLIScript(s *glossa.Script) CLIScript {
	return CLIScript{
		ID:         s.ID,
		Code:       s.Code,
		Name:       s.Name,
		FullName:   s.FullName,
		Historical: triLabel(s.Historical),
		Languoids:  len(s.Languoids()),
	}
}

func toCLIRegion(r *glossa.Region) CLIRegion {
	out := CLIRegion{
		ID:           r.ID,
		Code:         r.Code,
		Name:         r.Name,
		OfficialName: r.OfficialName,
		Languoids:    len(r.Languoids()),
	}
	if p := r.ParentRegion(); p != nil {
		out.Parent = p.Code
	}
	return out
}

func toCLIScriptUse(u glossa.ScriptUse) CLIScriptUse {
	return CLIScriptUse{
		Code:            u.Code,
		Canonical:       triLabel(u.Canonical),
		Historical:      triLabel(u.Historical),
		Religious:       triLabel(u.Religious),
		Transliteration: triLabel(u.Transliteration),
		Accessibility:   triLabel(u.Accessibility),
		Widespread:      triLabel(u.Widespread),
		Official:        triLabel(u.Official),
		Symbolic:        triLabel(u.Symbolic),
		Source:          u.Source,
	}
}

func toCLIRegionUse(u glossa.RegionUse) CLIRegionUse {
	return CLIRegionUse{
		Code:         u.Code,
		Official:     triLabel(u.Official),
		SpeakerCount: u.SpeakerCount,
		Source:       u.Source,
	}
}

// triLabel renders a tri-state flag, with unknown as "" so JSON omits it.
func triLabel(t glossa.TriState) string {
	if value, known := t.Bool(); known {
		if value {
			return "true"
		}
		return "false"
	}
	return ""
}
