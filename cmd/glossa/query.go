package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jward/glossa"
	"github.com/spf13/cobra"
)

// standards maps flag values to identifier standards.
var standards = map[string]glossa.Standard{
	"bcp_47":       glossa.BCP47,
	"iso_639_1":    glossa.ISO6391,
	"iso_639_2b":   glossa.ISO6392B,
	"iso_639_2t":   glossa.ISO6392T,
	"iso_639_3":    glossa.ISO6393,
	"iso_639_5":    glossa.ISO6395,
	"glottocode":   glossa.Glottocode,
	"wikidata_id":  glossa.WikidataID,
	"wikipedia_id": glossa.WikipediaID,
}

func parseStandard(s string) (glossa.Standard, error) {
	std, ok := standards[s]
	if !ok {
		names := make([]string, 0, len(standards))
		for name := range standards {
			names = append(names, name)
		}
		sort.Strings(names)
		return "", fmt.Errorf("unknown standard %q: must be one of %s", s, strings.Join(names, ", "))
	}
	return std, nil
}

// outputResult marshals a CLIResult to stdout in the selected format.
func outputResult(result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(result)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// propagates a nonzero exit.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	result := CLIResult{
		Command: command,
		Error:   err.Error(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
	return err
}

// --- get ---

var flagStandard string

var getCmd = &cobra.Command{
	Use:   "get <code>",
	Short: "Look up a languoid by code under a known standard",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().StringVar(&flagStandard, "standard", "bcp_47", "identifier standard of the code")
}

func runGet(cmd *cobra.Command, args []string) error {
	std, err := parseStandard(flagStandard)
	if err != nil {
		return outputError("get", err)
	}
	db, err := loadDatabase()
	if err != nil {
		return outputError("get", err)
	}
	l, redirect, err := db.Get(args[0], std)
	if err != nil {
		return outputError("get", err)
	}
	result := toCLILanguoid(l)
	result.Redirect = toCLIRedirect(redirect)
	return outputResult(CLIResult{Command: "get", Results: result})
}

// --- guess ---

var guessCmd = &cobra.Command{
	Use:   "guess <code>",
	Short: "Look up a languoid by code, trying standards from most to least specific",
	Args:  cobra.ExactArgs(1),
	RunE:  runGuess,
}

func runGuess(cmd *cobra.Command, args []string) error {
	db, err := loadDatabase()
	if err != nil {
		return outputError("guess", err)
	}
	l, std, redirect, err := db.Guess(args[0])
	if err != nil {
		return outputError("guess", err)
	}
	result := toCLILanguoid(l)
	result.Matched = string(std)
	result.Redirect = toCLIRedirect(redirect)
	return outputResult(CLIResult{Command: "guess", Results: result})
}

// --- convert ---

var flagFrom string

var convertCmd = &cobra.Command{
	Use:   "convert <code> <to-standard>",
	Short: "Convert a code between identifier standards",
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&flagFrom, "from", "", "source standard (default: guess)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	to, err := parseStandard(args[1])
	if err != nil {
		return outputError("convert", err)
	}
	db, err := loadDatabase()
	if err != nil {
		return outputError("convert", err)
	}

	var out string
	var redirect *glossa.Redirect
	if flagFrom == "" {
		out, redirect, err = db.ConvertAny(args[0], to)
	} else {
		var from glossa.Standard
		from, err = parseStandard(flagFrom)
		if err != nil {
			return outputError("convert", err)
		}
		out, redirect, err = db.Convert(args[0], from, to)
	}
	if err != nil {
		return outputError("convert", err)
	}
	return outputResult(CLIResult{Command: "convert", Results: CLIConversion{
		Input:    args[0],
		From:     flagFrom,
		To:       args[1],
		Output:   out,
		Redirect: toCLIRedirect(redirect),
	}})
}

// --- search ---

var (
	flagKind  string
	flagLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search entities by code or name",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&flagKind, "kind", "languoid", "entity kind: languoid|script|region")
	searchCmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	db, err := loadDatabase()
	if err != nil {
		return outputError("search", err)
	}
	switch flagKind {
	case "languoid":
		hits := db.Search(args[0])
		if flagLimit > 0 && len(hits) > flagLimit {
			hits = hits[:flagLimit]
		}
		out := make([]CLILanguoidBrief, len(hits))
		for i, l := range hits {
			out[i] = toBrief(l)
		}
		return outputResult(CLIResult{Command: "search", Results: out})
	case "script":
		hits := db.SearchScripts(args[0])
		if flagLimit > 0 && len(hits) > flagLimit {
			hits = hits[:flagLimit]
		}
		out := make([]CLIScript, len(hits))
		for i, s := range hits {
			out[i] = toCLIScript(s)
		}
		return outputResult(CLIResult{Command: "search", Results: out})
	case "region":
		hits := db.SearchRegions(args[0])
		if flagLimit > 0 && len(hits) > flagLimit {
			hits = hits[:flagLimit]
		}
		out := make([]CLIRegion, len(hits))
		for i, r := range hits {
			out[i] = toCLIRegion(r)
		}
		return outputResult(CLIResult{Command: "search", Results: out})
	}
	return outputError("search", fmt.Errorf("unknown kind %q: must be languoid, script, or region", flagKind))
}

// --- tree ---

var treeCmd = &cobra.Command{
	Use:   "tree <code>",
	Short: "Show a languoid's lineage and direct children",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

func runTree(cmd *cobra.Command, args []string) error {
	db, err := loadDatabase()
	if err != nil {
		return outputError("tree", err)
	}
	l, _, _, err := db.Guess(args[0])
	if err != nil {
		return outputError("tree", err)
	}
	tree := CLITree{}
	for _, a := range l.FamilyTree() {
		tree.Lineage = append(tree.Lineage, toBrief(a))
	}
	for _, c := range l.Children() {
		tree.Children = append(tree.Children, toBrief(c))
	}
	return outputResult(CLIResult{Command: "tree", Results: tree})
}

// --- descendants ---

var flagDescLimit int

var descendantsCmd = &cobra.Command{
	Use:   "descendants <code>",
	Short: "List the full subtree below a languoid",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescendants,
}

func init() {
	descendantsCmd.Flags().IntVar(&flagDescLimit, "limit", 100, "maximum results (0 for all)")
}

func runDescendants(cmd *cobra.Command, args []string) error {
	db, err := loadDatabase()
	if err != nil {
		return outputError("descendants", err)
	}
	l, _, _, err := db.Guess(args[0])
	if err != nil {
		return outputError("descendants", err)
	}
	var out []CLILanguoidBrief
	for d := range l.Descendants() {
		out = append(out, toBrief(d))
		if flagDescLimit > 0 && len(out) >= flagDescLimit {
			break
		}
	}
	return outputResult(CLIResult{Command: "descendants", Results: out})
}

// --- scripts ---

var scriptsCmd = &cobra.Command{
	Use:   "scripts [code]",
	Short: "List all scripts, or one languoid's script attachments",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScripts,
}

func runScripts(cmd *cobra.Command, args []string) error {
	db, err := loadDatabase()
	if err != nil {
		return outputError("scripts", err)
	}
	if len(args) == 0 {
		var out []CLIScript
		for s := range db.AllScripts() {
			out = append(out, toCLIScript(s))
		}
		return outputResult(CLIResult{Command: "scripts", Results: out})
	}
	l, _, _, err := db.Guess(args[0])
	if err != nil {
		return outputError("scripts", err)
	}
	var out []CLIScriptUse
	for _, u := range l.Scripts() {
		out = append(out, toCLIScriptUse(u))
	}
	return outputResult(CLIResult{Command: "scripts", Results: out})
}

// --- regions ---

var regionsCmd = &cobra.Command{
	Use:   "regions [code]",
	Short: "List all regions, or one languoid's region attachments",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRegions,
}

func runRegions(cmd *cobra.Command, args []string) error {
	db, err := loadDatabase()
	if err != nil {
		return outputError("regions", err)
	}
	if len(args) == 0 {
		var out []CLIRegion
		for r := range db.AllRegions() {
			out = append(out, toCLIRegion(r))
		}
		return outputResult(CLIResult{Command: "regions", Results: out})
	}
	l, _, _, err := db.Guess(args[0])
	if err != nil {
		return outputError("regions", err)
	}
	var out []CLIRegionUse
	for _, u := range l.Regions() {
		out = append(out, toCLIRegionUse(u))
	}
	return outputResult(CLIResult{Command: "regions", Results: out})
}

// --- report ---

var flagReportLimit int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the build report: conflicts, dropped references, skipped records",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().IntVar(&flagReportLimit, "limit", 50, "maximum conflicts and dangling refs shown (0 for all)")
}

func runReport(cmd *cobra.Command, args []string) error {
	db, err := loadDatabase()
	if err != nil {
		return outputError("report", err)
	}
	report := db.Report()

	out := CLIReport{Malformed: report.Malformed}
	for _, c := range report.Conflicts {
		if flagReportLimit > 0 && len(out.Conflicts) >= flagReportLimit {
			break
		}
		values := make(map[string]string, len(c.Values))
		for _, v := range c.Values {
			values[v.Source] = v.Value
		}
		out.Conflicts = append(out.Conflicts, CLIConflict{
			EntityID:       c.EntityID,
			Field:          c.Field,
			Values:         values,
			Selected:       c.Selected,
			SelectedSource: c.SelectedSource,
		})
	}
	for _, d := range report.Dangling {
		if flagReportLimit > 0 && len(out.Dangling) >= flagReportLimit {
			break
		}
		out.Dangling = append(out.Dangling, CLIDangling{
			EntityID: d.EntityID, Field: d.Field, Ref: d.Ref,
		})
	}
	return outputResult(CLIResult{Command: "report", Results: out})
}

// --- stats ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show graph size and build counters",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	db, err := loadDatabase()
	if err != nil {
		return outputError("stats", err)
	}
	st := db.Stats()
	return outputResult(CLIResult{Command: "stats", Results: CLIStats{
		Languoids:  st.Languoids,
		Languages:  st.Languages,
		Families:   st.Families,
		Dialects:   st.Dialects,
		Scripts:    st.Scripts,
		Regions:    st.Regions,
		Deprecated: st.Deprecated,
		Conflicts:  st.Conflicts,
		Dangling:   st.Dangling,
		Malformed:  st.Malformed,
	}})
}
