package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
)

// formatLanguoidText formats a full languoid as labeled lines.
func formatLanguoidText(w io.Writer, l CLILanguoid) {
	fmt.Fprintf(w, "%s  %s\n", l.ID, l.Name)
	if l.Endonym != "" {
		fmt.Fprintf(w, "  Endonym: %s\n", l.Endonym)
	}
	if l.Level != "" {
		fmt.Fprintf(w, "  Level: %s\n", l.Level)
	}
	if l.Scope != "" {
		fmt.Fprintf(w, "  Scope: %s\n", l.Scope)
	}
	if l.Status != "" {
		fmt.Fprintf(w, "  Status: %s\n", l.Status)
	}
	if l.Endangerment != "" {
		fmt.Fprintf(w, "  Endangerment: %s\n", l.Endangerment)
	}
	if l.SpeakerCount != nil {
		fmt.Fprintf(w, "  Speakers: %d\n", *l.SpeakerCount)
	}
	if l.Parent != "" {
		fmt.Fprintf(w, "  Parent: %s\n", l.Parent)
	}

	stds := make([]string, 0, len(l.Codes))
	for std := range l.Codes {
		stds = append(stds, std)
	}
	sort.Strings(stds)
	for _, std := range stds {
		fmt.Fprintf(w, "  %s: %s\n", std, l.Codes[std])
	}

	if len(l.Scripts) > 0 {
		fmt.Fprintf(w, "  Scripts: %s\n", strings.Join(l.Scripts, " "))
	}
	if len(l.Regions) > 0 {
		fmt.Fprintf(w, "  Regions: %s\n", strings.Join(l.Regions, " "))
	}
	if len(l.NLLBCodes) > 0 {
		fmt.Fprintf(w, "  NLLB: %s\n", strings.Join(l.NLLBCodes, " "))
	}
	if l.Matched != "" {
		fmt.Fprintf(w, "  Matched standard: %s\n", l.Matched)
	}
	if l.Redirect != nil {
		fmt.Fprintf(w, "  Retired code: %s (%s", l.Redirect.Code, l.Redirect.Standard)
		if l.Redirect.Reason != "" {
			fmt.Fprintf(w, ", reason %s", l.Redirect.Reason)
		}
		fmt.Fprintln(w, ")")
	}
}

// formatBriefsText formats languoid lists as aligned columns.
func formatBriefsText(w io.Writer, briefs []CLILanguoidBrief) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tLEVEL")
	for _, b := range briefs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.Code, b.Name, b.Level)
	}
	tw.Flush()
}

func formatConversionText(w io.Writer, c CLIConversion) {
	fmt.Fprintln(w, c.Output)
	if c.Redirect != nil {
		fmt.Fprintf(os.Stderr, "Note: %s is retired under %s\n", c.Redirect.Code, c.Redirect.Standard)
	}
}

func formatScriptsText(w io.Writer, scripts []CLIScript) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tHISTORICAL\tLANGUOIDS")
	for _, s := range scripts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Code, s.Name, s.Historical, s.Languoids)
	}
	tw.Flush()
}

func formatScriptUsesText(w io.Writer, uses []CLIScriptUse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tCANONICAL\tHISTORICAL\tOFFICIAL\tWIDESPREAD\tSOURCE")
	for _, u := range uses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.Code, u.Canonical, u.Historical, u.Official, u.Widespread, u.Source)
	}
	tw.Flush()
}

func formatRegionsText(w io.Writer, regions []CLIRegion) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tPARENT\tLANGUOIDS")
	for _, r := range regions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", r.ID, r.Code, r.Name, r.Parent, r.Languoids)
	}
	tw.Flush()
}

func formatRegionUsesText(w io.Writer, uses []CLIRegionUse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tOFFICIAL\tSPEAKERS\tSOURCE")
	for _, u := range uses {
		speakers := ""
		if u.SpeakerCount != nil {
			speakers = fmt.Sprintf("%d", *u.SpeakerCount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Code, u.Official, speakers, u.Source)
	}
	tw.Flush()
}

// formatTreeText renders the lineage as an indented path, then the children.
func formatTreeText(w io.Writer, tree CLITree) {
	for depth, node := range tree.Lineage {
		label := node.Name
		if node.Code != "" {
			label = fmt.Sprintf("%s (%s)", node.Name, node.Code)
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), label)
	}
	if len(tree.Children) > 0 {
		depth := len(tree.Lineage)
		for _, c := range tree.Children {
			label := c.Name
			if c.Code != "" {
				label = fmt.Sprintf("%s (%s)", c.Name, c.Code)
			}
			fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), label)
		}
	}
}

func formatReportText(w io.Writer, report CLIReport) {
	fmt.Fprintln(w, "Build Report")
	fmt.Fprintln(w, "============")
	fmt.Fprintf(w, "Malformed records skipped: %d\n", report.Malformed)
	fmt.Fprintln(w)

	if len(report.Conflicts) > 0 {
		fmt.Fprintf(w, "Conflicts (%d shown):\n", len(report.Conflicts))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  ENTITY\tFIELD\tSELECTED\tSOURCE")
		for _, c := range report.Conflicts {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", c.EntityID, c.Field, c.Selected, c.SelectedSource)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	if len(report.Dangling) > 0 {
		fmt.Fprintf(w, "Dropped references (%d shown):\n", len(report.Dangling))
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  ENTITY\tFIELD\tREF")
		for _, d := range report.Dangling {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", d.EntityID, d.Field, d.Ref)
		}
		tw.Flush()
	}
}

func formatStatsText(w io.Writer, st CLIStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Languoids\t%d\n", st.Languoids)
	fmt.Fprintf(tw, "  languages\t%d\n", st.Languages)
	fmt.Fprintf(tw, "  families\t%d\n", st.Families)
	fmt.Fprintf(tw, "  dialects\t%d\n", st.Dialects)
	fmt.Fprintf(tw, "Scripts\t%d\n", st.Scripts)
	fmt.Fprintf(tw, "Regions\t%d\n", st.Regions)
	fmt.Fprintf(tw, "Deprecated codes\t%d\n", st.Deprecated)
	fmt.Fprintf(tw, "Conflicts\t%d\n", st.Conflicts)
	fmt.Fprintf(tw, "Dangling refs\t%d\n", st.Dangling)
	fmt.Fprintf(tw, "Malformed records\t%d\n", st.Malformed)
	tw.Flush()
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case CLILanguoid:
		formatLanguoidText(w, v)
	case []CLILanguoidBrief:
		formatBriefsText(w, v)
	case CLIConversion:
		formatConversionText(w, v)
	case []CLIScript:
		formatScriptsText(w, v)
	case []CLIScriptUse:
		formatScriptUsesText(w, v)
	case []CLIRegion:
		formatRegionsText(w, v)
	case []CLIRegionUse:
		formatRegionUsesText(w, v)
	case CLITree:
		formatTreeText(w, v)
	case CLIReport:
		formatReportText(w, v)
	case CLIStats:
		formatStatsText(w, v)
	case nil:
		// No output for empty results.
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
