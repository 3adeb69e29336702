// Package report exports insight reports as Markdown and reads them back.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/johnqtcg/spoon/internal/insight"
)

// FileName is the download name of an exported report.
const FileName = "project-insights.md"

const (
	title = "Project Insights Report"
	na    = "N/A"
	none  = "None"

	sectionSummary    = "Summary"
	sectionFeatures   = "Features"
	sectionUseCases   = "Use Cases"
	sectionTechStack  = "Tech Stack"
	sectionAnalytics  = "Analytics"
	sectionChallenges = "Challenges"
	sectionTake       = "Spoon's Take"
	sectionAssessment = "Assessment"
)

// sectionOrder is the fixed order of level-two headings.
var sectionOrder = []string{
	sectionSummary,
	sectionFeatures,
	sectionUseCases,
	sectionTechStack,
	sectionAnalytics,
	sectionChallenges,
	sectionTake,
	sectionAssessment,
}

const (
	keyStars        = "Stars"
	keyForks        = "Forks"
	keyContributors = "Contributors"
	keyCommits      = "Commits"
	keyOpenIssues   = "Open Issues"
	keyPullRequests = "Pull Requests"
	keyReleases     = "Releases"
	keyLanguages    = "Languages"
	keyCodeSize     = "Code Size"
	keyLastUpdated  = "Last Updated"

	keyEffort     = "Effort Level"
	keyReadme     = "README Quality"
	keyCode       = "Code Quality"
	keyActivity   = "Activity Level"
	keyDeployment = "Deployment Status"
	keyLiveDemo   = "Live Demo"
)

type frontMatter struct {
	Kind             string `yaml:"kind"`
	Source           string `yaml:"source"`
	SourceSize       string `yaml:"source_size,omitempty"`
	AIInsight        string `yaml:"ai_insight"`
	LiveDemo         string `yaml:"live_demo"`
	DeploymentStatus string `yaml:"deployment_status"`
}

// Render serializes a result as Markdown with YAML front matter.
func Render(res insight.Result) ([]byte, error) {
	r := res.Report
	fm, err := yaml.Marshal(frontMatter{
		Kind:             string(res.Input.Kind),
		Source:           res.Input.Source(),
		SourceSize:       res.Input.SourceSize,
		AIInsight:        r.AIInsight,
		LiveDemo:         r.LiveDemo,
		DeploymentStatus: string(r.DeploymentStatus),
	})
	if err != nil {
		return nil, fmt.Errorf("render front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n", title)

	writeHeading(&b, sectionSummary)
	b.WriteString(r.Summary)
	b.WriteString("\n")

	writeHeading(&b, sectionFeatures)
	writeBullets(&b, r.Features)

	writeHeading(&b, sectionUseCases)
	writeBullets(&b, r.UseCases)

	writeHeading(&b, sectionTechStack)
	writeBullets(&b, r.TechStack)

	writeHeading(&b, sectionAnalytics)
	writeAnalytics(&b, r.Analytics)

	writeHeading(&b, sectionChallenges)
	writeBullets(&b, r.Challenges)

	writeHeading(&b, sectionTake)
	fmt.Fprintf(&b, "> \"%s\"\n", r.Humor)

	writeHeading(&b, sectionAssessment)
	writePair(&b, keyEffort, string(r.EffortLevel))
	writePair(&b, keyReadme, string(r.ReadmeQuality))
	writePair(&b, keyCode, string(r.CodeQuality))
	writePair(&b, keyActivity, string(r.ActivityLevel))
	writePair(&b, keyDeployment, string(r.DeploymentStatus))
	writePair(&b, keyLiveDemo, orNA(r.LiveDemo))

	return []byte(b.String()), nil
}

func writeHeading(b *strings.Builder, name string) {
	fmt.Fprintf(b, "\n## %s\n\n", name)
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func writePair(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "- %s: %s\n", key, value)
}

func writeAnalytics(b *strings.Builder, a insight.Analytics) {
	num := func(v int) string {
		if !a.Available {
			return na
		}
		return strconv.Itoa(v)
	}
	str := func(v string) string {
		if !a.Available {
			return na
		}
		return orNA(v)
	}

	writePair(b, keyStars, num(a.Stars))
	writePair(b, keyForks, num(a.Forks))
	writePair(b, keyContributors, num(a.Contributors))
	writePair(b, keyCommits, num(a.Commits))
	writePair(b, keyOpenIssues, num(a.OpenIssues))
	writePair(b, keyPullRequests, num(a.PullRequests))
	writePair(b, keyReleases, num(a.Releases))

	langs := na
	if a.Available {
		langs = formatLanguages(a.Languages)
	}
	writePair(b, keyLanguages, langs)
	writePair(b, keyCodeSize, str(a.CodeSize))
	writePair(b, keyLastUpdated, str(a.LastUpdated))
}

// formatLanguages renders "Go (9000), Shell (120)", largest first.
func formatLanguages(langs map[string]int) string {
	if len(langs) == 0 {
		return none
	}
	names := make([]string, 0, len(langs))
	for name := range langs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if langs[names[i]] != langs[names[j]] {
			return langs[names[i]] > langs[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (%d)", name, langs[name]))
	}
	return strings.Join(parts, ", ")
}

func orNA(v string) string {
	if v == "" {
		return na
	}
	return v
}
