// Package insight derives a cosmetic project report from free text and
// optional repository metadata by keyword matching.
package insight

import (
	"errors"
	"fmt"

	gh "github.com/johnqtcg/spoon/internal/github"
)

// ErrInvalidInput indicates an Input whose kind and payload disagree.
var ErrInvalidInput = errors.New("invalid analysis input")

// Kind discriminates the two input sources.
type Kind string

const (
	KindRepository Kind = "repository"
	KindDocument   Kind = "document"
)

// Input is the classifier input. Repository inputs carry Metadata, document
// inputs carry SourceName and an optional human-readable SourceSize.
type Input struct {
	Kind       Kind                   `json:"kind"`
	Text       string                 `json:"text"`
	Metadata   *gh.RepositoryMetadata `json:"metadata,omitempty"`
	SourceName string                 `json:"source_name,omitempty"`
	SourceSize string                 `json:"source_size,omitempty"`
}

// Validate checks the kind discriminant against the payload.
func (in Input) Validate() error {
	switch in.Kind {
	case KindRepository:
		if in.Metadata == nil {
			return fmt.Errorf("%w: repository input without metadata", ErrInvalidInput)
		}
		if in.SourceName != "" || in.SourceSize != "" {
			return fmt.Errorf("%w: repository input with document fields", ErrInvalidInput)
		}
	case KindDocument:
		if in.Metadata != nil {
			return fmt.Errorf("%w: document input with metadata", ErrInvalidInput)
		}
		if in.SourceName == "" {
			return fmt.Errorf("%w: document input without source name", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, in.Kind)
	}
	return nil
}

// Source names the input for display: owner/name or the uploaded file name.
func (in Input) Source() string {
	if in.Metadata != nil {
		if in.Metadata.Owner.Login != "" {
			return in.Metadata.Owner.Login + "/" + in.Metadata.Name
		}
		return in.Metadata.Name
	}
	return in.SourceName
}

type EffortLevel string

const (
	EffortWeekendHack     EffortLevel = "Weekend Hack"
	EffortSideProject     EffortLevel = "Side Project"
	EffortProductionReady EffortLevel = "Production Ready"
	EffortEnterpriseBeast EffortLevel = "Enterprise Beast"
)

type ReadmeQuality string

const (
	ReadmeNeedsCPR         ReadmeQuality = "Needs CPR"
	ReadmeAcceptable       ReadmeQuality = "Acceptable"
	ReadmeChefsKiss        ReadmeQuality = "Chef's Kiss"
	ReadmeDocumentationGod ReadmeQuality = "Documentation God"
)

type CodeQuality string

const (
	CodeNeedsRefactoring CodeQuality = "Needs Refactoring"
	CodeDecent           CodeQuality = "Decent"
	CodeClean            CodeQuality = "Clean"
	CodePristine         CodeQuality = "Pristine"
)

type ActivityLevel string

const (
	ActivityDormant    ActivityLevel = "Dormant"
	ActivityOccasional ActivityLevel = "Occasional"
	ActivityActive     ActivityLevel = "Active"
	ActivityVeryActive ActivityLevel = "Very Active"
)

type DeploymentStatus string

const (
	DeploymentLive     DeploymentStatus = "Live"
	DeploymentInactive DeploymentStatus = "Inactive"
	DeploymentUnknown  DeploymentStatus = "Unknown"
)

// Analytics is the metadata snapshot shown in a report. When Available is
// false (document input) every value is meaningless and renders as N/A.
type Analytics struct {
	Available    bool           `json:"available"`
	Stars        int            `json:"stars"`
	Forks        int            `json:"forks"`
	Contributors int            `json:"contributors"`
	Commits      int            `json:"commits"`
	OpenIssues   int            `json:"open_issues"`
	PullRequests int            `json:"pull_requests"`
	Releases     int            `json:"releases"`
	Languages    map[string]int `json:"languages,omitempty"`
	CodeSize     string         `json:"code_size,omitempty"`
	LastUpdated  string         `json:"last_updated,omitempty"`
}

// Report is built wholesale by one Classify call and never mutated after.
type Report struct {
	Summary          string           `json:"summary"`
	AIInsight        string           `json:"ai_insight"`
	Features         []string         `json:"features"`
	UseCases         []string         `json:"use_cases"`
	TechStack        []string         `json:"tech_stack"`
	Analytics        Analytics        `json:"analytics"`
	Challenges       []string         `json:"challenges"`
	Humor            string           `json:"humor"`
	EffortLevel      EffortLevel      `json:"effort_level"`
	ReadmeQuality    ReadmeQuality    `json:"readme_quality"`
	CodeQuality      CodeQuality      `json:"code_quality"`
	ActivityLevel    ActivityLevel    `json:"activity_level"`
	LiveDemo         string           `json:"live_demo,omitempty"`
	DeploymentStatus DeploymentStatus `json:"deployment_status"`
}

// Result pairs a report with the input it was derived from.
type Result struct {
	Input  Input  `json:"input"`
	Report Report `json:"report"`
}
