package cli

import (
	"context"
	"io"

	"github.com/johnqtcg/spoon/internal/config"
	"github.com/johnqtcg/spoon/internal/document"
	gh "github.com/johnqtcg/spoon/internal/github"
	"github.com/johnqtcg/spoon/internal/insight"
)

type fakeLoader struct {
	cfg     config.Config
	err     error
	gotArgs []string
}

func (f *fakeLoader) Load(args []string) (config.Config, error) {
	f.gotArgs = append([]string(nil), args...)
	if f.err != nil {
		return config.Config{}, f.err
	}
	return f.cfg, nil
}

type fakeAnalyzerFactory struct {
	analyzer *fakeAnalyzer
	err      error
}

func (f *fakeAnalyzerFactory) New(cfg config.Config) (Analyzer, error) {
	_ = cfg
	if f.err != nil {
		return nil, f.err
	}
	return f.analyzer, nil
}

type fakeAnalyzer struct {
	errByTarget map[string]error
	gotURLs     []string
	gotUploads  []string
	gotBodies   []string
}

func (f *fakeAnalyzer) AnalyzeRepository(_ context.Context, rawURL string) (insight.Result, error) {
	f.gotURLs = append(f.gotURLs, rawURL)
	if err := f.errByTarget[rawURL]; err != nil {
		return insight.Result{}, err
	}
	meta := gh.RepositoryMetadata{Name: "spoon", Owner: gh.Owner{Login: "octo"}}
	in := insight.Input{Kind: insight.KindRepository, Text: "readme", Metadata: &meta}
	return insight.Result{Input: in, Report: insight.Classify(in)}, nil
}

func (f *fakeAnalyzer) AnalyzeDocument(_ context.Context, up document.Upload) (insight.Result, error) {
	f.gotUploads = append(f.gotUploads, up.Name)
	body, err := io.ReadAll(up.Body)
	if err != nil {
		return insight.Result{}, err
	}
	f.gotBodies = append(f.gotBodies, string(body))
	if err := f.errByTarget[up.Name]; err != nil {
		return insight.Result{}, err
	}
	in := insight.Input{Kind: insight.KindDocument, Text: string(body), SourceName: up.Name}
	return insight.Result{Input: in, Report: insight.Classify(in)}, nil
}

type fakeOutputWriter struct {
	path        string
	errBySource map[string]error
	gotSources  []string
	gotMode     []Mode
	gotData     [][]byte
}

func (f *fakeOutputWriter) Write(cfg config.Config, mode Mode, res insight.Result, data []byte) (string, error) {
	_ = cfg
	source := res.Input.Source()
	f.gotSources = append(f.gotSources, source)
	f.gotMode = append(f.gotMode, mode)
	f.gotData = append(f.gotData, data)
	if err := f.errBySource[source]; err != nil {
		return "", err
	}
	if f.path == "" {
		return outputPathStdout, nil
	}
	return f.path, nil
}

type fakeInputReader struct {
	lines   []string
	err     error
	gotPath string
}

func (f *fakeInputReader) Read(path string, handle func(line string) error) error {
	f.gotPath = path
	if f.err != nil {
		return f.err
	}
	for _, line := range f.lines {
		if err := handle(line); err != nil {
			return err
		}
	}
	return nil
}
