package food

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unithon/tastemate/pkg/adapter"
	"github.com/unithon/tastemate/pkg/model"
	"github.com/unithon/tastemate/pkg/repository"
	"github.com/unithon/tastemate/pkg/usecase/profile"
	"github.com/unithon/tastemate/pkg/utils/logging"
	"google.golang.org/genai"
)

//go:embed prompt/analyze.md
var analyzePromptRaw string

var analyzePromptTmpl = template.Must(template.New("analyze").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(analyzePromptRaw))

const maxOutputTokens = 3000

var (
	ErrEmptyResponse = goerr.New("empty response from model")
	ErrInvalidJSON   = goerr.New("model response is not valid JSON")
	ErrNoArchive     = goerr.New("analysis archive is not configured")
)

// UseCase analyzes dishes for users
type UseCase struct {
	repo    repository.Repository
	gemini  adapter.Gemini
	profile *profile.UseCase
	archive adapter.Storage
	now     func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithArchive stores every raw model response in s
func WithArchive(s adapter.Storage) Option {
	return func(uc *UseCase) {
		uc.archive = s
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

func New(repo repository.Repository, gemini adapter.Gemini, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:    repo,
		gemini:  gemini,
		profile: profile.New(repo),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// AnalyzeInput identifies the dish to analyze and for whom
type AnalyzeInput struct {
	UserID model.UserID
	// FoodName is the dish name in its original language, not a translation
	FoodName string
	// SourceLanguage is the likely cuisine country code of the dish
	SourceLanguage string
	// TargetLanguage is the language the analysis is written in
	TargetLanguage string
}

func (x AnalyzeInput) Validate() error {
	if strings.TrimSpace(x.FoodName) == "" {
		return goerr.New("food name is required")
	}
	if x.TargetLanguage == "" {
		return goerr.New("target language is required")
	}
	return nil
}

// BuildPrompt renders the analysis prompt
func BuildPrompt(input AnalyzeInput, c model.DietaryConstraints) (string, error) {
	var buf bytes.Buffer
	if err := analyzePromptTmpl.Execute(&buf, map[string]any{
		"FoodName":       input.FoodName,
		"SourceLanguage": input.SourceLanguage,
		"TargetLanguage": input.TargetLanguage,
		"Countries":      model.Countries,
		"Allergens":      model.Allergens,
		"Allergies":      c.Allergies,
		"Religion":       c.Religion,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to execute analyze prompt template")
	}
	return strings.TrimSpace(buf.String()), nil
}

func responseSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	strs := &genai.Schema{Type: genai.TypeArray, Items: str}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"country": {
				Type:        genai.TypeString,
				Description: "cuisine country code or empty string",
			},
			"dishName":           str,
			"ingredients":        strs,
			"allergens":          strs,
			"summary":            str,
			"recommendations":    strs,
			"culturalBackground": str,
		},
		Required: model.AnalysisKeys,
	}
}

// Analyze asks the model about a dish, taking the user's dietary constraints
// into account, and returns the normalized analysis.
func (u *UseCase) Analyze(ctx context.Context, input AnalyzeInput) (*model.FoodAnalysis, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	logger := logging.From(ctx).With("food", input.FoodName)
	constraints := u.profile.Constraints(ctx, input.UserID)

	prompt, err := BuildPrompt(input, constraints)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.4),
		MaxOutputTokens:  maxOutputTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}

	started := u.now()
	resp, err := u.gemini.GenerateContent(ctx, genai.Text(prompt), config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to analyze food", goerr.V("food", input.FoodName))
	}
	logger.Debug("model call finished", "elapsed", u.now().Sub(started))

	text := adapter.ResponseText(resp)
	if text == "" {
		return nil, goerr.Wrap(ErrEmptyResponse, "no analysis generated",
			goerr.V("food", input.FoodName),
			goerr.V("finish_reason", adapter.FinishReason(resp)))
	}

	id := model.NewAnalysisID()
	if err := u.archiveResponse(ctx, id, text); err != nil {
		logger.Warn("failed to archive model response", "error", err, "analysis_id", id)
	}

	analysis, err := u.normalize(id, input.FoodName, text)
	if err != nil {
		return nil, err
	}

	logger.Info("food analyzed",
		"analysis_id", analysis.ID,
		"country", analysis.Country,
		"allergens", analysis.Allergens)

	// the ranking counts dishes of known countries only
	if analysis.Country != "" {
		if err := u.repo.IncrementFoodCounter(ctx, analysis.Country, analysis.FoodName, model.CounterSearch); err != nil {
			logger.Warn("failed to count food search", "error", err)
		}
	}

	return analysis, nil
}

// Restore rebuilds an analysis from the raw model response archived under
// id, without calling the model. foodName is the dish name the analysis was
// requested for.
func (u *UseCase) Restore(ctx context.Context, id model.AnalysisID, foodName string) (*model.FoodAnalysis, error) {
	if u.archive == nil {
		return nil, goerr.Wrap(ErrNoArchive, "cannot restore analysis", goerr.V("analysis_id", id))
	}
	if id == "" {
		return nil, goerr.New("analysis ID is required")
	}
	if strings.TrimSpace(foodName) == "" {
		return nil, goerr.New("food name is required")
	}

	r, err := u.archive.Get(ctx, archiveKey(id))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open archived response", goerr.V("analysis_id", id))
	}
	defer r.Close()

	text, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read archived response", goerr.V("analysis_id", id))
	}

	analysis, err := u.normalize(id, foodName, string(text))
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("food analysis restored",
		"analysis_id", analysis.ID,
		"food", analysis.FoodName)
	return analysis, nil
}

func (u *UseCase) normalize(id model.AnalysisID, foodName, text string) (*model.FoodAnalysis, error) {
	raw, err := parseJSON(text)
	if err != nil {
		return nil, err
	}

	analysis, err := model.NewFoodAnalysis(foodName, raw)
	if err != nil {
		return nil, err
	}
	analysis.ID = id
	analysis.AnalyzedAt = u.now()
	return analysis, nil
}

func archiveKey(id model.AnalysisID) string {
	return "analysis/" + string(id) + ".json"
}

func (u *UseCase) archiveResponse(ctx context.Context, id model.AnalysisID, text string) error {
	if u.archive == nil {
		return nil
	}

	w, err := u.archive.Put(ctx, archiveKey(id))
	if err != nil {
		return goerr.Wrap(err, "failed to open archive writer")
	}
	if _, err := w.Write([]byte(text)); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write archive")
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to commit archive")
	}
	return nil
}

// parseJSON decodes the model output, tolerating a surrounding code fence
func parseJSON(text string) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err == nil {
		return raw, nil
	}

	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "```") {
		t = strings.Trim(t, "`")
		if strings.HasPrefix(strings.ToLower(t), "json") {
			t = t[len("json"):]
		}
		t = strings.TrimSpace(t)
	}

	if err := json.Unmarshal([]byte(t), &raw); err != nil {
		return nil, goerr.Wrap(ErrInvalidJSON, "failed to parse analysis",
			goerr.V("text", text),
			goerr.V("cause", err.Error()))
	}
	return raw, nil
}
