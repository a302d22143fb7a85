package cli

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unithon/tastemate/pkg/adapter"
	"github.com/unithon/tastemate/pkg/repository"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// config holds configuration values
type config struct {
	// Repository
	project     string
	database    string
	credentials string

	// Adapters
	geminiAPIKey   string
	geminiModel    string
	geminiProject  string
	geminiLocation string

	archiveBucket string
	archivePrefix string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID of Firestore (detected from credentials if empty)",
			Sources:     cli.EnvVars("FIREBASE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "credentials",
			Usage:       "Service account JSON or path to it (application default credentials if empty)",
			Sources:     cli.EnvVars("FIREBASE_CREDENTIALS"),
			Destination: &cfg.credentials,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-api-key",
			Usage:       "Gemini API key",
			Sources:     cli.EnvVars("GOOGLE_API_KEY"),
			Destination: &cfg.geminiAPIKey,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name",
			Value:       adapter.DefaultGenerativeModel,
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID to use Gemini on Vertex AI instead of API key",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini on Vertex AI",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
	}
}

// archiveFlags returns flags for raw response archiving
func archiveFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket to keep raw model responses (disabled if empty)",
			Sources:     cli.EnvVars("TASTEMATE_ARCHIVE_BUCKET"),
			Destination: &cfg.archiveBucket,
		},
		&cli.StringFlag{
			Name:        "archive-prefix",
			Usage:       "Object name prefix in the archive bucket",
			Sources:     cli.EnvVars("TASTEMATE_ARCHIVE_PREFIX"),
			Destination: &cfg.archivePrefix,
		},
	}
}

// credentialOptions resolves the credentials flag, which holds either a
// service account JSON or a path to one. It also returns the project ID
// written in the service account.
func (cfg *config) credentialOptions() ([]option.ClientOption, string, error) {
	cred := strings.TrimSpace(cfg.credentials)
	if cred == "" {
		return nil, "", nil
	}

	var data []byte
	if strings.HasPrefix(cred, "{") {
		data = []byte(cred)
	} else {
		raw, err := os.ReadFile(cred)
		if err != nil {
			return nil, "", goerr.Wrap(err, "failed to read credentials file", goerr.V("path", cred))
		}
		data = raw
	}

	var sa struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, "", goerr.Wrap(err, "failed to parse credentials")
	}

	return []option.ClientOption{option.WithCredentialsJSON(data)}, sa.ProjectID, nil
}

// newRepository creates a new repository instance. Project ID precedence is
// the flag/env value, then the service account's project_id, then detection.
func (cfg *config) newRepository() (*repository.Firestore, error) {
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	opts, saProject, err := cfg.credentialOptions()
	if err != nil {
		return nil, err
	}

	project := cfg.project
	if project == "" {
		project = saProject
	}

	repo, err := repository.New(project, cfg.database, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newGemini creates a new Gemini adapter instance. A missing API key is
// reported when the model is called.
func (cfg *config) newGemini() adapter.Gemini {
	opts := []adapter.GeminiOption{
		adapter.WithGenerativeModel(cfg.geminiModel),
	}
	if cfg.geminiProject != "" {
		opts = append(opts, adapter.WithVertexAI(cfg.geminiProject, cfg.geminiLocation))
	}
	return adapter.NewGemini(cfg.geminiAPIKey, opts...)
}

// newStorage creates the archive Storage, or nil when no bucket is configured
func (cfg *config) newStorage(ctx context.Context) (adapter.Storage, error) {
	if cfg.archiveBucket == "" {
		return nil, nil
	}

	storage, err := adapter.NewStorage(ctx, cfg.archiveBucket, cfg.archivePrefix)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}
