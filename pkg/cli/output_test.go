package cli

import (
	"bytes"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/unithon/tastemate/pkg/model"
)

func TestRender(t *testing.T) {
	profile := model.UserProfile{"displayName": "Chris", "currentCountry": "ES"}

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		gt.NoError(t, render(buf, "json", profile))
		gt.S(t, buf.String()).Contains(`"displayName": "Chris"`)
	})

	t.Run("yaml", func(t *testing.T) {
		buf := &bytes.Buffer{}
		gt.NoError(t, render(buf, "yaml", profile))
		gt.S(t, buf.String()).Contains("displayName: Chris")
	})

	t.Run("nil is null", func(t *testing.T) {
		buf := &bytes.Buffer{}
		gt.NoError(t, render(buf, "json", nil))
		gt.Equal(t, buf.String(), "null\n")
	})

	t.Run("unknown format", func(t *testing.T) {
		gt.Error(t, render(&bytes.Buffer{}, "xml", profile))
	})
}

func TestCredentialOptions(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		cfg := &config{}
		opts, project, err := cfg.credentialOptions()
		gt.NoError(t, err)
		gt.A(t, opts).Length(0)
		gt.Equal(t, project, "")
	})

	t.Run("inline JSON", func(t *testing.T) {
		cfg := &config{credentials: `{"type":"service_account","project_id":"unithon-test"}`}
		opts, project, err := cfg.credentialOptions()
		gt.NoError(t, err)
		gt.A(t, opts).Length(1)
		gt.Equal(t, project, "unithon-test")
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := &config{credentials: "/nonexistent/service-account.json"}
		_, _, err := cfg.credentialOptions()
		gt.Error(t, err)
	})
}

func TestNewRepositoryUsesServiceAccountProject(t *testing.T) {
	cfg := &config{
		database:    "(default)",
		credentials: `{"type":"service_account","project_id":"unithon-test"}`,
	}
	repo, err := cfg.newRepository()
	gt.NoError(t, err)
	gt.V(t, repo).NotNil()

	cfg.database = ""
	_, err = cfg.newRepository()
	gt.Error(t, err)
}
