package greeting

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/unithon/tastemate/pkg/adapter"
	"github.com/unithon/tastemate/pkg/utils/logging"
	"google.golang.org/genai"
)

const promptPrefix = "Hello Gemini, my name is "

// UseCase sends a greeting to the model and prints the reply
type UseCase struct {
	gemini adapter.Gemini
	output io.Writer
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithOutput sets the writer that receives generated text
func WithOutput(w io.Writer) Option {
	return func(uc *UseCase) {
		uc.output = w
	}
}

func New(gemini adapter.Gemini, opts ...Option) *UseCase {
	uc := &UseCase{
		gemini: gemini,
		output: os.Stdout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// BuildPrompt interpolates name into the greeting template. name is used as is.
func BuildPrompt(name string) string {
	return promptPrefix + name
}

// Hello sends the greeting prompt for name, writes the generated text to the
// output and returns it. Model errors are returned to the caller.
func (u *UseCase) Hello(ctx context.Context, name string) (string, error) {
	prompt := BuildPrompt(name)
	logging.From(ctx).Debug("sending greeting", "prompt", prompt)

	resp, err := u.gemini.GenerateContent(ctx, genai.Text(prompt), nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate greeting", goerr.V("name", name))
	}

	text := adapter.ResponseText(resp)
	if _, err := fmt.Fprintln(u.output, text); err != nil {
		return "", goerr.Wrap(err, "failed to write greeting")
	}

	return text, nil
}
