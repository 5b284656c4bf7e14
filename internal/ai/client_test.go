package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type call struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

type fakeGenerator struct {
	resp  *genai.GenerateContentResponse
	err   error
	calls []call
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls = append(f.calls, call{model: model, contents: contents, config: config})
	return f.resp, f.err
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts, Role: genai.RoleModel}}},
	}
}

func TestInterpret_TextAndImage(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(genai.NewPartFromText("Flying means freedom."))}
	var outcomes []string
	c := newClient(gen, nil,
		WithInstructions(func() Instructions { return Instructions{Interpreter: "You read dreams."} }),
		WithObserver(func(tool, outcome string) { outcomes = append(outcomes, tool+":"+outcome) }),
	)

	out, err := c.Interpret(context.Background(), "I was flying", "data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "Flying means freedom.", out)
	assert.Equal(t, []string{"dream_interpreter:ok"}, outcomes)

	require.Len(t, gen.calls, 1)
	got := gen.calls[0]
	assert.Equal(t, ModelImage, got.model)
	require.Len(t, got.contents, 1)
	parts := got.contents[0].Parts
	require.Len(t, parts, 2)
	require.NotNil(t, parts[0].InlineData)
	assert.Equal(t, "image/png", parts[0].InlineData.MIMEType)
	assert.Equal(t, []byte("hello"), parts[0].InlineData.Data)
	assert.Equal(t, "Analyze this dream:\nI was flying", parts[1].Text)

	require.NotNil(t, got.config.SystemInstruction)
	assert.Equal(t, "You read dreams.", got.config.SystemInstruction.Parts[0].Text)
	assert.Equal(t, float32(0.9), *got.config.Temperature)
	assert.Equal(t, float32(64), *got.config.TopK)
}

func TestInterpret_Failures(t *testing.T) {
	tests := []struct {
		name   string
		gen    *fakeGenerator
		text   string
		image  string
		reason Reason
	}{
		{"nothing to interpret", &fakeGenerator{}, "  ", "", ReasonProvideTextOrImage},
		{"forbidden", &fakeGenerator{err: genai.APIError{Code: http.StatusForbidden, Message: "denied"}}, "dream", "", ReasonPaidAPIKeyRequired},
		{"not found", &fakeGenerator{err: fmt.Errorf("wrapped: %w", genai.APIError{Code: http.StatusNotFound})}, "dream", "", ReasonPaidAPIKeyRequired},
		{"unauthorized", &fakeGenerator{err: genai.APIError{Code: http.StatusUnauthorized}}, "dream", "", ReasonPaidAPIKeyRequired},
		{"server error", &fakeGenerator{err: genai.APIError{Code: http.StatusInternalServerError, Message: "Requested entity was not found."}}, "dream", "", ReasonInterpretationFailed},
		{"transport error", &fakeGenerator{err: errors.New("connection reset")}, "dream", "", ReasonInterpretationFailed},
		{"empty reply", &fakeGenerator{resp: textResponse()}, "dream", "", ReasonNoTextContent},
		{"nil reply", &fakeGenerator{}, "dream", "", ReasonNoTextContent},
		{"bad image", &fakeGenerator{}, "", "not-a-data-url", ReasonInterpretationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(tt.gen, nil)
			_, err := c.Interpret(context.Background(), tt.text, tt.image)
			require.Error(t, err)
			assert.Equal(t, tt.reason, ReasonOf(err))
		})
	}
}

func TestNoAPIKey(t *testing.T) {
	c, err := NewClient(context.Background(), "", nil)
	require.NoError(t, err)

	_, err = c.Interpret(context.Background(), "dream", "")
	assert.Equal(t, ReasonNoAPIKey, ReasonOf(err))

	_, err = c.ContinueStory(context.Background(), "dream")
	assert.Equal(t, ReasonNoAPIKey, ReasonOf(err))

	_, err = c.Visualize(context.Background(), "moon, sea")
	assert.Equal(t, ReasonNoAPIKey, ReasonOf(err))
}

func TestContinueStory(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(
		&genai.Part{Text: "thinking...", Thought: true},
		genai.NewPartFromText("1. A door appears.\n2. The sea rises.\n3. You remember."),
	)}
	c := newClient(gen, nil)

	spark, err := c.ContinueStory(context.Background(), "I stood on the shore")
	require.NoError(t, err)
	assert.Equal(t, []string{"A door appears.", "The sea rises.", "You remember."}, spark.Suggestions)
	assert.NotContains(t, spark.Text, "thinking")

	require.Len(t, gen.calls, 1)
	assert.Equal(t, ModelTextComplex, gen.calls[0].model)
	assert.Nil(t, gen.calls[0].config.SystemInstruction)
	assert.Contains(t, gen.calls[0].contents[0].Parts[0].Text, "I stood on the shore")
}

func TestContinueStory_Failure(t *testing.T) {
	c := newClient(&fakeGenerator{err: errors.New("boom")}, nil)
	_, err := c.ContinueStory(context.Background(), "text")
	assert.Equal(t, ReasonStoryFailed, ReasonOf(err))
	assert.ErrorContains(t, err, "boom")
}

func TestVisualize(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(
		genai.NewPartFromText("Here is your image"),
		genai.NewPartFromBytes([]byte("hello"), "image/png"),
	)}
	c := newClient(gen, nil)

	url, err := c.Visualize(context.Background(), "moon, sea")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", url)
	assert.Equal(t, ModelImage, gen.calls[0].model)
}

func TestVisualize_NoImageData(t *testing.T) {
	c := newClient(&fakeGenerator{resp: textResponse(genai.NewPartFromText("sorry"))}, nil)
	_, err := c.Visualize(context.Background(), "moon")
	assert.Equal(t, ReasonNoImageData, ReasonOf(err))

	c = newClient(&fakeGenerator{err: genai.APIError{Code: http.StatusForbidden}}, nil)
	_, err = c.Visualize(context.Background(), "moon")
	assert.Equal(t, ReasonPaidAPIKeyRequired, ReasonOf(err))

	c = newClient(&fakeGenerator{err: errors.New("quota")}, nil)
	_, err = c.Visualize(context.Background(), "moon")
	assert.Equal(t, ReasonImageGenerationFailed, ReasonOf(err))
}

func TestReason_MessageKey(t *testing.T) {
	assert.Equal(t, "apiError_paidApiKeyRequired", ReasonPaidAPIKeyRequired.MessageKey())
	assert.Equal(t, Reason(""), ReasonOf(errors.New("other")))
}
