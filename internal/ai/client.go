package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"dream_weaver/internal/usecases"
)

const (
	ModelText        = "gemini-3-flash-preview"
	ModelTextComplex = "gemini-3-pro-preview"
	ModelImage       = "gemini-3-pro-image-preview"
)

const (
	ToolInterpreter = "dream_interpreter"
	ToolStorySpark  = "story_spark"
	ToolVisualizer  = "ai_visualizer"
)

// Instructions are the system instructions for each tool, usually from the active locale.
type Instructions struct {
	Interpreter string
	StorySpark  string
	Visualizer  string
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	models       contentGenerator
	logger       *zap.Logger
	instructions func() Instructions
	observe      func(tool, outcome string)
}

type Option func(*Client)

func WithInstructions(fn func() Instructions) Option {
	return func(c *Client) {
		c.instructions = fn
	}
}

// WithObserver is called once per tool call with "ok" or the failure reason.
func WithObserver(fn func(tool, outcome string)) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// NewClient connects to the Gemini API. An empty apiKey gives a client whose every
// call fails with ReasonNoAPIKey.
func NewClient(ctx context.Context, apiKey string, logger *zap.Logger, opts ...Option) (*Client, error) {
	op := "ai.NewClient"

	if apiKey == "" {
		return newClient(nil, logger, opts...), nil
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: create genai client: %w", op, err)
	}
	return newClient(gc.Models, logger, opts...), nil
}

func newClient(models contentGenerator, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		models:       models,
		logger:       logger,
		instructions: func() Instructions { return Instructions{} },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func textConfig(instruction string) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.9),
		TopP:            genai.Ptr[float32](0.95),
		TopK:            genai.Ptr[float32](64),
		MaxOutputTokens: 1024,
	}
	if instruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}
	return cfg
}

// Interpret asks for an interpretation of a dream described by text, an image data URL, or both.
func (c *Client) Interpret(ctx context.Context, text, image string) (string, error) {
	op := "ai.Client.Interpret"

	text = strings.TrimSpace(text)
	if text == "" && image == "" {
		return "", c.fail(op, ToolInterpreter, &Error{Reason: ReasonProvideTextOrImage})
	}
	if c.models == nil {
		return "", c.fail(op, ToolInterpreter, &Error{Reason: ReasonNoAPIKey})
	}

	var parts []*genai.Part
	if image != "" {
		mimeType, data, err := usecases.ParseDataURL(image)
		if err != nil {
			return "", c.fail(op, ToolInterpreter, &Error{Reason: ReasonInterpretationFailed, Err: err})
		}
		parts = append(parts, genai.NewPartFromBytes(data, mimeType))
	}
	if text != "" {
		parts = append(parts, genai.NewPartFromText("Analyze this dream:\n"+text))
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := c.models.GenerateContent(ctx, ModelImage, contents, textConfig(c.instructions().Interpreter))
	if err != nil {
		return "", c.fail(op, ToolInterpreter, classify(err, ReasonInterpretationFailed))
	}

	out := responseText(resp)
	if out == "" {
		return "", c.fail(op, ToolInterpreter, &Error{Reason: ReasonNoTextContent})
	}
	c.succeed(ToolInterpreter)
	return out, nil
}

// StorySpark is a story-spark reply with its suggestions split out.
type StorySpark struct {
	Text        string   `json:"text"`
	Suggestions []string `json:"suggestions"`
}

// ContinueStory asks for three ways to continue an entry.
func (c *Client) ContinueStory(ctx context.Context, text string) (StorySpark, error) {
	op := "ai.Client.ContinueStory"

	text = strings.TrimSpace(text)
	if text == "" {
		return StorySpark{}, c.fail(op, ToolStorySpark, &Error{Reason: ReasonProvideTextOrImage})
	}
	if c.models == nil {
		return StorySpark{}, c.fail(op, ToolStorySpark, &Error{Reason: ReasonNoAPIKey})
	}

	prompt := fmt.Sprintf("Given the following entry, provide 3 creative suggestions for continuing the story or adding a new twist:\n\n%q", text)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.models.GenerateContent(ctx, ModelTextComplex, contents, textConfig(c.instructions().StorySpark))
	if err != nil {
		return StorySpark{}, c.fail(op, ToolStorySpark, classify(err, ReasonStoryFailed))
	}

	out := responseText(resp)
	if out == "" {
		return StorySpark{}, c.fail(op, ToolStorySpark, &Error{Reason: ReasonNoTextContent})
	}
	c.succeed(ToolStorySpark)
	return StorySpark{Text: out, Suggestions: usecases.ParseStorySparks(out)}, nil
}

// Visualize generates an image for the keywords and returns it as a data URL.
func (c *Client) Visualize(ctx context.Context, keywords string) (string, error) {
	op := "ai.Client.Visualize"

	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		return "", c.fail(op, ToolVisualizer, &Error{Reason: ReasonProvideTextOrImage})
	}
	if c.models == nil {
		return "", c.fail(op, ToolVisualizer, &Error{Reason: ReasonNoAPIKey})
	}

	prompt := fmt.Sprintf("Generate a unique, abstract, and aesthetically pleasing image based on these descriptive keywords: %q. "+
		"Focus on vivid colors, ethereal textures, and a dreamlike quality.", keywords)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	if instruction := c.instructions().Visualizer; instruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}

	resp, err := c.models.GenerateContent(ctx, ModelImage, contents, cfg)
	if err != nil {
		return "", c.fail(op, ToolVisualizer, classify(err, ReasonImageGenerationFailed))
	}

	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
					c.succeed(ToolVisualizer)
					return usecases.BuildDataURL(part.InlineData.MIMEType, part.InlineData.Data), nil
				}
			}
		}
	}
	return "", c.fail(op, ToolVisualizer, &Error{Reason: ReasonNoImageData})
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}

// classify maps an API failure onto a Reason using the status code only.
func classify(err error, fallback Reason) *Error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code = apiErrPtr.Code
	}

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return &Error{Reason: ReasonPaidAPIKeyRequired, Err: err}
	default:
		return &Error{Reason: fallback, Err: err}
	}
}

func (c *Client) fail(op, tool string, e *Error) error {
	c.logger.Warn("ai tool failed",
		zap.String("op", op),
		zap.String("tool", tool),
		zap.String("reason", string(e.Reason)),
		zap.Error(e.Err),
	)
	if c.observe != nil {
		c.observe(tool, string(e.Reason))
	}
	return e
}

func (c *Client) succeed(tool string) {
	if c.observe != nil {
		c.observe(tool, "ok")
	}
}
