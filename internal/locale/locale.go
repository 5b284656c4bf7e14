// Package locale holds the translation bundles and the persisted language preference.
package locale

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"path"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"dream_weaver/internal/apperr"
	"dream_weaver/internal/storage"
)

const (
	DefaultLocale = "en"
	SnapshotKey   = "dreamWeaverLocale"
)

//go:embed locales/*.yaml
var files embed.FS

type Bundle struct {
	snapshots    storage.Snapshots
	logger       *zap.Logger
	translations map[string]map[string]string
	fallback     string

	mu     sync.RWMutex
	locale string
}

// NewBundle parses the embedded translations. defaultLocale is used until a stored
// preference is loaded, and must be one of the embedded locales.
func NewBundle(snapshots storage.Snapshots, logger *zap.Logger, defaultLocale string) (*Bundle, error) {
	op := "locale.NewBundle"

	if logger == nil {
		logger = zap.NewNop()
	}

	translations, err := parseAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	if _, ok := translations[defaultLocale]; !ok {
		return nil, fmt.Errorf("%s: unsupported default locale %q", op, defaultLocale)
	}

	return &Bundle{
		snapshots:    snapshots,
		logger:       logger,
		translations: translations,
		fallback:     defaultLocale,
		locale:       defaultLocale,
	}, nil
}

func parseAll() (map[string]map[string]string, error) {
	entries, err := files.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read embedded locales: %w", err)
	}

	out := make(map[string]map[string]string, len(entries))
	for _, e := range entries {
		raw, err := files.ReadFile(path.Join("locales", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		var messages map[string]string
		if err := yaml.Unmarshal(raw, &messages); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		out[strings.TrimSuffix(e.Name(), ".yaml")] = messages
	}
	return out, nil
}

// Load restores the stored preference. An absent, corrupt or unsupported value leaves
// the default in place.
func (b *Bundle) Load(ctx context.Context) {
	op := "locale.Bundle.Load"

	if b.snapshots == nil {
		return
	}

	var stored string
	err := storage.LoadJSON(ctx, b.snapshots, SnapshotKey, &stored)
	if errors.Is(err, storage.ErrSnapshotNotFound) {
		return
	}
	if err != nil {
		b.logger.Warn("locale preference unreadable, using default", zap.String("op", op), zap.Error(err))
		return
	}
	if stored == "" {
		return
	}
	if _, ok := b.translations[stored]; !ok {
		b.logger.Warn("stored locale unsupported, using default", zap.String("op", op), zap.String("locale", stored))
		return
	}

	b.mu.Lock()
	b.locale = stored
	b.mu.Unlock()
}

func (b *Bundle) Locale() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.locale
}

// Supported lists the available locale codes in sorted order.
func (b *Bundle) Supported() []string {
	out := make([]string, 0, len(b.translations))
	for code := range b.translations {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// SetLocale switches the active locale and stores the preference. A failed write is
// logged; the switch still takes effect.
func (b *Bundle) SetLocale(ctx context.Context, locale string) error {
	op := "locale.Bundle.SetLocale"

	if _, ok := b.translations[locale]; !ok {
		return apperr.Validation(fmt.Sprintf("unsupported locale %q", locale))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.locale = locale
	if b.snapshots == nil {
		return nil
	}
	if err := storage.SaveJSON(ctx, b.snapshots, SnapshotKey, locale); err != nil {
		b.logger.Error("failed to persist locale preference", zap.String("op", op), zap.Error(err))
	}
	return nil
}

// T translates key in the active locale, falling back to the default locale and then
// to the key itself.
func (b *Bundle) T(key string) string {
	return b.TFor(b.Locale(), key)
}

func (b *Bundle) TFor(locale, key string) string {
	if msg, ok := b.translations[locale][key]; ok && msg != "" {
		return msg
	}
	if msg, ok := b.translations[b.fallback][key]; ok && msg != "" {
		return msg
	}
	return key
}

type PromptType string

const (
	PromptText  PromptType = "text"
	PromptImage PromptType = "image"
)

type Prompt struct {
	ID   string     `json:"id"`
	Text string     `json:"text"`
	Type PromptType `json:"type"`
}

var promptKeys = []struct {
	id  string
	key string
	typ PromptType
}{
	{"p1", "prompt_hiddenGarden", PromptText},
	{"p2", "prompt_dreamMap", PromptText},
	{"p3", "prompt_speakingAnimal", PromptText},
	{"p4", "prompt_emotionsAsColors", PromptText},
	{"p5", "prompt_forgottenLullaby", PromptText},
	{"p6", "prompt_stardustCreature", PromptImage},
	{"p7", "prompt_futuristicCity", PromptImage},
	{"p8", "prompt_readingNook", PromptImage},
}

// Prompts returns the inspiration prompts in the active locale.
func (b *Bundle) Prompts() []Prompt {
	out := make([]Prompt, 0, len(promptKeys))
	for _, p := range promptKeys {
		out = append(out, Prompt{ID: p.id, Text: b.T(p.key), Type: p.typ})
	}
	return out
}

func (b *Bundle) RandomPrompt() Prompt {
	prompts := b.Prompts()
	return prompts[rand.IntN(len(prompts))]
}
