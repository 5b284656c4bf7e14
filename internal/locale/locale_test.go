package locale

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dream_weaver/internal/apperr"
	"dream_weaver/internal/storage"
)

func openSnapshots(t *testing.T) *storage.SQLiteSnapshots {
	t.Helper()
	snaps, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "locale.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = snaps.Close() })
	return snaps
}

type brokenSnapshots struct {
	storage.Snapshots
}

func (brokenSnapshots) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("read refused")
}

func (brokenSnapshots) Put(context.Context, string, []byte) error {
	return errors.New("write refused")
}

func TestBundle_Translate(t *testing.T) {
	b, err := NewBundle(nil, nil, "")
	require.NoError(t, err)

	assert.Equal(t, "en", b.Locale())
	assert.Equal(t, "Dream Weaver", b.T("appName"))
	assert.Equal(t, "missing_key", b.T("missing_key"))
	assert.Equal(t, "Tejedor de Sueños", b.TFor("es", "appName"))
	assert.Equal(t, "Dream Weaver", b.TFor("fr", "appName"))
	assert.Equal(t, []string{"en", "es"}, b.Supported())
}

func TestBundle_LocalesShareKeys(t *testing.T) {
	translations, err := parseAll()
	require.NoError(t, err)

	for key := range translations["en"] {
		assert.Contains(t, translations["es"], key)
	}
	for key := range translations["es"] {
		assert.Contains(t, translations["en"], key)
	}
}

func TestNewBundle_UnsupportedDefault(t *testing.T) {
	_, err := NewBundle(nil, nil, "fr")
	assert.Error(t, err)
}

func TestBundle_PersistsPreference(t *testing.T) {
	snaps := openSnapshots(t)
	ctx := context.Background()

	b, err := NewBundle(snaps, nil, "en")
	require.NoError(t, err)
	require.NoError(t, b.SetLocale(ctx, "es"))
	assert.Equal(t, "Feliz", b.T("mood_Happy"))

	raw, err := snaps.Get(ctx, SnapshotKey)
	require.NoError(t, err)
	assert.JSONEq(t, `"es"`, string(raw))

	reloaded, err := NewBundle(snaps, nil, "en")
	require.NoError(t, err)
	reloaded.Load(ctx)
	assert.Equal(t, "es", reloaded.Locale())
}

func TestBundle_SetLocaleRejectsUnknown(t *testing.T) {
	b, err := NewBundle(nil, nil, "en")
	require.NoError(t, err)

	err = b.SetLocale(context.Background(), "xx")
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, "en", b.Locale())
}

func TestBundle_LoadIgnoresBadPreference(t *testing.T) {
	snaps := openSnapshots(t)
	ctx := context.Background()

	require.NoError(t, snaps.Put(ctx, SnapshotKey, []byte(`"klingon"`)))
	b, err := NewBundle(snaps, nil, "en")
	require.NoError(t, err)
	b.Load(ctx)
	assert.Equal(t, "en", b.Locale())

	require.NoError(t, snaps.Put(ctx, SnapshotKey, []byte(`{not json`)))
	b.Load(ctx)
	assert.Equal(t, "en", b.Locale())
}

func TestBundle_WriteFailureStillSwitches(t *testing.T) {
	b, err := NewBundle(brokenSnapshots{}, nil, "en")
	require.NoError(t, err)

	b.Load(context.Background())
	require.NoError(t, b.SetLocale(context.Background(), "es"))
	assert.Equal(t, "es", b.Locale())
}

func TestBundle_Prompts(t *testing.T) {
	b, err := NewBundle(nil, nil, "en")
	require.NoError(t, err)

	prompts := b.Prompts()
	require.Len(t, prompts, 8)

	images := 0
	for _, p := range prompts {
		assert.NotContains(t, p.Text, "prompt_", p.ID)
		if p.Type == PromptImage {
			images++
		}
	}
	assert.Equal(t, 3, images)

	random := b.RandomPrompt()
	assert.Contains(t, prompts, random)
}
