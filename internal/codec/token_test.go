package codec

import (
	"encoding/base64"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/project"
)

func newTestCodec() *Codec {
	return New(project.NewResolver(project.SiteContext{
		Host:       "en.wikipedia.org",
		ScriptPath: "/w",
	}))
}

func ids(n ...int64) []domain.PageKey {
	keys := make([]domain.PageKey, len(n))
	for i, id := range n {
		keys[i] = domain.PageID(id)
	}
	return keys
}

func TestCodec_RoundTripNormalizesLanguageCodes(t *testing.T) {
	c := newTestCodec()

	token, err := c.Encode("My List", "desc", map[string][]domain.PageKey{
		"en": ids(1, 2, 3),
		"fr": ids(4),
	})
	require.NoError(t, err)

	doc, err := c.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, &domain.CollectionToken{
		Name:        "My List",
		Description: "desc",
		TitlesByProject: map[string][]domain.PageKey{
			"https://en.wikipedia.org": ids(1, 2, 3),
			"https://fr.wikipedia.org": ids(4),
		},
	}, doc)
}

func TestCodec_TokenIsQuerySafe(t *testing.T) {
	c := newTestCodec()

	token, err := c.Encode("Ünïcödé & friends?", "a/b+c=d", map[string][]domain.PageKey{
		"https://ja.wikipedia.org": {domain.PageTitle("東京"), domain.PageTitle("C++")},
	})
	require.NoError(t, err)

	assert.Equal(t, token, url.QueryEscape(token))

	doc, err := c.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "Ünïcödé & friends?", doc.Name)
	assert.Equal(t, []domain.PageKey{domain.PageTitle("東京"), domain.PageTitle("C++")},
		doc.TitlesByProject["https://ja.wikipedia.org"])
}

func TestCodec_MixedKeysAndMergedProjects(t *testing.T) {
	c := newTestCodec()

	token, err := c.Encode("n", "", map[string][]domain.PageKey{
		"en":                       {domain.PageTitle("Moon"), domain.PageID(9)},
		"https://en.wikipedia.org": {domain.PageTitle("Moon"), domain.PageTitle("Sun")},
		"//de.wikipedia.org":       {domain.PageTitle("Mond")},
	})
	require.NoError(t, err)

	doc, err := c.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, map[string][]domain.PageKey{
		// "en" sorts before the full origin, so its pages come first
		"https://en.wikipedia.org": {domain.PageTitle("Moon"), domain.PageID(9), domain.PageTitle("Sun")},
		"//de.wikipedia.org":       {domain.PageTitle("Mond")},
	}, doc.TitlesByProject)
}

func TestCodec_EmptyList(t *testing.T) {
	c := newTestCodec()

	token, err := c.Encode("Empty", "", nil)
	require.NoError(t, err)

	doc, err := c.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "Empty", doc.Name)
	assert.Empty(t, doc.TitlesByProject)
}

func TestCodec_DecodeAcceptsNameOnlyAndListOnly(t *testing.T) {
	c := newTestCodec()

	doc, err := c.Decode(base64.RawURLEncoding.EncodeToString([]byte(`{"name":"Untitled"}`)))
	require.NoError(t, err)
	assert.Equal(t, "Untitled", doc.Name)
	assert.Empty(t, doc.TitlesByProject)

	doc, err = c.Decode(base64.RawURLEncoding.EncodeToString([]byte(`{"list":{}}`)))
	require.NoError(t, err)
	assert.Empty(t, doc.Name)
	assert.NotNil(t, doc.TitlesByProject)
}

func TestCodec_DecodeAcceptsStandardBase64(t *testing.T) {
	raw := `{"name":"x","description":"y","list":{"https://en.wikipedia.org":["Main Page?>"]}}`
	padded := base64.StdEncoding.EncodeToString([]byte(raw))

	doc, err := newTestCodec().Decode(padded)
	require.NoError(t, err)
	assert.Equal(t, []domain.PageKey{domain.PageTitle("Main Page?>")}, doc.TitlesByProject["https://en.wikipedia.org"])
}

func TestCodec_DecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not base64", token: "!!!"},
		{name: "not json", token: base64.RawURLEncoding.EncodeToString([]byte("hello"))},
		{name: "wrong shape", token: base64.RawURLEncoding.EncodeToString([]byte(`{"list":{"x":[1.5]}}`))},
		{name: "truncated", token: base64.RawURLEncoding.EncodeToString([]byte(`{"name":"a"`))},
		{name: "json null", token: base64.RawURLEncoding.EncodeToString([]byte(`null`))},
		{name: "empty object", token: base64.RawURLEncoding.EncodeToString([]byte(`{}`))},
		{name: "only description", token: base64.RawURLEncoding.EncodeToString([]byte(`{"description":"d"}`))},
	}

	c := newTestCodec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := c.Decode(tt.token)
			assert.Nil(t, doc)
			assert.True(t, errors.Is(err, domain.ErrDecode), "got %v", err)
		})
	}
}
