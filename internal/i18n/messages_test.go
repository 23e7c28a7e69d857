package i18n

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageSource(t *testing.T) {
	t.Parallel()

	source, err := NewMessageSource("en")
	require.NoError(t, err)

	t.Run("resolves message in requested locale", func(t *testing.T) {
		msg := source.Message("user.created", "tr", nil)
		require.Equal(t, "Kullanıcı başarıyla oluşturuldu", msg)
	})

	t.Run("substitutes placeholders", func(t *testing.T) {
		msg := source.Message("user.not.found", "en", map[string]string{"id": "abc-123"})
		require.Equal(t, "User with id abc-123 not found", msg)
	})

	t.Run("falls back to default locale for unsupported locale", func(t *testing.T) {
		msg := source.Message("user.created", "de", nil)
		require.Equal(t, "User created successfully", msg)
	})

	t.Run("returns the code when no catalog has it", func(t *testing.T) {
		msg := source.Message("user.totally.unknown", "en", nil)
		require.Equal(t, "user.totally.unknown", msg)
	})

	t.Run("reports supported locales", func(t *testing.T) {
		require.True(t, source.Supported("en"))
		require.True(t, source.Supported("tr"))
		require.False(t, source.Supported("fr"))
	})
}

func TestParseProperties(t *testing.T) {
	t.Parallel()

	parsed := parseProperties("# comment\n\na.b=hello world\n  c.d  =  spaced  \nmalformed line\n")

	require.Equal(t, "hello world", parsed["a.b"])
	require.Equal(t, "spaced", parsed["c.d"])
	require.NotContains(t, parsed, "malformed line")
}

func TestMessageSourceRejectsMissingDefaultCatalog(t *testing.T) {
	t.Parallel()

	_, err := NewMessageSource("xx")
	require.Error(t, err)
}
