package translate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slanglate/slanglate/internal/quota"
	"github.com/slanglate/slanglate/internal/translate"
)

type stubProvider struct {
	result string
	err    error
	calls  int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Translate(_ context.Context, _ translate.Request) (string, error) {
	p.calls++
	return p.result, p.err
}

func TestService_Translate(t *testing.T) {
	provider := &stubProvider{result: "that outfit is really good"}
	svc := translate.NewService(translate.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	result, err := svc.Translate(context.Background(), translate.Request{
		Text: "that fit is fire",
		Mode: quota.ModeGenZToEnglish,
	})
	require.NoError(t, err)

	assert.Equal(t, "that outfit is really good", result.TranslatedText)
	assert.Equal(t, "that fit is fire", result.OriginalText)
	assert.Equal(t, quota.ModeGenZToEnglish, result.Mode)
	assert.Equal(t, "stub", result.Provider)
}

func TestService_Translate_EmptyText(t *testing.T) {
	provider := &stubProvider{}
	svc := translate.NewService(translate.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := svc.Translate(context.Background(), translate.Request{
			Text: text,
			Mode: quota.ModeGenZToEnglish,
		})
		assert.ErrorIs(t, err, translate.ErrEmptyText)
	}
	assert.Equal(t, 0, provider.calls, "invalid input never reaches the provider")
}

func TestService_Translate_TextTooLong(t *testing.T) {
	provider := &stubProvider{}
	svc := translate.NewService(translate.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	_, err := svc.Translate(context.Background(), translate.Request{
		Text: strings.Repeat("a", translate.MaxTextLength+1),
		Mode: quota.ModeEnglishToGenZ,
	})
	assert.ErrorIs(t, err, translate.ErrTextTooLong)
	assert.Equal(t, 0, provider.calls)
}

func TestService_Translate_MaxLengthAccepted(t *testing.T) {
	provider := &stubProvider{result: "ok"}
	svc := translate.NewService(translate.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	_, err := svc.Translate(context.Background(), translate.Request{
		Text: strings.Repeat("a", translate.MaxTextLength),
		Mode: quota.ModeEnglishToGenZ,
	})
	assert.NoError(t, err)
}

func TestService_Translate_ProviderFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("upstream exploded")}
	svc := translate.NewService(translate.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
	})

	_, err := svc.Translate(context.Background(), translate.Request{
		Text: "hello",
		Mode: quota.ModeGenZToEnglish,
	})
	assert.ErrorIs(t, err, translate.ErrProviderFailure)
	assert.Contains(t, err.Error(), "upstream exploded")
}
