package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const validYAML = `
server:
  port: 8080
studio:
  app_id: casa-ink-test
  timezone: America/Sao_Paulo
  artists: [Jhully, Aryan]
  services: [Tatuagem, Piercing]
  payment_methods: [Pix, Dinheiro]
  default_service: Tatuagem
  default_payment: Pix
session:
  ttl: 4h
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	assert.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "casa-ink-test", cfg.Studio.AppID)
	assert.Equal(t, []string{"Jhully", "Aryan"}, cfg.Studio.Artists)

	ttl, err := cfg.Session.Duration()
	assert.NoError(t, err)
	assert.Equal(t, 4*time.Hour, ttl)

	loc, err := cfg.Studio.Location()
	assert.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())
}

func TestLoad_DefaultTTL(t *testing.T) {
	var s SessionConfig
	ttl, err := s.Duration()
	assert.NoError(t, err)
	assert.Equal(t, 12*time.Hour, ttl)
}

func TestLoad_RejectsBadCatalogs(t *testing.T) {
	cases := map[string]string{
		"missing app id": `
studio:
  artists: [Jhully]
  services: [Tatuagem]
  payment_methods: [Pix]
`,
		"empty roster": `
studio:
  app_id: x
  services: [Tatuagem]
  payment_methods: [Pix]
`,
		"default outside catalog": `
studio:
  app_id: x
  artists: [Jhully]
  services: [Tatuagem]
  payment_methods: [Pix]
  default_service: Barba
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestStudioCatalogLookups(t *testing.T) {
	s := StudioConfig{
		Artists:        []string{"Jhully"},
		Services:       []string{"Tatuagem"},
		PaymentMethods: []string{"Pix"},
	}
	assert.True(t, s.HasArtist("Jhully"))
	assert.False(t, s.HasArtist("Banksy"))
	assert.True(t, s.HasService("Tatuagem"))
	assert.False(t, s.HasPaymentMethod("Cheque"))
}
