// Package locale holds the translated messages returned to HTTP clients.
package locale

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/go-quickevent/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

// Catalog is the set of embedded translations. It is read-only once built
// and safe for concurrent use.
type Catalog struct {
	bundle    *i18n.Bundle
	languages []string
	matcher   language.Matcher
	fallback  string
}

// NewCatalog loads every embedded locale file. fallback is used when a
// client accepts none of the available languages.
func NewCatalog(fallback string) *Catalog {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	c := &Catalog{bundle: bundle, fallback: fallback}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return c
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		c.languages = append(c.languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	tags := make([]language.Tag, 0, len(c.languages)+1)
	tags = append(tags, language.Make(fallback))
	for _, l := range c.languages {
		tags = append(tags, language.Make(l))
	}
	c.matcher = language.NewMatcher(tags)
	return c
}

// Languages returns the codes of the loaded locales.
func (c *Catalog) Languages() []string {
	return c.languages
}

// Match picks the best loaded language for an Accept-Language header value.
func (c *Catalog) Match(acceptLanguage string) string {
	if c.matcher == nil || acceptLanguage == "" {
		return c.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.fallback
	}
	tag, _, _ := c.matcher.Match(tags...)
	base, _ := tag.Base()
	return base.String()
}

// Translator renders messages in one language.
type Translator struct {
	Lang      string
	localizer *i18n.Localizer
}

// For returns a translator for the best match of acceptLanguage.
func (c *Catalog) For(acceptLanguage string) *Translator {
	lang := c.Match(acceptLanguage)
	return &Translator{
		Lang:      lang,
		localizer: i18n.NewLocalizer(c.bundle, lang, c.fallback),
	}
}

// Msg translates key, filling template fields from data. The key itself is
// returned when no translation exists.
func (t *Translator) Msg(key string, data map[string]any) string {
	if t == nil || t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}
