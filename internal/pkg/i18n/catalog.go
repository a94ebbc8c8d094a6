// Package i18n resolves text keys used by sequences, dialogue and cues.
// A Catalog is loaded once and passed to each Game; there is no
// package-level instance.
package i18n

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-action/internal/errors"
)

// BaseLocale is used when a requested locale has no better match
const BaseLocale = "en-US"

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Catalog holds the messages of every loaded locale
type Catalog struct {
	locales  map[string]map[string]string
	tags     []language.Tag
	names    []string
	matcher  language.Matcher
	baseName string
}

// Load reads every <dir>/*.json and <dir>/*.yaml file in fsys. Each file
// carries one locale. The base locale must be present.
func Load(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeNotFound, "failed to read locale directory")
	}

	c := &Catalog{locales: make(map[string]map[string]string)}

	var files []string
	for _, entry := range entries {
		ext := strings.ToLower(path.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".json" && ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, name := range files {
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read locale file %s", name)
		}

		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, fmt.Sprintf("failed to parse locale file %s", name))
		}
		if err := c.add(name, file); err != nil {
			return nil, err
		}
	}

	if _, ok := c.locales[BaseLocale]; !ok {
		return nil, errors.NotFoundf("base locale %s is not defined", BaseLocale)
	}

	c.finish()
	return c, nil
}

// New builds a catalog from in-memory messages keyed by locale
func New(messages map[string]map[string]string) (*Catalog, error) {
	c := &Catalog{locales: make(map[string]map[string]string)}

	locales := make([]string, 0, len(messages))
	for locale := range messages {
		locales = append(locales, locale)
	}
	sort.Strings(locales)

	for _, locale := range locales {
		if err := c.add(locale, catalogFile{Locale: locale, Messages: messages[locale]}); err != nil {
			return nil, err
		}
	}
	if _, ok := c.locales[BaseLocale]; !ok {
		return nil, errors.NotFoundf("base locale %s is not defined", BaseLocale)
	}

	c.finish()
	return c, nil
}

func (c *Catalog) add(source string, file catalogFile) error {
	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return errors.InvalidArgumentf("catalog %s: locale is required", source)
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, fmt.Sprintf("catalog %s: bad locale %q", source, locale))
	}

	msgs, ok := c.locales[locale]
	if !ok {
		msgs = make(map[string]string)
		c.locales[locale] = msgs
		c.tags = append(c.tags, tag)
		c.names = append(c.names, locale)
	}
	for k, v := range file.Messages {
		if _, dup := msgs[k]; dup {
			return errors.AlreadyExistsf("catalog %s: duplicate key %q", source, k)
		}
		msgs[k] = v
	}
	return nil
}

// finish puts the base locale first so it wins ties and no-match cases
func (c *Catalog) finish() {
	for i, name := range c.names {
		if name == BaseLocale && i != 0 {
			c.names[0], c.names[i] = c.names[i], c.names[0]
			c.tags[0], c.tags[i] = c.tags[i], c.tags[0]
			break
		}
	}
	c.baseName = BaseLocale
	c.matcher = language.NewMatcher(c.tags)
}

// Locales lists the loaded locales, base locale first
func (c *Catalog) Locales() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Match returns the loaded locale that best serves the requested one
func (c *Catalog) Match(requested string) string {
	if _, ok := c.locales[requested]; ok {
		return requested
	}
	tag, err := language.Parse(requested)
	if err != nil {
		return c.baseName
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return c.baseName
	}
	return c.names[idx]
}

// Localizer resolves keys for one matched locale
func (c *Catalog) Localizer(requested string) *Localizer {
	return &Localizer{catalog: c, locale: c.Match(requested)}
}

// Localizer is a catalog bound to one locale
type Localizer struct {
	catalog *Catalog
	locale  string
}

// Locale is the matched locale name
func (l *Localizer) Locale() string {
	return l.locale
}

// T returns the message for key. Lookups fall back to the base locale and
// then to the key itself; a missing message is never an error.
func (l *Localizer) T(key string, args ...interface{}) string {
	msg, ok := l.catalog.locales[l.locale][key]
	if !ok {
		msg, ok = l.catalog.locales[l.catalog.baseName][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
