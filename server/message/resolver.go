package message

import (
	"sort"
	"strings"

	"github.com/sandertv/gophertunnel/minecraft/text"
)

// Source provides raw message templates. It is satisfied by *config.Provider.
type Source interface {
	String(key string, def string) string
}

// Placeholders maps placeholder names to values. A placeholder is written as
// {name} in a template.
type Placeholders map[string]string

// Resolver turns message keys into formatted text. Unqualified keys such as
// "home-created" are read below "messages."; keys containing a dot are read as
// is. When the Source has no template the Resolver falls back to its defaults
// and finally to a visible "Missing message" notice.
type Resolver struct {
	src      Source
	defaults map[string]string
}

// NewResolver returns a Resolver reading templates from src.
func NewResolver(src Source, defaults map[string]string) *Resolver {
	if defaults == nil {
		defaults = map[string]string{}
	}
	return &Resolver{src: src, defaults: defaults}
}

// Template returns the unformatted template for key.
func (r *Resolver) Template(key string) string {
	if r.src != nil {
		if tmpl := r.src.String(path(key), ""); tmpl != "" {
			return tmpl
		}
	}
	if tmpl, ok := r.defaults[key]; ok {
		return tmpl
	}
	return "<red>Missing message: " + key + "</red>"
}

// Raw returns the template for key with placeholders substituted. Colour tags
// are left in place.
func (r *Resolver) Raw(key string, placeholders Placeholders) string {
	return Substitute(r.Template(key), placeholders)
}

// Resolve returns the message for key with placeholders substituted and colour
// tags converted to Minecraft formatting codes.
func (r *Resolver) Resolve(key string, placeholders Placeholders) string {
	return Format(r.Raw(key, placeholders))
}

// Substitute replaces every {name} in tmpl with its value in placeholders.
// Unknown placeholders are left untouched.
func Substitute(tmpl string, placeholders Placeholders) string {
	if len(placeholders) == 0 {
		return tmpl
	}
	names := make([]string, 0, len(placeholders))
	for name := range placeholders {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([]string, 0, len(names)*2)
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", placeholders[name])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var tagAliases = strings.NewReplacer(
	"<gray>", "<grey>", "</gray>", "</grey>",
	"<dark_gray>", "<dark-grey>", "</dark_gray>", "</dark-grey>",
	"<dark_grey>", "<dark-grey>", "</dark_grey>", "</dark-grey>",
	"<dark_red>", "<dark-red>", "</dark_red>", "</dark-red>",
	"<dark_green>", "<dark-green>", "</dark_green>", "</dark-green>",
	"<dark_aqua>", "<dark-aqua>", "</dark_aqua>", "</dark-aqua>",
	"<dark_blue>", "<dark-blue>", "</dark_blue>", "</dark-blue>",
	"<dark_purple>", "<dark-purple>", "</dark_purple>", "</dark-purple>",
	"<light_purple>", "<purple>", "</light_purple>", "</purple>",
	"<bold>", "<b>", "</bold>", "</b>",
	"<italic>", "<i>", "</italic>", "</i>",
)

// Format converts colour tags to Minecraft formatting codes. Both the
// gophertunnel tag names and their underscore spellings are accepted.
func Format(s string) string {
	return text.Colourf("%s", tagAliases.Replace(s))
}

func path(key string) string {
	if strings.Contains(key, ".") {
		return key
	}
	return "messages." + key
}
