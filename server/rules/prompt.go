package rules

import (
	"strconv"
	"strings"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/player/form"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/homes/server/message"
)

// Rules returns the configured rules, skipping entries without text.
func (p *Plugin) Rules() []Rule {
	var rules []Rule
	if err := p.conf.Unmarshal(KeyRules, &rules); err != nil {
		p.log.Warn("Decode rules.", "error", err)
		return nil
	}
	out := rules[:0]
	for _, r := range rules {
		if strings.TrimSpace(r.Text) != "" {
			out = append(out, r)
		}
	}
	return out
}

// Lines returns the rules formatted with rule-format and numbered from one.
func (p *Plugin) Lines() []string {
	format := p.conf.String(KeyRuleFormat, DefaultRuleFormat)
	rules := p.Rules()
	lines := make([]string, len(rules))
	for i, r := range rules {
		lines[i] = message.Format(message.Substitute(format, message.Placeholders{
			"num":  strconv.Itoa(i + 1),
			"text": r.Text,
		}))
	}
	return lines
}

func (p *Plugin) body() string {
	var b strings.Builder
	if desc := p.conf.String(KeyDescription, ""); desc != "" {
		b.WriteString(message.Format(desc))
		b.WriteString("\n\n")
	}
	b.WriteString(strings.Join(p.Lines(), "\n"))
	return b.String()
}

// prompt asks a player to accept or decline the rules.
type prompt struct {
	Accept  form.Button
	Decline form.Button
	plugin  *Plugin
}

// Prompt returns the modal asking a player to accept the rules.
func (p *Plugin) Prompt() form.Modal {
	return form.NewModal(prompt{
		Accept:  form.NewButton(message.Format(p.conf.String(KeyAcceptText, "Accept")), ""),
		Decline: form.NewButton(message.Format(p.conf.String(KeyDeclineText, "Decline")), ""),
		plugin:  p,
	}, message.Format(p.conf.String(KeyTitle, "Server Rules"))).WithBody(p.body())
}

func (f prompt) Submit(submitter form.Submitter, pressed form.Button, _ *world.Tx) {
	pl, ok := submitter.(*player.Player)
	if !ok {
		return
	}
	switch pressed {
	case f.Accept:
		f.plugin.accept(pl)
	case f.Decline:
		f.plugin.decline(pl)
	}
}

// Close treats a dismissed prompt as declined.
func (f prompt) Close(submitter form.Submitter, _ *world.Tx) {
	if pl, ok := submitter.(*player.Player); ok {
		f.plugin.decline(pl)
	}
}

// view lists the rules without asking for a decision.
type view struct{}

// View returns the read-only rules menu shown by /rules. Every rule is a
// button showing its icon.
func (p *Plugin) View() form.Menu {
	rules, lines := p.Rules(), p.Lines()
	body := message.Format(p.conf.String(KeyDescription, ""))
	if len(rules) == 0 {
		body = p.messages.Resolve("no-rules", nil)
	}
	buttons := make([]form.Button, 0, len(rules)+1)
	for i, r := range rules {
		buttons = append(buttons, form.NewButton(lines[i], iconTexture(r.Icon)))
	}
	buttons = append(buttons, form.NewButton(p.messages.Resolve("close-button", nil), "textures/ui/cancel"))
	return form.NewMenu(view{}, message.Format(p.conf.String(KeyTitle, "Server Rules"))).
		WithBody(body).
		WithButtons(buttons...)
}

func iconTexture(icon string) string {
	icon = strings.TrimSpace(strings.ToLower(icon))
	if icon == "" {
		return ""
	}
	if strings.HasPrefix(icon, "textures/") {
		return icon
	}
	_, name, found := strings.Cut(icon, ":")
	if !found {
		name = icon
	}
	return "textures/items/" + name
}

func (view) Submit(form.Submitter, form.Button, *world.Tx) {}

var (
	_ form.ModalSubmittable = prompt{}
	_ form.Closer           = prompt{}
	_ form.MenuSubmittable  = view{}
)
