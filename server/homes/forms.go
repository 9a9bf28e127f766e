package homes

import (
	"strconv"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/player/form"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/homes/server/dfhost"
	"github.com/dm-vev/homes/server/home"
	"github.com/dm-vev/homes/server/message"
	"github.com/google/uuid"
)

// menus builds the home forms. Form callbacks run inside the submitting
// player's world transaction.
type menus struct {
	svc      *Service
	messages *message.Resolver
	conf     home.Config
}

func (m *menus) text(key string, p message.Placeholders) string {
	return m.messages.Resolve(key, p)
}

func (m *menus) send(p *player.Player, n Notice) {
	if !n.Empty() {
		p.Message(m.text(n.Key, n.Placeholders))
	}
}

// action is run when the button at the same index of a menu is pressed.
type action func(p *player.Player, tx *world.Tx)

// buttonMenu dispatches a pressed button to its action. Buttons with the same
// text and image share the first matching action.
type buttonMenu struct {
	buttons []form.Button
	actions []action
}

func (b *buttonMenu) add(btn form.Button, a action) {
	b.buttons = append(b.buttons, btn)
	b.actions = append(b.actions, a)
}

func (b buttonMenu) Submit(submitter form.Submitter, pressed form.Button, tx *world.Tx) {
	p, ok := submitter.(*player.Player)
	if !ok {
		return
	}
	for i, btn := range b.buttons {
		if btn == pressed {
			if a := b.actions[i]; a != nil {
				a(p, tx)
			}
			return
		}
	}
}

// Main returns the home menu of owner: one button per slot followed by a
// close button.
func (m *menus) Main(owner uuid.UUID) form.Menu {
	homes, err := m.svc.Homes().List(owner)
	if err != nil {
		m.svc.log.Error("List homes for menu.", "owner", owner, "error", err)
	}
	limit := m.svc.Homes().Limit(owner)
	slots := m.conf.Int(home.KeySlots, home.DefaultSlots)

	var menu buttonMenu
	for _, slot := range home.Layout(homes, limit, slots) {
		switch slot.Kind {
		case home.SlotOccupied:
			h := slot.Home
			menu.add(form.NewButton(m.text("guis.main-menu.occupied-slot.name", HomePlaceholders(h)), IconTexture(h.Icon)),
				func(p *player.Player, _ *world.Tx) { p.SendForm(m.Manage(h)) })
		case home.SlotAvailable:
			menu.add(form.NewButton(m.text("guis.main-menu.available-slot.name", nil), "textures/ui/color_plus"),
				func(p *player.Player, _ *world.Tx) { p.SendForm(m.Create()) })
		case home.SlotUnavailable:
			menu.add(form.NewButton(m.text("guis.main-menu.unavailable-slot.name", nil), "textures/ui/lock"),
				func(p *player.Player, _ *world.Tx) { m.send(p, notice("error-upgrade-required", nil)) })
		}
	}
	menu.add(form.NewButton(m.text("guis.main-menu.close-button.name", nil), "textures/ui/cancel"), nil)

	counts := message.Placeholders{"count": strconv.Itoa(len(homes)), "max": LimitString(limit)}
	return form.NewMenu(menu, m.text("guis.main-menu.title", counts)).
		WithBody(m.text("guis.main-menu.body", counts)).
		WithButtons(menu.buttons...)
}

// Manage returns the menu for a single home.
func (m *menus) Manage(h home.Home) form.Menu {
	p := HomePlaceholders(h)
	var menu buttonMenu
	menu.add(form.NewButton(m.text("guis.management-menu.teleport-button.name", p), "textures/items/ender_pearl"),
		func(pl *player.Player, _ *world.Tx) { m.send(pl, m.svc.Teleport(pl.UUID(), h.Name)) })
	menu.add(form.NewButton(m.text("guis.management-menu.rename-button.name", p), "textures/items/name_tag"),
		func(pl *player.Player, _ *world.Tx) { pl.SendForm(m.Rename(h)) })
	menu.add(form.NewButton(m.text("guis.management-menu.change-icon-button.name", p), IconTexture(h.Icon)),
		func(pl *player.Player, _ *world.Tx) { pl.SendForm(m.Icons(h)) })
	menu.add(form.NewButton(m.text("guis.management-menu.delete-button.name", p), "textures/ui/trash"),
		func(pl *player.Player, _ *world.Tx) { pl.SendForm(m.Delete(h)) })
	menu.add(form.NewButton(m.text("guis.management-menu.back-button.name", p), "textures/ui/arrow_left"),
		func(pl *player.Player, _ *world.Tx) { pl.SendForm(m.Main(pl.UUID())) })

	return form.NewMenu(menu, m.text("guis.management-menu.title", p)).
		WithBody(m.text("guis.management-menu.body", p)).
		WithButtons(menu.buttons...)
}

// Icons returns the menu listing the icons a home can be given.
func (m *menus) Icons(h home.Home) form.Menu {
	p := HomePlaceholders(h)
	var menu buttonMenu
	for _, icon := range m.svc.Icons() {
		menu.add(form.NewButton(IconName(icon), IconTexture(icon)), func(pl *player.Player, _ *world.Tx) {
			n := m.svc.SetIcon(pl.UUID(), h.Name, icon)
			m.send(pl, n)
			if updated, err := m.svc.Homes().Get(pl.UUID(), h.Name); err == nil {
				pl.SendForm(m.Manage(updated))
			}
		})
	}
	menu.add(form.NewButton(m.text("guis.icon-menu.back-button.name", p), "textures/ui/arrow_left"),
		func(pl *player.Player, _ *world.Tx) { pl.SendForm(m.Manage(h)) })
	return form.NewMenu(menu, m.text("guis.icon-menu.title", p)).WithButtons(menu.buttons...)
}

// createForm asks for the name of a new home, created where the player stands.
type createForm struct {
	Name  form.Input
	menus *menus
}

// Create returns the form creating a home at the player's position.
func (m *menus) Create() form.Custom {
	return form.New(createForm{
		Name:  form.NewInput(m.text("guis.create-dialog.input", nil), "", m.text("guis.create-dialog.placeholder", nil)),
		menus: m,
	}, m.text("guis.create-dialog.title", nil))
}

func (f createForm) Submit(submitter form.Submitter, tx *world.Tx) {
	p, ok := submitter.(*player.Player)
	if !ok {
		return
	}
	f.menus.send(p, f.menus.svc.Create(p.UUID(), f.Name.Value(), dfhost.LocationOf(tx, p)))
	p.SendForm(f.menus.Main(p.UUID()))
}

// renameForm asks for the new name of a home.
type renameForm struct {
	Name  form.Input
	menus *menus
	home  string
}

// Rename returns the form renaming h.
func (m *menus) Rename(h home.Home) form.Custom {
	p := HomePlaceholders(h)
	return form.New(renameForm{
		Name:  form.NewInput(m.text("guis.rename-dialog.input", p), "", h.Name),
		menus: m,
		home:  h.Name,
	}, m.text("guis.rename-dialog.title", p))
}

func (f renameForm) Submit(submitter form.Submitter, _ *world.Tx) {
	p, ok := submitter.(*player.Player)
	if !ok {
		return
	}
	f.menus.send(p, f.menus.svc.Rename(p.UUID(), f.home, f.Name.Value()))
	p.SendForm(f.menus.Main(p.UUID()))
}

// deleteForm confirms the removal of a home.
type deleteForm struct {
	Confirm form.Button
	Cancel  form.Button
	menus   *menus
	home    home.Home
}

// Delete returns the modal confirming the removal of h.
func (m *menus) Delete(h home.Home) form.Modal {
	p := HomePlaceholders(h)
	return form.NewModal(deleteForm{
		Confirm: form.NewButton(m.text("guis.delete-dialog.confirm", p), ""),
		Cancel:  form.NewButton(m.text("guis.delete-dialog.cancel", p), ""),
		menus:   m,
		home:    h,
	}, m.text("guis.delete-dialog.title", p)).WithBody(m.text("guis.delete-dialog.body", p))
}

func (f deleteForm) Submit(submitter form.Submitter, pressed form.Button, _ *world.Tx) {
	p, ok := submitter.(*player.Player)
	if !ok {
		return
	}
	switch pressed {
	case f.Confirm:
		f.menus.send(p, f.menus.svc.Delete(p.UUID(), f.home.Name))
		p.SendForm(f.menus.Main(p.UUID()))
	case f.Cancel:
		p.SendForm(f.menus.Manage(f.home))
	}
}

var (
	_ form.MenuSubmittable  = buttonMenu{}
	_ form.Submittable      = createForm{}
	_ form.Submittable      = renameForm{}
	_ form.ModalSubmittable = deleteForm{}
)
