package homes

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/dm-vev/homes/server/home"
	"github.com/dm-vev/homes/server/location"
	"github.com/dm-vev/homes/server/message"
	"github.com/dm-vev/homes/server/teleport"
	"github.com/dm-vev/homes/server/tick"
	"github.com/google/uuid"
)

// Notice is a message for a player, identified by its key. The zero Notice
// means there is nothing to say.
type Notice struct {
	Key          string
	Placeholders message.Placeholders
}

// Empty reports if the notice carries no message.
func (n Notice) Empty() bool { return n.Key == "" }

func notice(key string, placeholders message.Placeholders) Notice {
	return Notice{Key: key, Placeholders: placeholders}
}

// Teleporter starts and cancels teleport warmups. It is satisfied by
// *teleport.Coordinator.
type Teleporter interface {
	RequestTeleport(actor uuid.UUID, dest teleport.Destination) error
	CancelTeleport(actor uuid.UUID, reason teleport.Reason) bool
	Active(actor uuid.UUID) bool
}

// Deferrer runs work on the scheduler goroutine.
type Deferrer interface {
	RunLater(delay int64, fn func()) tick.Handle
}

// Notifier delivers a message to a player outside a world transaction.
type Notifier interface {
	Message(id uuid.UUID, key string, placeholders map[string]string) error
}

// Service implements the player facing home operations. Results are returned
// as notices so that commands and forms can send them the way that suits them.
type Service struct {
	homes  *home.Manager
	tp     Teleporter
	later  Deferrer
	notify Notifier
	conf   home.Config
	log    *slog.Logger
}

// NewService returns a Service. Teleports are requested through tp on the
// goroutine of d; failures are reported through n.
func NewService(homes *home.Manager, tp Teleporter, d Deferrer, n Notifier, conf home.Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{homes: homes, tp: tp, later: d, notify: n, conf: conf, log: log}
}

// Homes returns the Manager the Service works on.
func (s *Service) Homes() *home.Manager { return s.homes }

// Create saves a new home called name at loc.
func (s *Service) Create(owner uuid.UUID, name string, loc location.Location) Notice {
	h, err := s.homes.Create(owner, name, loc)
	if err != nil {
		return s.failure(owner, name, loc.World, err)
	}
	return notice("home-created", HomePlaceholders(h))
}

// Delete removes the home called name.
func (s *Service) Delete(owner uuid.UUID, name string) Notice {
	h, err := s.homes.Delete(owner, name)
	if err != nil {
		return s.failure(owner, name, "", err)
	}
	return notice("home-deleted", HomePlaceholders(h))
}

// Rename renames the home called from to to.
func (s *Service) Rename(owner uuid.UUID, from, to string) Notice {
	h, err := s.homes.Rename(owner, from, to)
	if err != nil {
		name := from
		if errors.Is(err, home.ErrExists) {
			name = to
		}
		return s.failure(owner, name, "", err)
	}
	p := HomePlaceholders(h)
	p["old_name"] = from
	return notice("home-renamed", p)
}

// SetIcon changes the icon of the home called name. Only icons offered in the
// icon menu may be chosen.
func (s *Service) SetIcon(owner uuid.UUID, name, icon string) Notice {
	icon = strings.ToLower(strings.TrimSpace(icon))
	if !slices.Contains(s.Icons(), icon) {
		return notice("error-invalid-icon", nil)
	}
	h, err := s.homes.SetIcon(owner, name, icon)
	if err != nil {
		return s.failure(owner, name, "", err)
	}
	return notice("home-icon-changed", HomePlaceholders(h))
}

// Icons returns the icons players may choose from.
func (s *Service) Icons() []string {
	icons := s.conf.Strings(KeyIcons, nil)
	out := make([]string, 0, len(icons))
	for _, icon := range icons {
		if icon = strings.ToLower(strings.TrimSpace(icon)); icon != "" && !slices.Contains(out, icon) {
			out = append(out, icon)
		}
	}
	return out
}

// Teleport starts a warmup towards the home called name. The request is
// handed to the scheduler, so Teleport may be called from a world transaction.
func (s *Service) Teleport(owner uuid.UUID, name string) Notice {
	h, err := s.homes.Get(owner, name)
	if err != nil {
		return s.failure(owner, name, "", err)
	}
	dest := teleport.Destination{Name: h.Name, Location: h.Location}
	s.later.RunLater(0, func() {
		if err := s.tp.RequestTeleport(owner, dest); err != nil {
			s.log.Debug("Home teleport rejected.", "owner", owner, "home", h.Name, "error", err)
			if !errors.Is(err, teleport.ErrActorUnreachable) {
				_ = s.notify.Message(owner, "error-generic", message.Placeholders{"error": err.Error()})
			}
		}
	})
	return Notice{}
}

// Cancel cancels the pending teleport of owner.
func (s *Service) Cancel(owner uuid.UUID) Notice {
	if !s.tp.Active(owner) {
		return notice("teleport-none-pending", nil)
	}
	s.later.RunLater(0, func() {
		s.tp.CancelTeleport(owner, teleport.ReasonManual)
	})
	return Notice{}
}

// List returns the lines of the home list of owner.
func (s *Service) List(owner uuid.UUID) []Notice {
	homes, err := s.homes.List(owner)
	if err != nil {
		return []Notice{s.failure(owner, "", "", err)}
	}
	if len(homes) == 0 {
		return []Notice{notice("home-list-empty", nil)}
	}
	out := make([]Notice, 0, len(homes)+1)
	out = append(out, notice("home-list-header", message.Placeholders{
		"count": strconv.Itoa(len(homes)),
		"max":   LimitString(s.homes.Limit(owner)),
	}))
	for _, h := range homes {
		out = append(out, notice("home-list-entry", HomePlaceholders(h)))
	}
	return out
}

// Info returns the lines describing the home called name.
func (s *Service) Info(owner uuid.UUID, name string) []Notice {
	h, err := s.homes.Get(owner, name)
	if err != nil {
		return []Notice{s.failure(owner, name, "", err)}
	}
	p := HomePlaceholders(h)
	return []Notice{
		notice("home-info-header", p),
		notice("home-info-world", p),
		notice("home-info-location", p),
		notice("home-info-created", p),
	}
}

// IsAdmin reports if the player with the id and name passed is listed as an
// administrator. Entries match either the UUID or the name of the player.
func (s *Service) IsAdmin(id uuid.UUID, name string) bool {
	for _, entry := range s.conf.Strings(KeyAdmins, nil) {
		entry = strings.TrimSpace(entry)
		if strings.EqualFold(entry, name) || strings.EqualFold(entry, id.String()) {
			return true
		}
	}
	return false
}

func (s *Service) failure(owner uuid.UUID, name, world string, err error) Notice {
	switch {
	case errors.Is(err, home.ErrInvalidName):
		return notice("error-invalid-name", message.Placeholders{"home_name": name})
	case errors.Is(err, home.ErrExists):
		return notice("error-home-exists", message.Placeholders{"home_name": name})
	case errors.Is(err, home.ErrNotFound):
		return notice("error-home-not-found", message.Placeholders{"home_name": name})
	case errors.Is(err, home.ErrLimitReached):
		return notice("error-max-homes", message.Placeholders{"max": LimitString(s.homes.Limit(owner))})
	case errors.Is(err, home.ErrWorldBlacklisted):
		return notice("error-world-blacklisted", message.Placeholders{"world": world})
	}
	s.log.Error("Home operation failed.", "owner", owner, "home", name, "error", err)
	return notice("error-generic", message.Placeholders{"error": err.Error()})
}

// HomePlaceholders returns the placeholders describing h. Both the short names
// used in chat messages and the home_ prefixed names used in menus are set.
func HomePlaceholders(h home.Home) message.Placeholders {
	pos := h.Location.Pos
	x, y, z := coord(pos[0]), coord(pos[1]), coord(pos[2])
	return message.Placeholders{
		"home_name":  h.Name,
		"home_world": h.Location.World,
		"home_x":     x,
		"home_y":     y,
		"home_z":     z,
		"home_icon":  h.Icon,
		"world":      h.Location.World,
		"x":          x,
		"y":          y,
		"z":          z,
		"created":    h.CreatedAt.Format("2006-01-02 15:04"),
	}
}

// StatsPlaceholders exposes teleport counters to the teleport-stats message.
func StatsPlaceholders(s teleport.MetricsSnapshot) message.Placeholders {
	var cancelled uint64
	for _, n := range s.Cancelled {
		cancelled += n
	}
	p := message.Placeholders{
		"requested": strconv.FormatUint(s.Requested, 10),
		"completed": strconv.FormatUint(s.Completed, 10),
		"failed":    strconv.FormatUint(s.Failed, 10),
		"cancelled": strconv.FormatUint(cancelled, 10),
	}
	for _, r := range []teleport.Reason{teleport.ReasonMove, teleport.ReasonDamage, teleport.ReasonDisconnect, teleport.ReasonManual} {
		p[string(r)] = strconv.FormatUint(s.Cancelled[r], 10)
	}
	return p
}

// LimitString formats a home limit for display.
func LimitString(limit int) string {
	if limit == home.Unlimited {
		return "∞"
	}
	return strconv.Itoa(limit)
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
