package homes

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dm-vev/homes/server/config"
	"github.com/dm-vev/homes/server/message"
	"github.com/dm-vev/homes/server/teleport"
)

func TestDefaultMessagesResolve(t *testing.T) {
	t.Parallel()

	r := message.NewResolver(nil, DefaultMessages)
	for key := range DefaultMessages {
		if got := r.Resolve(key, nil); strings.Contains(got, "Missing message") {
			t.Fatalf("Resolve(%q) = %q", key, got)
		}
	}
	for _, reason := range []teleport.Reason{teleport.ReasonMove, teleport.ReasonDamage, teleport.ReasonDisconnect, teleport.ReasonManual} {
		for _, key := range []string{teleport.MsgCancelled + string(reason), teleport.MsgCancelledSubtitle + string(reason)} {
			if _, ok := DefaultMessages[key]; !ok {
				t.Fatalf("no default for %q", key)
			}
		}
	}
}

func TestDefaultConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yml")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := config.Load(path, configDefaults(), log); err != nil {
		t.Fatalf("write defaults: %v", err)
	}
	// Read the written file back without defaults to check it is complete.
	conf, err := config.Load(path, nil, log)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := conf.Int(teleport.KeyWarmup, -1); got != teleport.DefaultWarmup {
		t.Fatalf("warmup = %d", got)
	}
	if got := conf.String(KeyDataFormat, ""); got != FormatYAML {
		t.Fatalf("data format = %q", got)
	}
	if got := conf.Strings(KeyIcons, nil); len(got) != 12 {
		t.Fatalf("icons = %v", got)
	}
	r := message.NewResolver(conf, nil)
	if got := r.Raw("home-created", message.Placeholders{"home_name": "base"}); !strings.Contains(got, "base") {
		t.Fatalf("home-created = %q", got)
	}
	if got := r.Raw("guis.main-menu.close-button.name", nil); got != "<red>Close</red>" {
		t.Fatalf("close button = %q", got)
	}
}
