package rules

// Configuration keys of the rules extension.
const (
	KeyTitle          = "title"
	KeyDescription    = "description"
	KeyRules          = "rules"
	KeyRuleFormat     = "rule-format"
	KeyShowOn         = "show-on"
	KeyAcceptText     = "buttons.accept.text"
	KeyAcceptAction   = "buttons.accept.action"
	KeyDeclineText    = "buttons.decline.text"
	KeyDeclineAction  = "buttons.decline.action"
	DefaultRuleFormat = "{num}) {text}"
)

// ShowOn values.
const (
	ShowOnJoin = "join"
	ShowOnNone = "none"
)

// Rule is one configured rule.
type Rule struct {
	Text string `mapstructure:"text"`
	Icon string `mapstructure:"icon"`
}

// Defaults is the configuration written to config.yml on first start.
var Defaults = map[string]any{
	KeyTitle:       "Server Rules",
	KeyDescription: "<grey>Please read and accept the rules before playing.</grey>",
	KeyRules: []map[string]any{
		{"text": "Be respectful to other players.", "icon": "paper"},
		{"text": "No griefing or stealing.", "icon": "flint_and_steel"},
		{"text": "No cheating or exploiting bugs.", "icon": "diamond_sword"},
	},
	KeyRuleFormat:    DefaultRuleFormat,
	KeyShowOn:        ShowOnJoin,
	KeyAcceptText:    "Accept",
	KeyAcceptAction:  "none",
	KeyDeclineText:   "Decline",
	KeyDeclineAction: "disconnect:<red>You have to accept the rules to play on this server.</red>",
}

// DefaultMessages holds the messages of the extension, below "messages.".
var DefaultMessages = map[string]string{
	"accepted":         "<green>Thank you for accepting the rules.</green>",
	"close-button":     "Close",
	"reset":            "Rules acceptance of {player} was reset.",
	"reset-unknown":    "{player} has not accepted the rules.",
	"player-not-found": "No online player or UUID matches {player}.",
	"reloaded":         "Rules configuration reloaded.",
	"no-rules":         "<grey>No rules are configured.</grey>",
}
