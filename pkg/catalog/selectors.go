package catalog

import (
	"fmt"
)

// Selectors holds every CSS selector that depends on the target site's
// markup. The markup is an unversioned external schema, so a layout change
// should only ever touch this file or the selectors section of the config.
type Selectors struct {
	// ChallengeIndicator matches the bot-verification surface
	ChallengeIndicator string `yaml:"challenge_indicator"`

	// ConsentDialog is the first-run dialog and ConsentConfirm its accept control
	ConsentDialog  string `yaml:"consent_dialog"`
	ConsentConfirm string `yaml:"consent_confirm"`

	// ListTrigger is the control that reveals the model list
	ListTrigger string `yaml:"list_trigger"`

	// ListContainer is the revealed surface; ListGroup and ListItem are
	// resolved inside it
	ListContainer string `yaml:"list_container"`
	ListGroup     string `yaml:"list_group"`
	ListItem      string `yaml:"list_item"`

	// Item fields, resolved inside a list item
	ItemName    string `yaml:"item_name"`
	ItemBeta    string `yaml:"item_beta"`
	ItemFeature string `yaml:"item_feature"`

	// CloseControl dismisses the revealed surface
	CloseControl string `yaml:"close_control"`
}

// DefaultSelectors returns the selectors for the current layout of the
// target site's model switcher.
func DefaultSelectors() Selectors {
	return Selectors{
		ChallengeIndicator: `#challenge-form, #cf-challenge-running, iframe[src*="challenges.cloudflare.com"]`,
		ConsentDialog:      `[role="dialog"][data-testid="consent-modal"]`,
		ConsentConfirm:     `[data-testid="consent-modal"] button[data-testid="consent-accept"]`,
		ListTrigger:        `button[data-testid="model-switcher-dropdown-button"]`,
		ListContainer:      `[role="menu"][data-testid="model-switcher-menu"]`,
		ListGroup:          `[role="group"]`,
		ListItem:           `[role="menuitem"]`,
		ItemName:           `[data-testid="model-name"]`,
		ItemBeta:           `[data-testid="model-beta-badge"]`,
		ItemFeature:        `[data-testid="model-feature"]`,
		CloseControl:       `[data-testid="model-switcher-menu"] button[aria-label="Close"]`,
	}
}

// Validate reports the first empty selector.
func (s Selectors) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"challenge_indicator", s.ChallengeIndicator},
		{"consent_dialog", s.ConsentDialog},
		{"consent_confirm", s.ConsentConfirm},
		{"list_trigger", s.ListTrigger},
		{"list_container", s.ListContainer},
		{"list_group", s.ListGroup},
		{"list_item", s.ListItem},
		{"item_name", s.ItemName},
		{"item_beta", s.ItemBeta},
		{"item_feature", s.ItemFeature},
		{"close_control", s.CloseControl},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("selector %s is required", f.name)
		}
	}
	return nil
}
