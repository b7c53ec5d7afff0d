package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menuFixture = `
<div role="group">
  <div role="menuitem">
    <span data-testid="model-name">  Model A </span>
  </div>
  <div role="menuitem">
    <span data-testid="model-name">Model
      B</span>
    <span data-testid="model-beta-badge">Beta</span>
    <ul>
      <li data-testid="model-feature">x</li>
      <li data-testid="model-feature"> y </li>
      <li data-testid="model-feature">x</li>
      <li data-testid="model-feature">   </li>
    </ul>
  </div>
  <div role="menuitem">
    <span data-testid="model-beta-badge"></span>
  </div>
</div>
<div role="group">
  <div role="menuitem"><span data-testid="model-name">Legacy</span></div>
</div>`

func TestParseList(t *testing.T) {
	entries := ParseList(menuFixture, DefaultSelectors())

	require.Len(t, entries, 3)

	assert.Equal(t, Entry{Name: "Model A", Features: []string{}}, entries[0])
	assert.False(t, entries[0].HasBeta(), "missing badge element means no beta label")

	assert.Equal(t, "Model B", entries[1].Name)
	assert.Equal(t, "Beta", entries[1].BetaLabel)
	assert.Equal(t, []string{"x", "y"}, entries[1].Features)

	// Item without a name degrades instead of failing
	assert.Equal(t, "", entries[2].Name)
	assert.Equal(t, defaultBetaLabel, entries[2].BetaLabel)
}

func TestParseList_WithoutGroupUsesWholeFragment(t *testing.T) {
	markup := `<div role="menuitem"><span data-testid="model-name">Solo</span></div>`

	entries := ParseList(markup, DefaultSelectors())

	require.Len(t, entries, 1)
	assert.Equal(t, "Solo", entries[0].Name)
}

func TestParseList_EmptyAndMalformed(t *testing.T) {
	assert.Empty(t, ParseList("", DefaultSelectors()))
	assert.NotNil(t, ParseList("", DefaultSelectors()))
	assert.Empty(t, ParseList("<div role=group><p>no items", DefaultSelectors()))
}

func TestExtractor_Extract(t *testing.T) {
	sel := DefaultSelectors()

	tests := []struct {
		name        string
		setup       func(p *fakePage)
		wantEntries int
		wantPress   bool
	}{
		{
			name:        "close control dismisses the list",
			setup:       func(p *fakePage) {},
			wantEntries: 3,
		},
		{
			name: "falls back to escape when close fails",
			setup: func(p *fakePage) {
				p.clickErr[sel.CloseControl] = errors.New("not clickable")
			},
			wantEntries: 3,
			wantPress:   true,
		},
		{
			name: "fallback failure is swallowed",
			setup: func(p *fakePage) {
				p.clickErr[sel.CloseControl] = errors.New("not clickable")
				p.pressErr = errors.New("page crashed")
			},
			wantEntries: 3,
			wantPress:   true,
		},
		{
			name: "unreadable list yields no entries",
			setup: func(p *fakePage) {
				delete(p.markup, sel.ListContainer)
			},
			wantEntries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newFakePage(testTarget)
			page.markup[sel.ListContainer] = menuFixture
			tt.setup(page)

			x := NewExtractor(sel, 0, 0, nil)
			entries := x.Extract(&RevealedList{page: page})

			assert.NotNil(t, entries)
			assert.Len(t, entries, tt.wantEntries)

			calls := page.recorded()
			assert.Contains(t, calls, "click "+sel.CloseControl)
			if tt.wantPress {
				assert.Contains(t, calls, "press Escape")
			} else {
				assert.NotContains(t, calls, "press Escape")
			}
		})
	}
}
