package assistant

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	mu          sync.Mutex
	navigations []Route
	languages   []string
}

func (h *fakeHost) Navigate(route Route) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.navigations = append(h.navigations, route)
}

func (h *fakeHost) SetLanguage(lang string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.languages = append(h.languages, lang)
}

func (h *fakeHost) snapshot() ([]Route, []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Route(nil), h.navigations...), append([]string(nil), h.languages...)
}

func TestParseToolAcceptsKnownNames(t *testing.T) {
	for _, name := range []string{
		"navigate_to_patients",
		"navigate_to_providers",
		"navigate_to_financing_application",
		"navigate_to_about",
		"get_started_providers",
		"set_language_spanish",
	} {
		tool, err := ParseTool(name)
		require.NoError(t, err, name)
		assert.Equal(t, Tool(name), tool)
	}
}

func TestParseToolRejectsUnknownNames(t *testing.T) {
	for _, name := range []string{"", "navigate_to_admin", "NAVIGATE_TO_PATIENTS", "set_language_french"} {
		_, err := ParseTool(name)
		assert.Error(t, err, name)
	}
}

func TestDispatchTriggersExactlyOneEffect(t *testing.T) {
	tests := []struct {
		tool      Tool
		wantRoute Route
	}{
		{ToolNavigatePatients, RoutePatients},
		{ToolNavigateProviders, RouteProviders},
		{ToolNavigateApplication, RouteApplication},
		{ToolNavigateAbout, RouteAbout},
		{ToolGetStartedProviders, RouteProviderOnboarding},
	}
	for _, tc := range tests {
		t.Run(string(tc.tool), func(t *testing.T) {
			host := &fakeHost{}
			Dispatch(tc.tool, host)

			navs, langs := host.snapshot()
			require.Len(t, navs, 1)
			assert.Equal(t, tc.wantRoute, navs[0])
			assert.Empty(t, langs)
		})
	}
}

func TestDispatchSetLanguageSpanish(t *testing.T) {
	host := &fakeHost{}
	Dispatch(ToolSetLanguageSpanish, host)

	navs, langs := host.snapshot()
	assert.Empty(t, navs)
	require.Len(t, langs, 1)
	assert.Equal(t, "es", langs[0])
}
