// Package assistant bridges voice and chat sessions with the realtime
// provider: session token minting, the websocket session lifecycle, and the
// closed set of tool calls the model may trigger.
package assistant

import (
	dErrors "brightpath/pkg/domain-errors"
)

// Tool is a closed enum of the actions the realtime model may invoke. Names
// arriving from the provider that are not in this set are ignored.
type Tool string

const (
	ToolNavigatePatients    Tool = "navigate_to_patients"
	ToolNavigateProviders   Tool = "navigate_to_providers"
	ToolNavigateApplication Tool = "navigate_to_financing_application"
	ToolNavigateAbout       Tool = "navigate_to_about"
	ToolGetStartedProviders Tool = "get_started_providers"
	ToolSetLanguageSpanish  Tool = "set_language_spanish"
)

// Route identifies a destination the host can navigate to.
type Route string

const (
	RoutePatients           Route = "/patients"
	RouteProviders          Route = "/providers"
	RouteApplication        Route = "/financing/apply"
	RouteAbout              Route = "/about"
	RouteProviderOnboarding Route = "/providers/get-started"
)

// Host is the surface the tool dispatcher acts on. Implementations push the
// effect to the connected client.
type Host interface {
	Navigate(route Route)
	SetLanguage(lang string)
}

// ParseTool maps a provider tool-call name to the enum. Unknown names return
// an invalid_input domain error so callers can drop the call without side
// effects.
func ParseTool(name string) (Tool, error) {
	switch Tool(name) {
	case ToolNavigatePatients, ToolNavigateProviders, ToolNavigateApplication,
		ToolNavigateAbout, ToolGetStartedProviders, ToolSetLanguageSpanish:
		return Tool(name), nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown tool: "+name)
}

// Dispatch applies exactly one tool effect to the host. The switch is
// exhaustive over the enum; ParseTool guarantees no other value reaches it.
func Dispatch(tool Tool, host Host) {
	switch tool {
	case ToolNavigatePatients:
		host.Navigate(RoutePatients)
	case ToolNavigateProviders:
		host.Navigate(RouteProviders)
	case ToolNavigateApplication:
		host.Navigate(RouteApplication)
	case ToolNavigateAbout:
		host.Navigate(RouteAbout)
	case ToolGetStartedProviders:
		host.Navigate(RouteProviderOnboarding)
	case ToolSetLanguageSpanish:
		host.SetLanguage("es")
	}
}
