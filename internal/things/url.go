package things

import (
	"net/url"
	"strings"
)

// Scheme is the custom URL scheme registered by Things 3.
const Scheme = "things"

// Command names a URL-scheme command.
type Command string

// Commands recognized by the Things URL scheme.
const (
	CommandAdd           Command = "add"
	CommandAddProject    Command = "add-project"
	CommandUpdate        Command = "update"
	CommandUpdateProject Command = "update-project"
	CommandShow          Command = "show"
	CommandSearch        Command = "search"
	CommandJSON          Command = "json"
	CommandVersion       Command = "version"
)

// BuildURL assembles a things:///command?params invocation URL.
func BuildURL(cmd Command, params url.Values) string {
	u := url.URL{Scheme: Scheme, Path: "/" + string(cmd)}
	if len(params) > 0 {
		// Things does not decode '+' as a space in query values, so
		// spaces must be percent-encoded.
		u.RawQuery = strings.ReplaceAll(params.Encode(), "+", "%20")
	}
	return u.String()
}
