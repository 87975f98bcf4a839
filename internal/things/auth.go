package things

import "os"

// EnvAuthToken is the environment variable consulted when neither the tool
// call nor the config file provides an auth token.
const EnvAuthToken = "THINGS_AUTH_TOKEN"

// ResolveToken picks the auth token for update-class commands.
// Precedence: explicit tool argument, then the configured token, then the
// THINGS_AUTH_TOKEN environment variable. Returns ErrTokenRequired when all
// three are empty; callers must resolve before making any external call.
func ResolveToken(explicit, configured string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if configured != "" {
		return configured, nil
	}
	if token := os.Getenv(EnvAuthToken); token != "" {
		return token, nil
	}
	return "", ErrTokenRequired
}
