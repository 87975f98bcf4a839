package things

import (
	"errors"
	"testing"
)

func TestResolveTokenPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		explicit   string
		configured string
		env        string
		want       string
		wantErr    bool
	}{
		{"explicit wins", "from-arg", "from-cfg", "from-env", "from-arg", false},
		{"config over env", "", "from-cfg", "from-env", "from-cfg", false},
		{"env fallback", "", "", "from-env", "from-env", false},
		{"nothing set", "", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAuthToken, tt.env)

			got, err := ResolveToken(tt.explicit, tt.configured)
			if tt.wantErr {
				if !errors.Is(err, ErrTokenRequired) {
					t.Fatalf("got %v, want ErrTokenRequired", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveToken: %v", err)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}
