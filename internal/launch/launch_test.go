package launch

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHandlerCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", []string{"-g"}},
		{"linux", "xdg-open", nil},
		{"windows", "", nil},
		{"plan9", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := handlerCommand(tt.goos)
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %q, want %q", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestNewOpenerDefaults(t *testing.T) {
	o := NewOpener(0, nil)
	if o.timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", o.timeout, defaultTimeout)
	}
	if o.log == nil {
		t.Error("log should never be nil")
	}

	o = NewOpener(3*time.Second, nil)
	if o.timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", o.timeout)
	}
}
