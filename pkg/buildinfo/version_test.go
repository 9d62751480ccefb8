package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v1.2.3"

	got := Template()
	if !strings.HasPrefix(got, "{{.Name}} version: v1.2.3\n") {
		t.Errorf("Template() = %q", got)
	}
	if !strings.HasSuffix(got, "built: "+Date+"\n") {
		t.Errorf("Template() should end with the build date, got %q", got)
	}
}
