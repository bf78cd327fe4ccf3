package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestRoutesCommand(t *testing.T) {
	var buf bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"routes", "--no-color"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("routes failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		"Method", "Pattern", "Name", "Parameters",
		"/fridge/", "fridge",
		"/recipe/{ref}/", "recipes.show", "ref:ref",
		"/menu/date/between/{begin}/{end}/", "menus.between", "begin:date, end:date",
		"DELETE",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("routes output missing %q:\n%s", want, output)
		}
	}
}
