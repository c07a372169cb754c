package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/formfill/internal/docxtest"
)

func TestDefaultOutput(t *testing.T) {
	tests := map[string]string{
		"form.docx":          "form_filled.docx",
		"/tmp/forms/报名表.docx": "/tmp/forms/报名表_filled.docx",
		"noext":              "noext_filled.docx",
	}
	for in, want := range tests {
		if got := defaultOutput(in); got != want {
			t.Errorf("defaultOutput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "form.docx")
	data := docxtest.Build(t, docxtest.Table(
		[]string{"姓名", "", "照片"},
		[]string{"城市", "", ""},
	))
	if err := os.WriteFile(template, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FORMFILL_CONFIG_FILE", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"inspect", "--template", template})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Photo cells: 1",
		"Blanks: 3",
		"{1}",
		"姓名 | {1} | [照片]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestFillCommandRequiresAPIKey(t *testing.T) {
	for _, key := range []string{"ARK_API_KEY", "FORMFILL_ARK_API_KEY", "FORMFILL_CONFIG_FILE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	rootCmd.SetArgs([]string{"fill", "--template", "t.docx", "--profile", "p.txt"})
	rootCmd.SetErr(&bytes.Buffer{})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "API key is required") {
		t.Errorf("Execute() error = %v, want missing API key", err)
	}
}
