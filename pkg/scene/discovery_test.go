package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseWorldMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sun-over-sea.pbrt")
	content := "# Scene: Sun\n# Variant: Low\n# Description: Evening light\n\nLookAt 0 1 5 0 0 0 0 1 0\n# Group: ignored after directives\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := ParseWorldMetadata(path)
	if err != nil {
		t.Fatalf("ParseWorldMetadata: %v", err)
	}
	want := SceneInfo{
		ID:          "pbrt:sun-over-sea",
		Name:        "Sun",
		DisplayName: "Sun - Low",
		Description: "Evening light",
		Group:       worldGroup,
		Type:        "pbrt",
		FilePath:    path,
		Variant:     "Low",
	}
	if info != want {
		t.Errorf("info = %+v, want %+v", info, want)
	}

	bare := filepath.Join(dir, "plain_world.pbrt")
	if err := os.WriteFile(bare, []byte("WorldBegin\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err = ParseWorldMetadata(bare)
	if err != nil || info.DisplayName != "Plain World" {
		t.Errorf("fallback display name = %q, %v, want Plain World", info.DisplayName, err)
	}

	if _, err := ParseWorldMetadata(filepath.Join(dir, "missing.pbrt")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestListAllScenes(t *testing.T) {
	response, err := ListAllScenes()
	if err != nil {
		t.Fatalf("ListAllScenes: %v", err)
	}
	if len(response.Groups) == 0 || response.Groups[0].Name != builtInGroup {
		t.Fatalf("first group should be the built-in scenes, got %+v", response.Groups)
	}
	if len(response.Groups[0].Scenes) != len(presets) {
		t.Errorf("built-in group has %d scenes, want %d", len(response.Groups[0].Scenes), len(presets))
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"sun-over-sea": "Sun Over Sea",
		"two_SUNS":     "Two Suns",
		"":             "",
	}
	for in, want := range tests {
		if got := titleCase(in); got != want {
			t.Errorf("titleCase(%q) = %q, want %q", in, got, want)
		}
	}
}
