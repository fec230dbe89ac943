package loaders

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-wavefront-tracer/pkg/core"
)

const testWorld = `# sun over a shadow catcher
LookAt 0 1 5  0 1 0  0 1 0
Camera "perspective" "float fov" 45
Film "rgb" "integer xresolution" 320 "integer yresolution" 180
     "bool transparent" true "bool passbackground" true
Integrator "path" "float aobouncesfactor" 0.5 "string distantlights" "all"
Sampler "halton" "integer pixelsamples" 16

WorldBegin
LightSource "infinite" "rgb L" [0.2 0.3 0.4] "bool mis" true
AttributeBegin
  LightSource "distant" "point3 from" [0 10 0] "point3 to" [0 0 0]
      "rgb L" [3 3 3] "float angle" 0.5 # degrees
AttributeEnd
Shape "shadowcatcher" "bool raytrace" true
WorldEnd
`

func TestParseWorld(t *testing.T) {
	world, err := ParseWorld(strings.NewReader(testWorld))
	if err != nil {
		t.Fatalf("ParseWorld: %v", err)
	}

	if world.Eye == nil || *world.Eye != core.NewVec3(0, 1, 5) {
		t.Errorf("Eye = %v, want (0,1,5)", world.Eye)
	}
	if world.Target == nil || *world.Target != core.NewVec3(0, 1, 0) {
		t.Errorf("Target = %v, want (0,1,0)", world.Target)
	}

	if world.Camera == nil || world.Camera.Subtype != "perspective" {
		t.Fatalf("Camera = %+v", world.Camera)
	}
	if fov, ok, err := world.Camera.GetFloatParam("fov"); !ok || err != nil || fov != 45 {
		t.Errorf("fov = %f, %v, %v, want 45", fov, ok, err)
	}

	if world.Film == nil {
		t.Fatal("Film missing")
	}
	if transparent, ok, _ := world.Film.GetBoolParam("transparent"); !ok || !transparent {
		t.Error("multi-line Film should carry transparent=true")
	}
	if xres, _, _ := world.Film.GetIntParam("xresolution"); xres != 320 {
		t.Errorf("xresolution = %d, want 320", xres)
	}

	if policy, _ := world.Integrator.GetStringParam("distantlights"); policy != "all" {
		t.Errorf("distantlights = %q, want all", policy)
	}

	if len(world.LightSources) != 2 {
		t.Fatalf("got %d light sources, want 2", len(world.LightSources))
	}
	distant := world.LightSources[1]
	if distant.Subtype != "distant" || distant.Line != 12 {
		t.Errorf("distant light = %s at line %d, want distant at line 12", distant.Subtype, distant.Line)
	}
	if angle, _, _ := distant.GetFloatParam("angle"); angle != 0.5 {
		t.Errorf("angle = %f, want 0.5 (trailing comment stripped)", angle)
	}

	if len(world.Shapes) != 1 || world.Shapes[0].Subtype != "shadowcatcher" {
		t.Errorf("Shapes = %+v, want one shadowcatcher", world.Shapes)
	}
	if len(world.Ignored) != 1 || world.Ignored[0].Type != "Sampler" {
		t.Errorf("Ignored = %+v, want the Sampler", world.Ignored)
	}
}

func TestParseWorld_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"light before world", `LightSource "infinite"`, "before WorldBegin"},
		{"film inside world", "WorldBegin\nFilm \"rgb\"", "after WorldBegin"},
		{"continuation without statement", `"float fov" 45`, "unexpected continuation"},
		{"unbalanced attributes", "WorldBegin\nAttributeBegin", "unbalanced"},
		{"stray attribute end", "WorldBegin\nAttributeEnd", "without AttributeBegin"},
		{"short LookAt", "LookAt 0 0 0", "requires 9 values"},
		{"bad LookAt", "LookAt 0 0 0 0 0 x 0 1 0", "invalid value"},
		{"nested world", "WorldBegin\nWorldBegin", "nested WorldBegin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWorld(strings.NewReader(tt.input))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestStatementParams(t *testing.T) {
	stmt, err := parseStatement(`LightSource "distant" "rgb L" [1 2] "float scale" x "bool mis" maybe "integer n" 1.5`)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, err := stmt.GetVec3Param("L"); !ok || err == nil {
		t.Error("short rgb should report an error")
	}
	if _, ok, err := stmt.GetFloatParam("scale"); !ok || err == nil {
		t.Error("bad float should report an error")
	}
	if _, ok, err := stmt.GetBoolParam("mis"); !ok || err == nil {
		t.Error("bad bool should report an error")
	}
	if _, ok, err := stmt.GetIntParam("n"); !ok || err == nil {
		t.Error("bad integer should report an error")
	}
	if _, ok, err := stmt.GetFloatParam("missing"); ok || err != nil {
		t.Error("missing parameter should be absent without error")
	}
	if _, ok := stmt.GetStringsParam("missing"); ok {
		t.Error("missing strings parameter should be absent")
	}
}

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		path  string
		valid bool
	}{
		{"scenes/sun.pbrt", true},
		{"web/../scenes/sun.pbrt", true},
		{"/home/user/project/scenes/sun.pbrt", true},
		{"", false},
		{"sun.pbrt", false},
		{"../scenes/sun.pbrt", false},
		{"scenes/sun.txt", false},
		{"scenes/sun\x00.pbrt", false},
		{"scenes/" + strings.Repeat("a", 600) + ".pbrt", false},
	}

	for _, tt := range tests {
		err := ValidateFilePath(tt.path)
		if tt.valid && err != nil {
			t.Errorf("ValidateFilePath(%q) = %v, want nil", tt.path, err)
		}
		if !tt.valid && !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ValidateFilePath(%q) = %v, want ErrInvalidPath", tt.path, err)
		}
	}
}

func TestLoadWorld(t *testing.T) {
	dir, err := os.MkdirTemp("", "world")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "sun.pbrt")
	if err := os.WriteFile(path, []byte(testWorld), 0o644); err != nil {
		t.Fatal(err)
	}

	world, err := LoadWorld(path, nil)
	if err != nil {
		t.Fatalf("LoadWorld: %v", err)
	}
	if len(world.LightSources) != 2 {
		t.Errorf("got %d lights, want 2", len(world.LightSources))
	}

	if _, err := LoadWorld(filepath.Join(dir, "missing.pbrt"), nil); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := LoadWorld("elsewhere/sun.pbrt", nil); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("error = %v, want ErrInvalidPath", err)
	}
}
