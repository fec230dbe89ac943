package scene

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/film"
	"github.com/df07/go-wavefront-tracer/pkg/geometry"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
	"github.com/df07/go-wavefront-tracer/pkg/lights"
	"github.com/df07/go-wavefront-tracer/pkg/shader"
	"github.com/df07/go-wavefront-tracer/pkg/wavefront"
)

var (
	black = core.NewVec3(0, 0, 0)
	white = core.NewVec3(1, 1, 1)
)

// defaultCameraConfig looks slightly down at the horizon so the lower part
// of the frame sees the ground
var defaultCameraConfig = wavefront.CameraConfig{
	Center:      core.NewVec3(0, 1, 4),
	LookAt:      core.NewVec3(0, 0.75, 0),
	Up:          core.NewVec3(0, 1, 0),
	Width:       400,
	AspectRatio: 16.0 / 9.0,
	VFov:        50,
}

type preset struct {
	info  SceneInfo
	build func(s *Scene) error
}

var presets = map[string]preset{
	"sky": {
		info: SceneInfo{ID: "sky", Name: "Sky", Description: "Gradient sky with multiple importance sampling"},
		build: func(s *Scene) error {
			return addSky(s, 0)
		},
	},
	"sun": {
		info: SceneInfo{ID: "sun", Name: "Sun", Description: "Sky and sun over a raytraced shadow catcher"},
		build: func(s *Scene) error {
			if err := addSky(s, 0); err != nil {
				return err
			}
			if err := addSun(s, "sun", core.NewVec3(0.3, 1, 0.2), 5, core.NewVec3(1, 0.95, 0.8), 50, 0); err != nil {
				return err
			}
			s.Passes.Background = true
			s.Config.Film.PassBackground = true
			_, err := s.AddShadowCatcher(geometry.NewPlane(black, core.NewVec3(0, 1, 0)), true)
			return err
		},
	},
	"studio": {
		info: SceneInfo{ID: "studio", Name: "Studio", Description: "Transparent film over a grey world and a shadow catcher disc"},
		build: func(s *Scene) error {
			world, err := s.Shaders.Add("world", shader.NewConstant(core.NewVec3(0.18, 0.18, 0.18), 1), 0)
			if err != nil {
				return err
			}
			s.Config.Background.SurfaceShader = world
			s.Config.Background.Transparent = true
			s.Config.Film.PassBackground = true
			s.Passes = film.Passes{Background: true}
			_, err = s.AddShadowCatcher(geometry.NewDisc(black, core.NewVec3(0, 1, 0), 4), false)
			return err
		},
	},
	"binary-sun": {
		info: SceneInfo{ID: "binary-sun", Name: "Binary Sun", Description: "Two overlapping suns, every hit light contributes"},
		build: func(s *Scene) error {
			if err := addSky(s, 0.25); err != nil {
				return err
			}
			if err := addSun(s, "sun.a", core.NewVec3(0, 0.3, -1), 20, core.NewVec3(1, 0.6, 0.3), 5, 0); err != nil {
				return err
			}
			if err := addSun(s, "sun.b", core.NewVec3(0.1, 0.35, -1), 20, core.NewVec3(0.3, 0.6, 1), 5, kernel.ShaderExcludeDiffuse); err != nil {
				return err
			}
			s.Config.Integrator.DistantLights = kernel.DistantLightsAll
			return nil
		},
	},
}

// addSky sets a gradient world that takes part in light sampling
func addSky(s *Scene, strength float64) error {
	var root shader.Node = shader.NewSkyGradient(core.NewVec3(0.5, 0.7, 1.0), white)
	if strength > 0 {
		root = shader.NewScale(root, core.NewVec3(strength, strength, strength))
	}
	world, err := s.Shaders.Add("world", root, kernel.ShaderUseMIS)
	if err != nil {
		return err
	}
	s.Config.Background.SurfaceShader = world
	s.Config.Background.UseMIS = true
	s.Lights = append(s.Lights, lights.NewBackgroundLight(world))
	return nil
}

// addSun adds a distant light with an angular diameter in degrees
func addSun(s *Scene, name string, direction core.Vec3, angleDegrees float64, color core.Vec3, strength float64, exclude kernel.ShaderFlag) error {
	id, err := s.Shaders.Add(name, shader.NewConstant(color, strength), exclude|kernel.ShaderUseMIS)
	if err != nil {
		return err
	}
	s.Lights = append(s.Lights, lights.NewDistantLight(direction, angleDegrees*math.Pi/180, id))
	return nil
}

// NewPreset creates a built-in scene
func NewPreset(name string, cameraOverrides ...wavefront.CameraConfig) (*Scene, error) {
	return newPreset(name, nil, cameraOverrides...)
}

func newPreset(name string, logger *slog.Logger, cameraOverrides ...wavefront.CameraConfig) (*Scene, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}

	s := newScene(name, logger)
	s.CameraConfig = defaultCameraConfig
	if len(cameraOverrides) > 0 {
		s.CameraConfig = wavefront.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}
	if err := p.build(s); err != nil {
		return nil, fmt.Errorf("building scene %s: %w", name, err)
	}

	s.Logger.Info("scene created", "scene", name,
		"shaders", s.Shaders.Len(), "lights", len(s.Lights), "primitives", s.Primitives.Len())
	return s, nil
}

// New resolves a scene id: a built-in preset name, or "pbrt:<name>" or a
// path for world files in the scenes directory
func New(id string, cameraOverrides ...wavefront.CameraConfig) (*Scene, error) {
	return NewWithLogger(id, nil, cameraOverrides...)
}

// NewWithLogger is New with scene building, texture loading and the
// scene's renderers logging to logger
func NewWithLogger(id string, logger *slog.Logger, cameraOverrides ...wavefront.CameraConfig) (*Scene, error) {
	if _, ok := presets[id]; ok {
		return newPreset(id, logger, cameraOverrides...)
	}
	if name, ok := strings.CutPrefix(id, "pbrt:"); ok {
		return newWorldScene(worldPath(name), logger, cameraOverrides...)
	}
	if strings.HasSuffix(id, ".pbrt") {
		return newWorldScene(id, logger, cameraOverrides...)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

// Presets lists the built-in scenes sorted by id
func Presets() []SceneInfo {
	infos := make([]SceneInfo, 0, len(presets))
	for _, p := range presets {
		info := p.info
		info.DisplayName = info.Name
		info.Group = builtInGroup
		info.Type = "builtin"
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})
	return infos
}
