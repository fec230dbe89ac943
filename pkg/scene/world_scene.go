package scene

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/geometry"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
	"github.com/df07/go-wavefront-tracer/pkg/lights"
	"github.com/df07/go-wavefront-tracer/pkg/loaders"
	"github.com/df07/go-wavefront-tracer/pkg/shader"
	"github.com/df07/go-wavefront-tracer/pkg/wavefront"
)

// NewWorldScene creates a scene from a world file
func NewWorldScene(path string, cameraOverrides ...wavefront.CameraConfig) (*Scene, error) {
	return newWorldScene(path, nil, cameraOverrides...)
}

func newWorldScene(path string, logger *slog.Logger, cameraOverrides ...wavefront.CameraConfig) (*Scene, error) {
	world, err := loaders.LoadWorld(path, logger)
	if err != nil {
		return nil, fmt.Errorf("loading world: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := fromWorld(name, world, filepath.Dir(path), logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(cameraOverrides) > 0 {
		s.CameraConfig = wavefront.MergeCameraConfig(s.CameraConfig, cameraOverrides[0])
	}
	return s, nil
}

// FromWorld converts a parsed world into a scene. Relative texture paths
// are resolved against baseDir.
func FromWorld(name string, world *loaders.World, baseDir string) (*Scene, error) {
	return fromWorld(name, world, baseDir, nil)
}

func fromWorld(name string, world *loaders.World, baseDir string, logger *slog.Logger) (*Scene, error) {
	s := newScene(name, logger)

	if err := convertCamera(world, s); err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	if err := convertFilm(world.Film, s); err != nil {
		return nil, fmt.Errorf("film: %w", err)
	}
	if err := convertIntegrator(world.Integrator, s); err != nil {
		return nil, fmt.Errorf("integrator: %w", err)
	}
	for _, stmt := range world.Ignored {
		if stmt.Type == "Sampler" {
			if n, ok, err := stmt.GetIntParam("pixelsamples"); err != nil {
				return nil, fmt.Errorf("sampler: %w", err)
			} else if ok && n > 0 {
				s.SamplesPerPixel = n
			}
			continue
		}
		s.Logger.Warn("ignoring directive", "scene", name, "directive", stmt.Type, "line", stmt.Line)
	}

	for i := range world.LightSources {
		if err := convertLight(&world.LightSources[i], s, baseDir); err != nil {
			return nil, fmt.Errorf("line %d: %w", world.LightSources[i].Line, err)
		}
	}
	for i := range world.Shapes {
		if err := convertShape(&world.Shapes[i], s); err != nil {
			return nil, fmt.Errorf("line %d: %w", world.Shapes[i].Line, err)
		}
	}

	s.Logger.Info("scene created", "scene", name,
		"shaders", s.Shaders.Len(), "lights", len(s.Lights), "primitives", s.Primitives.Len())
	return s, nil
}

func convertCamera(world *loaders.World, s *Scene) error {
	s.CameraConfig = defaultCameraConfig
	if world.Eye != nil {
		s.CameraConfig.Center = *world.Eye
	}
	if world.Target != nil {
		s.CameraConfig.LookAt = *world.Target
	}
	if world.Up != nil {
		s.CameraConfig.Up = *world.Up
	}

	if world.Camera == nil {
		return nil
	}
	if world.Camera.Subtype != "perspective" {
		return fmt.Errorf("unsupported camera type %q", world.Camera.Subtype)
	}
	fov, ok, err := world.Camera.GetFloatParam("fov")
	if err != nil {
		return err
	}
	if ok {
		s.CameraConfig.VFov = fov
	}
	return nil
}

func convertFilm(stmt *loaders.Statement, s *Scene) error {
	if stmt == nil {
		return nil
	}

	xres, hasX, err := stmt.GetIntParam("xresolution")
	if err != nil {
		return err
	}
	yres, hasY, err := stmt.GetIntParam("yresolution")
	if err != nil {
		return err
	}
	if hasX && xres > 0 {
		s.CameraConfig.Width = xres
	}
	if hasX && hasY && xres > 0 && yres > 0 {
		s.CameraConfig.AspectRatio = float64(xres) / float64(yres)
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"transparent", &s.Config.Background.Transparent},
		{"passbackground", &s.Config.Film.PassBackground},
		{"passao", &s.Config.Film.PassAO},
		{"passemission", &s.Passes.Emission},
	}
	for _, b := range bools {
		v, ok, err := stmt.GetBoolParam(b.name)
		if err != nil {
			return err
		}
		if ok {
			*b.dst = v
		}
	}
	s.Passes.Background = s.Config.Film.PassBackground

	floats := []struct {
		name string
		dst  *float64
	}{
		{"clampdirect", &s.Clamp.Direct},
		{"clampindirect", &s.Clamp.Indirect},
	}
	for _, f := range floats {
		v, ok, err := stmt.GetFloatParam(f.name)
		if err != nil {
			return err
		}
		if ok {
			*f.dst = v
		}
	}
	return nil
}

func convertIntegrator(stmt *loaders.Statement, s *Scene) error {
	if stmt == nil {
		return nil
	}

	factor, ok, err := stmt.GetFloatParam("aobouncesfactor")
	if err != nil {
		return err
	}
	if ok {
		s.Config.Integrator.AOBouncesFactor = factor
	}

	if name, ok := stmt.GetStringParam("distantlights"); ok {
		policy, err := kernel.ParseDistantLightPolicy(name)
		if err != nil {
			return err
		}
		s.Config.Integrator.DistantLights = policy
	}

	features := []struct {
		name string
		dst  *bool
	}{
		{"background", &s.Config.Features.Background},
		{"backgroundmis", &s.Config.Features.BackgroundMIS},
		{"shadowcatcher", &s.Config.Features.ShadowCatcher},
		{"passes", &s.Config.Features.Passes},
	}
	for _, f := range features {
		v, ok, err := stmt.GetBoolParam(f.name)
		if err != nil {
			return err
		}
		if ok {
			*f.dst = v
		}
	}
	return nil
}

// lightShaderFlags reads the visibility exclusions shared by all lights
func lightShaderFlags(stmt *loaders.Statement) (kernel.ShaderFlag, error) {
	names, _ := stmt.GetStringsParam("exclude")
	flags, unknown := kernel.ParseExclusion(names)
	if len(unknown) > 0 {
		return 0, fmt.Errorf("unknown visibility exclusion %q", strings.Join(unknown, ", "))
	}
	mis, ok, err := stmt.GetBoolParam("mis")
	if err != nil {
		return 0, err
	}
	if mis || !ok {
		flags |= kernel.ShaderUseMIS
	}
	return flags, nil
}

// emission reads "rgb L" scaled by "float scale"
func emission(stmt *loaders.Statement) (core.Vec3, float64, error) {
	L, ok, err := stmt.GetVec3Param("L")
	if err != nil {
		return core.Vec3{}, 0, err
	}
	if !ok {
		L = white
	}
	scale, ok, err := stmt.GetFloatParam("scale")
	if err != nil {
		return core.Vec3{}, 0, err
	}
	if !ok {
		scale = 1
	}
	return L, scale, nil
}

func convertLight(stmt *loaders.Statement, s *Scene, baseDir string) error {
	flags, err := lightShaderFlags(stmt)
	if err != nil {
		return err
	}
	L, scale, err := emission(stmt)
	if err != nil {
		return err
	}

	switch stmt.Subtype {
	case "infinite":
		if s.Config.Background.SurfaceShader != kernel.ShaderNone {
			return fmt.Errorf("only one infinite light is supported")
		}
		root, err := worldShader(stmt, L, scale, baseDir, s.Logger)
		if err != nil {
			return err
		}
		id, err := s.Shaders.Add("world", root, flags)
		if err != nil {
			return err
		}
		s.Config.Background.SurfaceShader = id
		s.Config.Background.UseMIS = flags.Has(kernel.ShaderUseMIS)
		s.Lights = append(s.Lights, lights.NewBackgroundLight(id))

	case "distant":
		from, _, err := stmt.GetVec3Param("from")
		if err != nil {
			return err
		}
		to, ok, err := stmt.GetVec3Param("to")
		if err != nil {
			return err
		}
		if !ok {
			to = core.NewVec3(0, 0, 1)
		}
		direction := from.Subtract(to)
		if direction.IsZero() {
			return fmt.Errorf("distant light with identical from and to")
		}
		angle, _, err := stmt.GetFloatParam("angle")
		if err != nil {
			return err
		}
		id, err := s.Shaders.Add(fmt.Sprintf("distant.%d", len(s.Lights)), shader.NewConstant(L, scale), flags)
		if err != nil {
			return err
		}
		s.Lights = append(s.Lights, lights.NewDistantLight(direction, angle*math.Pi/180, id))

	case "point":
		from, _, err := stmt.GetVec3Param("from")
		if err != nil {
			return err
		}
		id, err := s.Shaders.Add(fmt.Sprintf("point.%d", len(s.Lights)), shader.NewConstant(L, scale), flags)
		if err != nil {
			return err
		}
		s.Lights = append(s.Lights, lights.NewPointLight(from, id))

	default:
		return fmt.Errorf("unsupported light type %q", stmt.Subtype)
	}
	return nil
}

// worldShader builds the shader graph of an infinite light: an environment
// image, a sky gradient or a constant color, in that order of preference.
// "float blend" mixes an environment image toward the gradient.
func worldShader(stmt *loaders.Statement, L core.Vec3, scale float64, baseDir string, logger *slog.Logger) (shader.Node, error) {
	gradient, hasGradient, err := gradientShader(stmt, L, scale)
	if err != nil {
		return nil, err
	}

	filename, ok := stmt.GetStringParam("filename")
	if !ok {
		if hasGradient {
			return gradient, nil
		}
		return shader.NewConstant(L, scale), nil
	}

	if !filepath.IsAbs(filename) {
		filename = filepath.Join(baseDir, filename)
	}
	texture, err := shader.LoadTexture(filename, logger)
	if err != nil {
		return nil, err
	}
	var root shader.Node = shader.NewEnvironment(texture, scale)
	if L != white {
		root = shader.NewScale(root, L)
	}

	blend, ok, err := stmt.GetFloatParam("blend")
	if err != nil {
		return nil, err
	}
	if ok && blend > 0 {
		if !hasGradient {
			return nil, fmt.Errorf("blend needs topColor or bottomColor")
		}
		root = shader.NewMix(root, gradient, math.Min(blend, 1))
	}
	return root, nil
}

// gradientShader reads "rgb topColor" and "rgb bottomColor". Either one
// alone defaults the other to white.
func gradientShader(stmt *loaders.Statement, L core.Vec3, scale float64) (shader.Node, bool, error) {
	top, hasTop, err := stmt.GetVec3Param("topColor")
	if err != nil {
		return nil, false, err
	}
	bottom, hasBottom, err := stmt.GetVec3Param("bottomColor")
	if err != nil {
		return nil, false, err
	}
	if !hasTop && !hasBottom {
		return nil, false, nil
	}
	if !hasTop {
		top = white
	}
	if !hasBottom {
		bottom = white
	}
	return shader.NewScale(shader.NewSkyGradient(top, bottom), L.Multiply(scale)), true, nil
}

func convertShape(stmt *loaders.Statement, s *Scene) error {
	if stmt.Subtype != "shadowcatcher" {
		return fmt.Errorf("unsupported shape type %q", stmt.Subtype)
	}

	p, _, err := stmt.GetVec3Param("p")
	if err != nil {
		return err
	}
	n, ok, err := stmt.GetVec3Param("n")
	if err != nil {
		return err
	}
	if !ok {
		n = core.NewVec3(0, 1, 0)
	}
	radius, _, err := stmt.GetFloatParam("radius")
	if err != nil {
		return err
	}
	raytrace, _, err := stmt.GetBoolParam("raytrace")
	if err != nil {
		return err
	}

	var shape geometry.Shape = geometry.NewPlane(p, n)
	if radius > 0 {
		shape = geometry.NewDisc(p, n, radius)
	}
	_, err = s.AddShadowCatcher(shape, raytrace)
	return err
}
