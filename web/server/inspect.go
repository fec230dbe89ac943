package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-wavefront-tracer/pkg/core"
	"github.com/df07/go-wavefront-tracer/pkg/film"
	"github.com/df07/go-wavefront-tracer/pkg/geometry"
	"github.com/df07/go-wavefront-tracer/pkg/kernel"
	"github.com/df07/go-wavefront-tracer/pkg/scene"
	"github.com/df07/go-wavefront-tracer/pkg/wavefront"
)

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"` // Whether the ray passed through a shadow catcher
	ShaderName   string                 `json:"shaderName"`
	ShaderFlags  []string               `json:"shaderFlags"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	NextKernel   string                 `json:"nextKernel"`  // Stage the background stage scheduled
	Terminated   bool                   `json:"terminated"`
	Background   [3]float64             `json:"background"`  // Radiance added to the combined pass
	Transparent  float64                `json:"transparent"` // Transparency added to the pixel
	Properties   map[string]interface{} `json:"properties"`
}

// InspectResult holds everything one inspection ray produced
type InspectResult struct {
	Prim        int          // Shadow catcher hit, -1 for none
	Hit         geometry.Hit // Valid when Prim >= 0
	Shape       geometry.Shape
	Next        kernel.NextStage
	Combined    core.Vec3
	Transparent float64
}

// inspectPixel runs the background stage for a ray through the pixel center
// on a private one pixel buffer
func inspectPixel(sceneObj *scene.Scene, camera *wavefront.Camera, pixelX, pixelY int) InspectResult {
	buffer := film.NewRenderBuffer(1, 1, sceneObj.Passes)
	accum := film.NewAccumulator(buffer, sceneObj.Clamp)
	k := kernel.NewKernel(sceneObj.Config, sceneObj.Shaders, sceneObj.LightSampler(), accum)

	ray := camera.PixelRay(pixelX, pixelY, wavefront.PixelCenter)
	state := kernel.NewCameraPath(ray, 0)
	prim, hit := wavefront.TraceShadowCatcher(sceneObj.Primitives, sceneObj.Shaders, &state)
	next := k.ShadeBackground(&state)

	return InspectResult{
		Prim:        prim,
		Hit:         hit,
		Shape:       sceneObj.Primitives.Shape(prim),
		Next:        next,
		Combined:    buffer.Sum(film.PassCombined, 0),
		Transparent: buffer.TransparencySum(0),
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Plane:
		properties["point"] = vec3Array(geom.Point)
		properties["normal"] = vec3Array(geom.Normal)
		return "plane", properties

	case *geometry.Disc:
		properties["center"] = vec3Array(geom.Center)
		properties["normal"] = vec3Array(geom.Normal)
		properties["radius"] = geom.Radius
		return "disc", properties

	default:
		return "unknown", properties
	}
}

// shaderFlagNames lists the set bits of a shader's flags
func shaderFlagNames(flags kernel.ShaderFlag) []string {
	names := []struct {
		flag kernel.ShaderFlag
		name string
	}{
		{kernel.ShaderExcludeCamera, "exclude_camera"},
		{kernel.ShaderExcludeDiffuse, "exclude_diffuse"},
		{kernel.ShaderExcludeGlossy, "exclude_glossy"},
		{kernel.ShaderExcludeTransmit, "exclude_transmit"},
		{kernel.ShaderExcludeScatter, "exclude_scatter"},
		{kernel.ShaderHasRaytrace, "raytrace"},
		{kernel.ShaderUseMIS, "use_mis"},
	}
	set := []string{}
	for _, n := range names {
		if flags.Has(n.flag) {
			set = append(set, n.name)
		}
	}
	return set
}

func vec3Array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// handleInspect reports what the background stage does with one pixel
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}

	sceneObj, err := scene.New(req.Scene, wavefront.CameraConfig{Width: req.Width})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	camera := wavefront.NewCamera(sceneObj.CameraConfig)
	if pixelX < 0 || pixelX >= camera.Width() || pixelY < 0 || pixelY >= camera.Height() {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Pixel coordinates out of bounds for %dx%d", camera.Width(), camera.Height()),
		})
		return
	}

	result := inspectPixel(sceneObj, camera, pixelX, pixelY)
	response := InspectResponse{
		Hit:         result.Prim >= 0,
		NextKernel:  result.Next.Kernel.String(),
		Terminated:  result.Next.Terminated(),
		Background:  vec3Array(result.Combined),
		Transparent: result.Transparent,
		Properties:  map[string]interface{}{},
	}
	if result.Prim >= 0 {
		shader := sceneObj.Shaders.ShaderForPrim(result.Prim)
		geometryType, geometryProps := extractGeometryInfo(result.Shape)
		response.ShaderName = sceneObj.Shaders.Name(shader)
		response.ShaderFlags = shaderFlagNames(sceneObj.Shaders.Flags(shader))
		response.GeometryType = geometryType
		response.Point = vec3Array(result.Hit.Point)
		response.Normal = vec3Array(result.Hit.Normal)
		response.Distance = result.Hit.T
		response.FrontFace = result.Hit.FrontFace
		response.Properties["geometry"] = geometryProps
	}
	writeJSON(w, http.StatusOK, response)
}
