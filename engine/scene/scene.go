package scene

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/camera"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/loader"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/model"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PentagonPipelineKey is the pipeline key used when no model is configured.
const PentagonPipelineKey = "pentagon"

// Scene owns every GPU resource the demo draws: the mesh (the built-in pentagon or a loaded
// model), the instance grid, the diffuse material, the camera uniform and the render pipeline.
// Only the camera uniform changes after construction.
type Scene interface {
	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Controller returns the controller that moves the camera.
	Controller() camera.CameraController

	// Instances returns the instance transforms uploaded to the instance buffer.
	Instances() []model.Instance

	// PipelineKey returns the key of the pipeline the scene draws with.
	PipelineKey() string

	// ProcessKey forwards a key press or release to the camera controller.
	//
	// Returns:
	//   - bool: true if the controller consumed the key
	ProcessKey(key int, pressed bool) bool

	// Resize updates the camera aspect ratio. Sizes with a zero dimension are ignored.
	Resize(width, height int)

	// Update moves the camera by the held keys and queues the new view-projection matrix for
	// upload.
	//
	// Returns:
	//   - error: error if the uniform write fails
	Update() error

	// Draw records one indexed, instanced draw per mesh. Must be called between the renderer's
	// BeginFrame and EndFrame.
	//
	// Returns:
	//   - error: the first draw call error
	Draw() error

	// Release frees the scene's GPU resources. Pipelines are owned by the renderer.
	Release()
}

// drawItem is one mesh with the material it is drawn with.
type drawItem struct {
	mesh     bind_group_provider.BindGroupProvider
	material material.Material
}

type scene struct {
	mu *sync.Mutex

	renderer renderer.Renderer
	loader   loader.Loader

	cam        camera.Camera
	controller camera.CameraController
	uniform    *camera.GPUCameraUniform

	perRow           int
	spacing          float32
	instances        []model.Instance
	instanceProvider bind_group_provider.BindGroupProvider

	shaderName      string
	modelShaderName string
	textureName     string
	modelName       string
	validateShaders bool

	vertexShader   shader.Shader
	fragmentShader shader.Shader
	pipelineKey    string

	cameraGroup   int
	cameraBinding int
	materialGroup int // -1 when the fragment shader samples no material
	bindGroupSize int

	items []drawItem
	model model.Model
}

var _ Scene = &scene{}

// NewScene loads the scene's assets and builds its GPU resources in order: mesh buffers,
// instance buffer, diffuse texture with sampler and bind group, camera uniform with bind group,
// and finally the render pipeline.
//
// Parameters:
//   - ctx: cancels asset loading
//   - r: the renderer to create resources on
//   - ld: the loader assets are read through; it must share r
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the ready-to-draw scene
//   - error: an asset error from the loader, or a resource creation error
func NewScene(ctx context.Context, r renderer.Renderer, ld loader.Loader, options ...SceneBuilderOption) (Scene, error) {
	if r == nil || ld == nil {
		return nil, fmt.Errorf("scene: a renderer and a loader are required")
	}
	s := &scene{
		mu:              &sync.Mutex{},
		renderer:        r,
		loader:          ld,
		uniform:         camera.NewGPUCameraUniform(),
		perRow:          10,
		spacing:         3,
		shaderName:      "shader.wgsl",
		modelShaderName: "model_shader.wgsl",
		textureName:     "happy-tree.png",
	}
	for _, option := range options {
		option(s)
	}
	if s.cam == nil {
		s.cam = camera.NewCamera()
	}
	if s.controller == nil {
		s.controller = camera.NewCameraController()
	}
	if w, h := r.SurfaceSize(); w > 0 && h > 0 {
		s.cam.SetAspect(float32(w) / float32(h))
	}

	if err := s.build(ctx); err != nil {
		s.Release()
		return nil, err
	}
	common.Logger().Info("scene ready",
		slog.String("pipeline", s.pipelineKey),
		slog.Int("meshes", len(s.items)),
		slog.Int("instances", len(s.instances)),
	)
	return s, nil
}

func (s *scene) build(ctx context.Context) error {
	shaderName := s.shaderName
	if s.modelName != "" {
		shaderName = s.modelShaderName
	}
	if err := s.initShaders(ctx, shaderName); err != nil {
		return err
	}

	if s.modelName != "" {
		// the loader uploads model meshes and materials together
		if err := s.initModel(ctx); err != nil {
			return err
		}
		if err := s.initInstances(); err != nil {
			return err
		}
	} else {
		if err := s.initPentagon(); err != nil {
			return err
		}
		if err := s.initInstances(); err != nil {
			return err
		}
		if err := s.initPentagonMaterial(ctx); err != nil {
			return err
		}
	}

	if err := s.initCamera(); err != nil {
		return err
	}

	p := pipeline.NewPipeline(s.pipelineKey,
		pipeline.WithVertexShader(s.vertexShader),
		pipeline.WithFragmentShader(s.fragmentShader),
	)
	if err := s.renderer.RegisterPipelines(p); err != nil {
		return fmt.Errorf("failed to register pipeline %q: %w", s.pipelineKey, err)
	}
	return nil
}

// initShaders builds the vertex and fragment stages from one WGSL file.
func (s *scene) initShaders(ctx context.Context, name string) error {
	source, err := s.loader.LoadText(ctx, name)
	if err != nil {
		return err
	}
	vs, err := shader.NewShader(name+"_vs", shader.ShaderTypeVertex, source)
	if err != nil {
		return fmt.Errorf("failed to build vertex shader: %w", err)
	}
	fs, err := shader.NewShader(name+"_fs", shader.ShaderTypeFragment, source)
	if err != nil {
		return fmt.Errorf("failed to build fragment shader: %w", err)
	}
	if s.validateShaders {
		if err := shader.Validate(vs); err != nil {
			return err
		}
	}
	s.vertexShader, s.fragmentShader = vs, fs
	return nil
}

func (s *scene) initPentagon() error {
	s.pipelineKey = PentagonPipelineKey

	mesh := bind_group_provider.NewBindGroupProvider("pentagon_mesh")
	if err := s.renderer.InitMeshBuffers(mesh,
		model.MarshalVertices(model.PentagonVertices),
		model.MarshalIndices16(model.PentagonIndices),
		len(model.PentagonIndices),
		wgpu.IndexFormatUint16,
	); err != nil {
		return fmt.Errorf("failed to init pentagon buffers: %w", err)
	}
	s.items = append(s.items, drawItem{mesh: mesh})
	return nil
}

func (s *scene) initPentagonMaterial(ctx context.Context) error {
	tex, err := s.loader.LoadTexture(ctx, s.textureName)
	if err != nil {
		return err
	}
	mat := material.NewMaterial(
		material.WithName(s.textureName),
		material.WithDiffuseTexturePath(s.textureName),
		material.WithDiffuseTexture(tex),
		material.WithPipelineKey(s.pipelineKey),
	)
	s.items[0].material = mat
	return s.loader.InitMaterialGPU(mat, s.fragmentShader, "diffuse_bind_group")
}

func (s *scene) initModel(ctx context.Context) error {
	m, err := s.loader.LoadModel(ctx, s.modelName, s.fragmentShader)
	if err != nil {
		return err
	}
	s.model = m
	s.pipelineKey = m.Name()
	for _, mesh := range m.Meshes() {
		s.items = append(s.items, drawItem{mesh: mesh.Provider, material: m.MaterialFor(mesh)})
	}
	return nil
}

func (s *scene) initInstances() error {
	s.instances = model.NewInstanceGrid(s.perRow, s.spacing)
	s.instanceProvider = bind_group_provider.NewBindGroupProvider("instances")
	data := model.MarshalInstances(model.RawInstances(s.instances))
	if err := s.renderer.InitInstanceBuffer(s.instanceProvider, data, len(s.instances)); err != nil {
		return fmt.Errorf("failed to init instance buffer: %w", err)
	}
	return nil
}

// initCamera creates the camera uniform bind group at the group and binding the vertex shader
// declares for it, and uploads the initial view-projection.
func (s *scene) initCamera() error {
	decl, ok := s.vertexShader.FindDeclaration(shader.AnnotationArgCamera, "")
	if !ok || decl.Group == nil || decl.Binding == nil {
		return fmt.Errorf("vertex shader %s declares no camera group", s.vertexShader.Key())
	}
	s.cameraGroup, s.cameraBinding = *decl.Group, *decl.Binding

	if err := s.renderer.InitBindGroup(s.cam.BindGroupProvider(), s.vertexShader.BindGroupLayoutDescriptor(s.cameraGroup)); err != nil {
		return fmt.Errorf("failed to init camera bind group: %w", err)
	}

	s.materialGroup = -1
	s.bindGroupSize = s.cameraGroup + 1
	if texDecl, ok := s.fragmentShader.FindDeclaration(shader.AnnotationArgMaterial, shader.AnnotationArgDiffuseTexture); ok && texDecl.Group != nil {
		s.materialGroup = *texDecl.Group
		s.bindGroupSize = max(s.bindGroupSize, s.materialGroup+1)
	}
	return s.writeCamera()
}

func (s *scene) writeCamera() error {
	s.uniform.UpdateViewProj(s.cam)
	return s.renderer.WriteBuffers([]bind_group_provider.BufferWrite{{
		Provider: s.cam.BindGroupProvider(),
		Binding:  s.cameraBinding,
		Data:     s.uniform.Marshal(),
	}})
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Controller() camera.CameraController {
	return s.controller
}

func (s *scene) Instances() []model.Instance {
	return s.instances
}

func (s *scene) PipelineKey() string {
	return s.pipelineKey
}

func (s *scene) ProcessKey(key int, pressed bool) bool {
	return s.controller.ProcessKey(key, pressed)
}

func (s *scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.cam.SetAspect(float32(width) / float32(height))
}

func (s *scene) Update() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.UpdateCamera(s.cam)
	return s.writeCamera()
}

func (s *scene) Draw() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		groups := make([]bind_group_provider.BindGroupProvider, s.bindGroupSize)
		groups[s.cameraGroup] = s.cam.BindGroupProvider()
		if s.materialGroup >= 0 && item.material != nil {
			groups[s.materialGroup] = item.material.BindGroupProvider()
		}
		if err := s.renderer.DrawCall(s.pipelineKey, item.mesh, s.instanceProvider, groups); err != nil {
			return err
		}
	}
	return nil
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model != nil {
		s.model.Release()
		s.model = nil
	} else {
		for _, item := range s.items {
			item.mesh.Release()
			if item.material != nil {
				item.material.Release()
			}
		}
	}
	s.items = nil
	if s.instanceProvider != nil {
		s.instanceProvider.Release()
		s.instanceProvider = nil
	}
	if s.cam != nil {
		s.cam.BindGroupProvider().Release()
	}
}
