package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/model"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// DiffuseSampler is the sampler configuration used for diffuse textures: clamped addressing,
// linear magnification, nearest minification and mip selection.
var DiffuseSampler = common.SamplerStagingData{
	AddressModeU: wgpu.AddressModeClampToEdge,
	AddressModeV: wgpu.AddressModeClampToEdge,
	AddressModeW: wgpu.AddressModeClampToEdge,
	MagFilter:    wgpu.FilterModeLinear,
	MinFilter:    wgpu.FilterModeNearest,
	MipmapFilter: wgpu.MipmapFilterModeNearest,
}

type loader struct {
	mu sync.RWMutex

	source   AssetSource
	renderer renderer.Renderer
	workers  int
	pool     worker.DynamicWorkerPool

	modelCache   map[string]model.Model
	textureCache map[string]*common.TextureStagingData

	backends []loaderBackend
}

// Loader fetches assets through an AssetSource and turns them into engine resources.
//
// Asset failures are returned as an *AssetError whose Kind is ErrIO, ErrDecode or ErrParse;
// GPU upload failures are returned as plain wrapped errors. Decoded textures and loaded models
// are cached by name.
type Loader interface {
	// LoadText reads a UTF-8 text asset such as a shader.
	//
	// Parameters:
	//   - ctx: cancels the read
	//   - name: the asset name
	//
	// Returns:
	//   - string: the text
	//   - error: ErrIO if the read fails, ErrDecode if the bytes are not UTF-8
	LoadText(ctx context.Context, name string) (string, error)

	// LoadBinary reads an asset's raw bytes.
	LoadBinary(ctx context.Context, name string) ([]byte, error)

	// LoadTexture reads and decodes an image asset into RGBA8 pixels.
	//
	// Parameters:
	//   - ctx: cancels the read
	//   - name: the asset name
	//
	// Returns:
	//   - *common.TextureStagingData: the decoded pixels, shared with later calls for the same name
	//   - error: ErrIO if the read fails, ErrDecode if the bytes are not a supported image
	LoadTexture(ctx context.Context, name string) (*common.TextureStagingData, error)

	// LoadModel imports a model file, decodes its material textures concurrently and, when the
	// loader has a Renderer, uploads meshes and material bind groups to the GPU.
	//
	// Parameters:
	//   - ctx: cancels reads
	//   - name: the model asset name; the extension selects the format
	//   - fragmentShader: the shader whose material annotations describe the material bind group,
	//     or nil to skip material GPU setup
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: ErrIO, ErrParse or ErrDecode wrapped in an *AssetError, or a GPU upload error
	LoadModel(ctx context.Context, name string, fragmentShader shader.Shader) (model.Model, error)

	// Get returns a cached model, or nil.
	Get(name string) model.Model

	// Models returns a copy of the model cache.
	Models() map[string]model.Model

	// Release stops the texture decode workers. Cached models stay owned by their users.
	Release()

	// InitMaterialGPU uploads a material's diffuse texture (or its solid-color fallback) and
	// sampler and creates the bind group the fragment shader's material annotations describe.
	//
	// Parameters:
	//   - mat: the material to initialize
	//   - fragmentShader: the shader declaring the material bind group
	//   - providerName: the label for the created BindGroupProvider
	//
	// Returns:
	//   - error: error if there is no Renderer or GPU resource creation fails
	InitMaterialGPU(mat material.Material, fragmentShader shader.Shader, providerName string) error
}

var _ Loader = &loader{}

// NewLoader creates a Loader reading from source.
//
// Parameters:
//   - source: where assets are read from
//   - options: a variadic list of options to configure the loader
//
// Returns:
//   - Loader: the configured loader
func NewLoader(source AssetSource, options ...LoaderBuilderOption) Loader {
	l := &loader{
		source:       source,
		workers:      4,
		modelCache:   make(map[string]model.Model),
		textureCache: make(map[string]*common.TextureStagingData),
		backends:     []loaderBackend{newOBJLoaderBackend()},
	}
	for _, option := range options {
		option(l)
	}
	// Created after options so WithWorkers can size it; shared by every LoadModel.
	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	return l
}

func (l *loader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pool != nil {
		l.pool.Stop()
		l.pool = nil
	}
}

func (l *loader) read(ctx context.Context, op, name string) ([]byte, error) {
	data, err := l.source.Read(ctx, name)
	if err != nil {
		return nil, newAssetError(op, l.source.Location(name), ErrIO, err)
	}
	return data, nil
}

func (l *loader) LoadText(ctx context.Context, name string) (string, error) {
	data, err := l.read(ctx, "load_text", name)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", newAssetError("load_text", name, ErrDecode, fmt.Errorf("not valid UTF-8"))
	}
	return string(data), nil
}

func (l *loader) LoadBinary(ctx context.Context, name string) ([]byte, error) {
	return l.read(ctx, "load_binary", name)
}

func (l *loader) LoadTexture(ctx context.Context, name string) (*common.TextureStagingData, error) {
	l.mu.RLock()
	if cached, ok := l.textureCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	data, err := l.read(ctx, "load_texture", name)
	if err != nil {
		return nil, err
	}
	tex, err := common.DecodeImage(data)
	if err != nil {
		return nil, newAssetError("load_texture", name, ErrDecode, err)
	}

	l.mu.Lock()
	l.textureCache[name] = tex
	l.mu.Unlock()
	common.Logger().Debug("texture decoded", slog.String("name", name), slog.Int("width", int(tex.Width)), slog.Int("height", int(tex.Height)))
	return tex, nil
}

func (l *loader) LoadModel(ctx context.Context, name string, fragmentShader shader.Shader) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(name)
	if err != nil {
		return nil, newAssetError("load_model", name, ErrParse, err)
	}
	data, err := l.read(ctx, "load_model", name)
	if err != nil {
		return nil, err
	}
	imported, err := backend.Import(ctx, name, data, l.source.Read)
	if err != nil {
		return nil, newAssetError("load_model", name, ErrParse, err)
	}

	textures, err := l.decodeMaterialTextures(ctx, imported.Materials)
	if err != nil {
		return nil, newAssetError("load_model", name, ErrDecode, err)
	}

	m, err := l.importedToModel(imported, textures, fragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload model %s: %w", name, err)
	}

	l.mu.Lock()
	l.modelCache[name] = m
	l.mu.Unlock()
	common.Logger().Info("model loaded",
		slog.String("name", name),
		slog.Int("meshes", len(m.Meshes())),
		slog.Int("materials", len(m.Materials())),
	)
	return m, nil
}

// decodeMaterialTextures loads every distinct diffuse texture on the worker pool. The returned
// map is keyed by texture path.
func (l *loader) decodeMaterialTextures(ctx context.Context, materials []model.ImportedMaterial) (map[string]*common.TextureStagingData, error) {
	var paths []string
	for _, m := range materials {
		if m.DiffuseTexturePath != "" && !slices.Contains(paths, m.DiffuseTexturePath) {
			paths = append(paths, m.DiffuseTexturePath)
		}
	}
	if len(paths) == 0 {
		return nil, nil
	}

	l.mu.RLock()
	pool := l.pool
	l.mu.RUnlock()
	if pool == nil {
		return nil, fmt.Errorf("loader released")
	}

	results := make([]*common.TextureStagingData, len(paths))
	errs := make([]error, len(paths))

	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		idx, texPath := i, p
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				results[idx], errs[idx] = l.LoadTexture(ctx, texPath)
				return nil, nil
			},
		})
	}
	wg.Wait()

	out := make(map[string]*common.TextureStagingData, len(paths))
	for i, p := range paths {
		if errs[i] != nil {
			return nil, errs[i]
		}
		out[p] = results[i]
	}
	return out, nil
}

func (l *loader) resolveBackend(name string) (loaderBackend, error) {
	ext := strings.ToLower(path.Ext(name))
	for _, b := range l.backends {
		if slices.Contains(b.Extensions(), ext) {
			return b, nil
		}
	}
	return nil, fmt.Errorf("unsupported model format: %q", ext)
}

func (l *loader) importedToModel(imported *model.ImportedModel, textures map[string]*common.TextureStagingData, fragmentShader shader.Shader) (model.Model, error) {
	importedMats := imported.Materials
	if len(importedMats) == 0 {
		importedMats = []model.ImportedMaterial{{Name: "default", DiffuseColor: [4]float32{1, 1, 1, 1}}}
	}

	var meshes []*model.Mesh
	var mats []material.Material
	release := func() {
		for _, m := range meshes {
			m.Provider.Release()
		}
		for _, m := range mats {
			m.Release()
		}
	}

	for i, im := range imported.Meshes {
		matIdx := im.MaterialIndex
		if matIdx < 0 || matIdx >= len(importedMats) {
			matIdx = 0
		}
		mesh := &model.Mesh{
			Name:          im.Name,
			Provider:      bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s_mesh_%d", imported.Name, i)),
			MaterialIndex: matIdx,
			VertexData:    model.MarshalModelVertices(im.Vertices),
			IndexData:     model.MarshalIndices32(im.Indices),
			IndexCount:    len(im.Indices),
		}
		if l.renderer != nil {
			if err := l.renderer.InitMeshBuffers(mesh.Provider, mesh.VertexData, mesh.IndexData, mesh.IndexCount, wgpu.IndexFormatUint32); err != nil {
				mesh.Provider.Release()
				release()
				return nil, fmt.Errorf("failed to init mesh buffers for %q: %w", im.Name, err)
			}
		}
		meshes = append(meshes, mesh)
	}

	for i, imp := range importedMats {
		mat := material.NewMaterial(
			material.WithName(imp.Name),
			material.WithDiffuseColor(imp.DiffuseColor),
			material.WithDiffuseTexturePath(imp.DiffuseTexturePath),
			material.WithDiffuseTexture(textures[imp.DiffuseTexturePath]),
			material.WithPipelineKey(imported.Name),
		)
		if l.renderer != nil && fragmentShader != nil {
			if err := l.initMaterialGPU(mat, fragmentShader, fmt.Sprintf("%s_material_%d", imported.Name, i)); err != nil {
				release()
				return nil, fmt.Errorf("failed to init material GPU resources for %q material %d: %w", imported.Name, i, err)
			}
		}
		mats = append(mats, mat)
	}

	return model.NewModel(
		model.WithName(imported.Name),
		model.WithMeshes(meshes...),
		model.WithMaterials(mats...),
		model.WithBoundingRadius(model.ComputeBoundingRadius(imported.Meshes)),
	), nil
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

func (l *loader) InitMaterialGPU(mat material.Material, fragmentShader shader.Shader, providerName string) error {
	if l.renderer == nil {
		return fmt.Errorf("loader: cannot InitMaterialGPU without a Renderer")
	}
	return l.initMaterialGPU(mat, fragmentShader, providerName)
}

// initMaterialGPU binds the material's diffuse texture and sampler at the bindings the shader's
// material provider annotations name. A shader without a diffuse texture declaration needs no
// material bind group.
func (l *loader) initMaterialGPU(mat material.Material, fragmentShader shader.Shader, providerName string) error {
	texDecl, ok := fragmentShader.FindDeclaration(shader.AnnotationArgMaterial, shader.AnnotationArgDiffuseTexture)
	if !ok || texDecl.Group == nil || texDecl.Binding == nil {
		return nil
	}
	group := *texDecl.Group

	provider := bind_group_provider.NewBindGroupProvider(providerName)
	if err := l.renderer.InitTextureView(provider, *texDecl.Binding, *material.FallbackTexture(mat)); err != nil {
		provider.Release()
		return fmt.Errorf("failed to init diffuse texture view: %w", err)
	}
	if samplerDecl, ok := fragmentShader.FindDeclaration(shader.AnnotationArgMaterial, shader.AnnotationArgDiffuseSampler); ok && samplerDecl.Binding != nil {
		if err := l.renderer.InitSampler(provider, *samplerDecl.Binding, DiffuseSampler); err != nil {
			provider.Release()
			return fmt.Errorf("failed to init diffuse sampler: %w", err)
		}
	}

	if err := l.renderer.InitBindGroup(provider, fragmentShader.BindGroupLayoutDescriptor(group)); err != nil {
		provider.Release()
		return fmt.Errorf("failed to init material bind group: %w", err)
	}
	mat.SetBindGroupProvider(provider)
	return nil
}
