package loader

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"cogentcore.org/core/math32"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/model"
)

// objLoaderBackendImpl imports Wavefront OBJ files with their MTL material libraries.
// Faces are triangulated as fans and every distinct position/texcoord/normal triple becomes one
// vertex, so each mesh needs a single index buffer.
type objLoaderBackendImpl struct{}

var _ loaderBackend = &objLoaderBackendImpl{}

func newOBJLoaderBackend() loaderBackend {
	return &objLoaderBackendImpl{}
}

func (b *objLoaderBackendImpl) Extensions() []string {
	return []string{".obj"}
}

// objVertexKey identifies a face corner. Indices are 0-based; -1 marks an absent attribute.
type objVertexKey struct {
	v, vt, vn int
}

type objMeshBuilder struct {
	mesh  model.ImportedMesh
	index map[objVertexKey]uint32
}

func newOBJMeshBuilder(name string, materialIndex int) *objMeshBuilder {
	return &objMeshBuilder{
		mesh:  model.ImportedMesh{Name: name, MaterialIndex: materialIndex},
		index: make(map[objVertexKey]uint32),
	}
}

func (b *objLoaderBackendImpl) Import(ctx context.Context, name string, data []byte, read readFunc) (*model.ImportedModel, error) {
	var (
		positions [][3]float32
		texCoords [][2]float32
		normals   [][3]float32

		materials     []model.ImportedMaterial
		materialIndex = map[string]int{}
		currentMat    = -1

		meshes    []model.ImportedMesh
		groupName = strings.TrimSuffix(path.Base(name), path.Ext(name))
		current   = newOBJMeshBuilder(groupName, -1)
	)

	flush := func() {
		if len(current.mesh.Indices) > 0 {
			meshes = append(meshes, current.mesh)
		}
	}

	dir := path.Dir(name)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", lineNo, err)
			}
			positions = append(positions, [3]float32{p[0], p[1], p[2]})
		case "vt":
			t, err := parseFloats(fields[1:], 1)
			if err != nil {
				return nil, fmt.Errorf("line %d: texture coordinate: %w", lineNo, err)
			}
			tc := [2]float32{t[0], 0}
			if len(t) > 1 {
				tc[1] = t[1]
			}
			texCoords = append(texCoords, tc)
		case "vn":
			n, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", lineNo, err)
			}
			normals = append(normals, [3]float32{n[0], n[1], n[2]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices, got %d", lineNo, len(fields)-1)
			}
			corners := make([]objVertexKey, 0, len(fields)-1)
			for _, f := range fields[1:] {
				key, err := parseFaceVertex(f, len(positions), len(texCoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				corners = append(corners, key)
			}
			for i := 1; i+1 < len(corners); i++ {
				tri := [3]objVertexKey{corners[0], corners[i], corners[i+1]}
				faceNormal := triangleNormal(positions[tri[0].v], positions[tri[1].v], positions[tri[2].v])
				for _, key := range tri {
					current.mesh.Indices = append(current.mesh.Indices, current.vertex(key, positions, texCoords, normals, faceNormal))
				}
			}
		case "o", "g":
			flush()
			groupName = strings.Join(fields[1:], " ")
			current = newOBJMeshBuilder(groupName, currentMat)
		case "usemtl":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: usemtl without a name", lineNo)
			}
			idx, ok := materialIndex[fields[1]]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown material %q", lineNo, fields[1])
			}
			if idx != current.mesh.MaterialIndex {
				flush()
				current = newOBJMeshBuilder(groupName, idx)
			}
			currentMat = idx
		case "mtllib":
			for _, lib := range fields[1:] {
				libName := path.Join(dir, lib)
				libData, err := read(ctx, libName)
				if err != nil {
					return nil, newAssetError("load_material_library", libName, ErrIO, err)
				}
				parsed, err := parseMTL(libData, dir)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", libName, err)
				}
				for _, m := range parsed {
					materialIndex[m.Name] = len(materials)
					materials = append(materials, m)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	if len(meshes) == 0 {
		return nil, fmt.Errorf("%s has no faces", name)
	}
	return &model.ImportedModel{
		Name:      strings.TrimSuffix(path.Base(name), path.Ext(name)),
		Meshes:    meshes,
		Materials: materials,
	}, nil
}

func (m *objMeshBuilder) vertex(key objVertexKey, positions [][3]float32, texCoords [][2]float32, normals [][3]float32, faceNormal [3]float32) uint32 {
	if idx, ok := m.index[key]; ok {
		return idx
	}
	v := model.GPUModelVertex{Position: positions[key.v], Normal: faceNormal}
	if key.vt >= 0 {
		v.TexCoord = texCoords[key.vt]
	}
	if key.vn >= 0 {
		v.Normal = normals[key.vn]
	}
	idx := uint32(len(m.mesh.Vertices))
	m.mesh.Vertices = append(m.mesh.Vertices, v)
	m.index[key] = idx
	return idx
}

// parseFaceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn". Negative indices count back from
// the most recent element.
func parseFaceVertex(s string, nv, nvt, nvn int) (objVertexKey, error) {
	parts := strings.Split(s, "/")
	if len(parts) > 3 {
		return objVertexKey{}, fmt.Errorf("malformed face vertex %q", s)
	}
	key := objVertexKey{v: -1, vt: -1, vn: -1}
	targets := []*int{&key.v, &key.vt, &key.vn}
	counts := []int{nv, nvt, nvn}
	for i, part := range parts {
		if part == "" {
			if i == 0 {
				return objVertexKey{}, fmt.Errorf("face vertex %q has no position", s)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return objVertexKey{}, fmt.Errorf("malformed face vertex %q: %w", s, err)
		}
		idx, err := resolveOBJIndex(n, counts[i])
		if err != nil {
			return objVertexKey{}, fmt.Errorf("face vertex %q: %w", s, err)
		}
		*targets[i] = idx
	}
	return key, nil
}

func resolveOBJIndex(n, count int) (int, error) {
	var idx int
	switch {
	case n > 0:
		idx = n - 1
	case n < 0:
		idx = count + n
	default:
		return 0, fmt.Errorf("index 0 is invalid")
	}
	if idx < 0 || idx >= count {
		return 0, fmt.Errorf("index %d out of range (%d defined)", n, count)
	}
	return idx, nil
}

func parseFloats(fields []string, minCount int) ([]float32, error) {
	if len(fields) < minCount {
		return nil, fmt.Errorf("expected at least %d values, got %d", minCount, len(fields))
	}
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

func triangleNormal(a, b, c [3]float32) [3]float32 {
	pa := math32.Vec3(a[0], a[1], a[2])
	n := math32.Vec3(b[0], b[1], b[2]).Sub(pa).Cross(math32.Vec3(c[0], c[1], c[2]).Sub(pa))
	if n.Length() == 0 {
		return [3]float32{0, 1, 0}
	}
	n = n.Normal()
	return [3]float32{n.X, n.Y, n.Z}
}

// parseMTL reads newmtl, Kd, d, Tr and map_Kd statements. Texture paths are resolved against
// dir. Other statements are ignored.
func parseMTL(data []byte, dir string) ([]model.ImportedMaterial, error) {
	var out []model.ImportedMaterial
	var cur *model.ImportedMaterial

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] != "newmtl" && cur == nil {
			return nil, fmt.Errorf("line %d: %s before newmtl", lineNo, fields[0])
		}

		switch fields[0] {
		case "newmtl":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: newmtl without a name", lineNo)
			}
			out = append(out, model.ImportedMaterial{
				Name:         strings.Join(fields[1:], " "),
				DiffuseColor: [4]float32{1, 1, 1, 1},
			})
			cur = &out[len(out)-1]
		case "Kd":
			kd, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: Kd: %w", lineNo, err)
			}
			cur.DiffuseColor[0], cur.DiffuseColor[1], cur.DiffuseColor[2] = kd[0], kd[1], kd[2]
		case "d", "Tr":
			a, err := parseFloats(fields[1:], 1)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", lineNo, fields[0], err)
			}
			if fields[0] == "Tr" {
				a[0] = 1 - a[0]
			}
			cur.DiffuseColor[3] = a[0]
		case "map_Kd":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: map_Kd without a file", lineNo)
			}
			// options such as -s or -o precede the file name
			cur.DiffuseTexturePath = path.Join(dir, filepathToSlash(fields[len(fields)-1]))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
