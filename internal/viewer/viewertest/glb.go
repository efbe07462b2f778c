// Package viewertest builds small binary glTF files for tests.
package viewertest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// GLB wraps a glTF JSON document in a binary container with no BIN chunk.
func GLB(jsonDoc string) []byte {
	payload := []byte(jsonDoc)
	for len(payload)%4 != 0 {
		payload = append(payload, ' ')
	}
	total := 12 + 8 + len(payload)

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0x46546C67))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(total))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(0x4E4F534A))
	buf.Write(payload)
	return buf.Bytes()
}

// Mesh is one named node holding a box-shaped mesh.
type Mesh struct {
	Name        string
	Min, Max    [3]float64
	Translation [3]float64
}

// Scene returns a GLB with one root node per mesh. Only accessor bounds are
// written; there is no vertex data.
func Scene(meshes ...Mesh) []byte {
	var nodes, meshDefs, accessors, roots []string
	for i, m := range meshes {
		nodes = append(nodes, fmt.Sprintf(
			`{"name":%q,"mesh":%d,"translation":[%g,%g,%g]}`,
			m.Name, i, m.Translation[0], m.Translation[1], m.Translation[2]))
		meshDefs = append(meshDefs, fmt.Sprintf(
			`{"name":%q,"primitives":[{"attributes":{"POSITION":%d}}]}`, m.Name, i))
		accessors = append(accessors, fmt.Sprintf(
			`{"componentType":5126,"count":8,"type":"VEC3","min":[%g,%g,%g],"max":[%g,%g,%g]}`,
			m.Min[0], m.Min[1], m.Min[2], m.Max[0], m.Max[1], m.Max[2]))
		roots = append(roots, fmt.Sprint(i))
	}
	doc := fmt.Sprintf(
		`{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[%s]}],"nodes":[%s],"meshes":[%s],"accessors":[%s]}`,
		strings.Join(roots, ","), strings.Join(nodes, ","), strings.Join(meshDefs, ","), strings.Join(accessors, ","))
	return GLB(doc)
}
