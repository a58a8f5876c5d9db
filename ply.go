package volfog

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"
)

type plyVertex struct {
	X, Y, Z float32
	Color   color.RGBA
}

// LoadPLYFile reads an ASCII PLY mesh from fileName.
func LoadPLYFile(fileName string, reverse int) (*Model, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("could not open PLY file %s: %w", fileName, err)
	}
	defer file.Close()

	obj, err := LoadPLY(file, reverse)
	if err != nil {
		return nil, fmt.Errorf("error parsing PLY file %s: %w", fileName, err)
	}
	return obj, nil
}

// LoadPLY parses an ASCII PLY mesh. Vertex colours are averaged per face
// unless the faces carry their own colour; without either, faces are grey.
func LoadPLY(reader io.Reader, reverse int) (*Model, error) {
	obj := NewModel()
	scanner := bufio.NewScanner(reader)

	var vertexCount, faceCount int
	var hasVertexColor, hasFaceColor, headerDone bool
	var currentElement string

	for !headerDone && scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "format":
			if len(parts) > 1 && parts[1] != "ascii" {
				return nil, fmt.Errorf("unsupported PLY format %q", parts[1])
			}
		case "element":
			if len(parts) == 3 {
				currentElement = parts[1]
				n, err := strconv.Atoi(parts[2])
				if err != nil {
					return nil, fmt.Errorf("invalid %s count %q: %w", parts[1], parts[2], err)
				}
				switch parts[1] {
				case "vertex":
					vertexCount = n
				case "face":
					faceCount = n
				}
			}
		case "property":
			if len(parts) > 2 && (parts[2] == "red" || parts[2] == "diffuse_red") {
				switch currentElement {
				case "vertex":
					hasVertexColor = true
				case "face":
					hasFaceColor = true
				}
			}
		case "end_header":
			headerDone = true
		}
	}
	if !headerDone {
		return nil, fmt.Errorf("missing end_header")
	}

	vertices := make([]plyVertex, 0, vertexCount)
	for i := 0; i < vertexCount; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected end of file while reading vertices")
		}
		parts := strings.Fields(scanner.Text())
		want := 3
		if hasVertexColor {
			want = 6
		}
		if len(parts) < want {
			return nil, fmt.Errorf("invalid vertex data on line %d", i)
		}
		var xyz [3]float32
		for k := range xyz {
			v, err := strconv.ParseFloat(parts[k], 32)
			if err != nil {
				return nil, fmt.Errorf("invalid vertex data on line %d: %w", i, err)
			}
			xyz[k] = float32(v)
		}
		vert := plyVertex{X: xyz[0], Y: xyz[1], Z: xyz[2], Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}}
		if hasVertexColor {
			c, err := parseRGB(parts[3:6])
			if err != nil {
				return nil, fmt.Errorf("invalid vertex-color data on line %d: %w", i, err)
			}
			vert.Color = c
		}
		vertices = append(vertices, vert)
	}

	for i := 0; i < faceCount; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected end of file while reading faces")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			return nil, fmt.Errorf("invalid face data on line %d", i)
		}
		numFaceVerts, err := strconv.Atoi(parts[0])
		if err != nil || numFaceVerts < 3 || len(parts) < numFaceVerts+1 {
			return nil, fmt.Errorf("invalid face data on line %d", i)
		}

		idx := make([]int, numFaceVerts)
		for j := range idx {
			n, err := strconv.Atoi(parts[j+1])
			if err != nil || n < 0 || n >= len(vertices) {
				return nil, fmt.Errorf("invalid vertex index %q on face %d", parts[j+1], i)
			}
			idx[j] = n
		}

		faceColor := color.RGBA{R: 128, G: 128, B: 128, A: 255}
		switch {
		case hasFaceColor:
			if len(parts) != numFaceVerts+1+3 {
				return nil, fmt.Errorf("invalid face-color data on line %d", i)
			}
			faceColor, err = parseRGB(parts[numFaceVerts+1:])
			if err != nil {
				return nil, fmt.Errorf("invalid face-color data on line %d: %w", i, err)
			}
		case hasVertexColor:
			var r, g, b uint32
			for _, n := range idx {
				r += uint32(vertices[n].Color.R)
				g += uint32(vertices[n].Color.G)
				b += uint32(vertices[n].Color.B)
			}
			k := uint32(numFaceVerts)
			faceColor = color.RGBA{R: uint8(r / k), G: uint8(g / k), B: uint8(b / k), A: 255}
		}

		aFace := &Face{Col: faceColor}
		for _, n := range idx {
			v := vertices[n]
			aFace.AddPoint(v.X, v.Y, v.Z)
		}
		aFace.Finished(reverse)
		obj.AddFace(aFace)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from PLY source: %w", err)
	}
	return obj, nil
}

func parseRGB(parts []string) (color.RGBA, error) {
	var c [3]uint8
	for k := range c {
		v, err := strconv.ParseUint(parts[k], 10, 8)
		if err != nil {
			return color.RGBA{}, err
		}
		c[k] = uint8(v)
	}
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}, nil
}
