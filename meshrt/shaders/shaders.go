package shaders

import (
	_ "embed"
)

//go:embed particle_mesh.wgsl
var ParticleMeshWGSL string
