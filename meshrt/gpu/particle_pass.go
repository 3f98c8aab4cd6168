package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/particlemesh/meshrt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// cameraUniformSize is one mat4x4<f32>.
const cameraUniformSize = 64

// ParticleRenderPass draws meshes committed to a MeshUploader as alpha
// blended, double sided triangles.
type ParticleRenderPass struct {
	Device    *wgpu.Device
	Pipeline  *wgpu.RenderPipeline
	CameraBuf *wgpu.Buffer
	BindGroup *wgpu.BindGroup

	// ScaleAge is set when the pipeline reads UV1.
	ScaleAge bool
}

// VertexLayouts returns one buffer layout per attribute, matching the
// uploader's buffers. scaleAge adds the UV1 stream at location 3.
func VertexLayouts(scaleAge bool) []wgpu.VertexBufferLayout {
	attr := func(format wgpu.VertexFormat, stride uint64, location uint32) wgpu.VertexBufferLayout {
		return wgpu.VertexBufferLayout{
			ArrayStride: stride,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: format, Offset: 0, ShaderLocation: location},
			},
		}
	}
	layouts := []wgpu.VertexBufferLayout{
		attr(wgpu.VertexFormatFloat32x3, positionStride, 0),
		attr(wgpu.VertexFormatFloat32x4, colorStride, 1),
		attr(wgpu.VertexFormatFloat32x2, uv0Stride, 2),
	}
	if scaleAge {
		layouts = append(layouts, attr(wgpu.VertexFormatFloat32x4, uv1Stride, 3))
	}
	return layouts
}

func NewParticleRenderPass(device *wgpu.Device, format wgpu.TextureFormat, scaleAge bool) (*ParticleRenderPass, error) {
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "ParticleMeshShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ParticleMeshWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer shaderModule.Release()

	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ParticleCameraBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: cameraUniformSize,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return nil, err
	}

	entry := "vs_main"
	if scaleAge {
		entry = "vs_main_scale_age"
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "ParticleMeshPipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: entry,
			Buffers:    VertexLayouts(scaleAge),
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorSrcAlpha,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						},
						Alpha: wgpu.BlendComponent{
							Operation: wgpu.BlendOperationAdd,
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						},
					},
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			// billboards may be seen from behind once rotated
			CullMode: wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	cameraBuf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ParticleCameraBuffer",
		Size:  cameraUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "ParticleCameraBG",
		Layout: bgl,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: cameraBuf, Size: cameraUniformSize},
		},
	})
	if err != nil {
		return nil, err
	}

	return &ParticleRenderPass{
		Device:    device,
		Pipeline:  pipeline,
		CameraBuf: cameraBuf,
		BindGroup: bindGroup,
		ScaleAge:  scaleAge,
	}, nil
}

// UpdateCamera uploads the view-projection matrix.
func (p *ParticleRenderPass) UpdateCamera(viewProj mgl32.Mat4) {
	p.Device.GetQueue().WriteBuffer(p.CameraBuf, 0, wgpu.ToBytes(viewProj[:]))
}

func (p *ParticleRenderPass) Draw(pass *wgpu.RenderPassEncoder, mesh *MeshUploader) {
	if mesh.IndexCount == 0 || (p.ScaleAge && !mesh.HasUV1) {
		return
	}
	pass.SetPipeline(p.Pipeline)
	pass.SetBindGroup(0, p.BindGroup, nil)
	mesh.Draw(pass)
}

func (p *ParticleRenderPass) Release() {
	if p.BindGroup != nil {
		p.BindGroup.Release()
	}
	if p.CameraBuf != nil {
		p.CameraBuf.Release()
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
	}
}
