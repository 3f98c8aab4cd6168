package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// State is the device and swapchain for one window.
type State struct {
	Instance *wgpu.Instance
	Surface  *wgpu.Surface
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Config   *wgpu.SurfaceConfiguration
}

// NewState wraps window in a surface and configures it for vsync.
func NewState(window *glfw.Window) (*State, error) {
	instance := wgpu.CreateInstance(nil)
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "ParticleMesh Device"})
	if err != nil {
		return nil, fmt.Errorf("requesting device: %w", err)
	}

	width, height := window.GetFramebufferSize()
	caps := surface.GetCapabilities(adapter)
	cfg := &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, cfg)

	return &State{
		Instance: instance,
		Surface:  surface,
		Adapter:  adapter,
		Device:   device,
		Queue:    device.GetQueue(),
		Config:   cfg,
	}, nil
}

func (s *State) Resize(w, h int) {
	if w > 0 && h > 0 {
		s.Config.Width = uint32(w)
		s.Config.Height = uint32(h)
		s.Surface.Configure(s.Adapter, s.Device, s.Config)
	}
}

// Frame clears the next swapchain image, lets draw record into the pass,
// then submits and presents.
func (s *State) Frame(clear wgpu.Color, draw func(pass *wgpu.RenderPassEncoder)) error {
	next, err := s.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquiring surface texture: %w", err)
	}
	defer next.Release()

	view, err := next.CreateView(nil)
	if err != nil {
		return fmt.Errorf("creating view: %w", err)
	}
	defer view.Release()

	encoder, err := s.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("creating command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clear,
		}},
	})
	draw(pass)
	if err := pass.End(); err != nil {
		return fmt.Errorf("ending render pass: %w", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finishing encoder: %w", err)
	}
	s.Queue.Submit(cmd)
	s.Surface.Present()
	return nil
}

func (s *State) Release() {
	s.Device.Release()
	s.Adapter.Release()
	s.Surface.Release()
	s.Instance.Release()
}
