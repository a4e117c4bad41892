package webgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prism-engine/prism/engine/renderer/metadata"
)

// Instrumented implementations of the gpu* seam. Every create, release and
// surface operation is appended to a shared call log so tests can assert on
// exact ordering.

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) record(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

func (l *callLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

func (l *callLog) count(call string) int {
	n := 0
	for _, c := range l.snapshot() {
		if c == call {
			n++
		}
	}
	return n
}

type fakeWindow struct {
	width, height uint32

	mu    sync.Mutex
	props map[string]interface{}
}

func newFakeWindow(width, height uint32) *fakeWindow {
	return &fakeWindow{width: width, height: height, props: make(map[string]interface{})}
}

func (w *fakeWindow) PixelSize() (uint32, uint32) {
	return w.width, w.height
}

func (w *fakeWindow) SetProperty(key string, value interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.props[key] = value
}

func (w *fakeWindow) Property(key string) interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.props[key]
}

func (w *fakeWindow) DeleteProperty(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.props, key)
}

type fakeInstance struct {
	log *callLog

	adapterErr error
	deviceErr  error
	// hang suppresses the callback entirely, to exercise timeouts.
	hang bool

	device *fakeDevice
}

func newFakeInstance() *fakeInstance {
	log := &callLog{}
	return &fakeInstance{
		log:    log,
		device: &fakeDevice{log: log},
	}
}

func (f *fakeInstance) CreateSurface(win Window) (gpuSurface, error) {
	f.log.record("surface.create")
	return &fakeSurface{log: f.log}, nil
}

func (f *fakeInstance) RequestAdapter(opts *AdapterOptions, callback func(gpuAdapter, error)) {
	if f.hang {
		return
	}
	if f.adapterErr != nil {
		callback(nil, f.adapterErr)
		return
	}
	callback(&fakeAdapter{log: f.log, instance: f, deviceErr: f.deviceErr}, nil)
}

func (f *fakeInstance) Release() {
	f.log.record("instance.release")
}

type fakeAdapter struct {
	log      *callLog
	instance *fakeInstance

	deviceErr error
	hang      bool
}

func (f *fakeAdapter) RequestDevice(opts *DeviceOptions, callback func(gpuDevice, error)) {
	if f.hang {
		return
	}
	if f.deviceErr != nil {
		callback(nil, f.deviceErr)
		return
	}
	callback(f.instance.device, nil)
}

func (f *fakeAdapter) Release() {
	f.log.record("adapter.release")
}

type fakeDevice struct {
	log *callLog

	failNextBuffer  bool
	failNextTexture bool
}

func (f *fakeDevice) CreateBuffer(desc *BufferDescriptor) (gpuBuffer, error) {
	if f.failNextBuffer {
		f.failNextBuffer = false
		return nil, errors.New("allocation failed")
	}
	f.log.record("buffer.create %s", desc.Label)
	return &fakeBuffer{log: f.log, label: desc.Label, size: desc.Size}, nil
}

func (f *fakeDevice) CreateTexture(desc *TextureDescriptor) (gpuTexture, error) {
	if f.failNextTexture {
		f.failNextTexture = false
		return nil, errors.New("allocation failed")
	}
	f.log.record("texture.create %s", desc.Label)
	return &fakeTexture{log: f.log, label: desc.Label}, nil
}

func (f *fakeDevice) CreateCommandEncoder(label string) (gpuCommandEncoder, error) {
	f.log.record("encoder.create")
	return &fakeCommandEncoder{log: f.log}, nil
}

func (f *fakeDevice) Queue() gpuQueue {
	return &fakeQueue{log: f.log}
}

func (f *fakeDevice) Release() {
	f.log.record("device.release")
}

type fakeQueue struct {
	log *callLog
}

func (f *fakeQueue) Submit(commands gpuCommandBuffer) {
	f.log.record("queue.submit")
}

type fakeSurface struct {
	log *callLog

	acquireErr error
}

func (f *fakeSurface) PreferredFormat(adapter gpuAdapter) metadata.TextureFormat {
	return metadata.TextureFormatBGRA8Unorm
}

func (f *fakeSurface) Configure(adapter gpuAdapter, device gpuDevice, cfg *SurfaceConfiguration) error {
	f.log.record("surface.configure %dx%d mode=%d", cfg.Width, cfg.Height, cfg.PresentMode)
	return nil
}

func (f *fakeSurface) Unconfigure() {
	f.log.record("surface.unconfigure")
}

func (f *fakeSurface) AcquireTexture() (gpuTexture, error) {
	if f.acquireErr != nil {
		return nil, f.acquireErr
	}
	f.log.record("surface.acquire")
	return &fakeTexture{log: f.log, label: "surface-texture"}, nil
}

func (f *fakeSurface) Present() {
	f.log.record("surface.present")
}

func (f *fakeSurface) Release() {
	f.log.record("surface.release")
}

type fakeTexture struct {
	log   *callLog
	label string
}

func (f *fakeTexture) CreateView(desc *TextureViewDescriptor) (gpuTextureView, error) {
	label := f.label + "-view"
	if desc != nil && desc.Label != "" {
		label = desc.Label
	}
	f.log.record("view.create %s", label)
	return &fakeTextureView{log: f.log, label: label}, nil
}

func (f *fakeTexture) Release() {
	f.log.record("texture.release %s", f.label)
}

type fakeTextureView struct {
	log   *callLog
	label string
}

func (f *fakeTextureView) Release() {
	f.log.record("view.release %s", f.label)
}

type fakeBuffer struct {
	log   *callLog
	label string
	size  uint64
}

func (f *fakeBuffer) Size() uint64 {
	return f.size
}

func (f *fakeBuffer) Release() {
	f.log.record("buffer.release %s", f.label)
}

type fakeCommandEncoder struct {
	log *callLog
}

func (f *fakeCommandEncoder) BeginRenderPass(desc *RenderPassDescriptor) (gpuRenderPass, error) {
	hasDepth := desc.DepthStencilAttachment != nil
	f.log.record("pass.begin colors=%d depth=%t", len(desc.ColorAttachments), hasDepth)
	return &fakeRenderPass{log: f.log}, nil
}

func (f *fakeCommandEncoder) Finish(label string) (gpuCommandBuffer, error) {
	f.log.record("encoder.finish")
	return &fakeCommandBuffer{log: f.log}, nil
}

func (f *fakeCommandEncoder) Release() {
	f.log.record("encoder.release")
}

type fakeRenderPass struct {
	log *callLog
}

func (f *fakeRenderPass) End() {
	f.log.record("pass.end")
}

func (f *fakeRenderPass) Release() {
	f.log.record("pass.release")
}

type fakeCommandBuffer struct {
	log *callLog
}

func (f *fakeCommandBuffer) Release() {
	f.log.record("commands.release")
}

// newTestContext builds a context with a negotiated fake device, skipping the
// async bootstrap.
func newTestContext() (*Context, *fakeInstance) {
	inst := newFakeInstance()
	ctx := NewContext(inst)
	ctx.Adapter = &fakeAdapter{log: inst.log, instance: inst}
	ctx.Device = inst.device
	ctx.Queue = inst.device.Queue()
	return ctx, inst
}
