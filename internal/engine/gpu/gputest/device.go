// Package gputest provides a recording gpu.Device for tests that run without a graphics context.
package gputest

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Draw records one DrawTriangles call and the state bound at the time.
type Draw struct {
	VAO     uint32
	Count   int32
	Texture uint32
}

// Device records calls in memory. Object names start at 1 and are never reused.
type Device struct {
	mu sync.Mutex

	next uint32

	VertexArrays map[uint32]bool
	Buffers      map[uint32]int // live buffer -> uploaded element count
	Textures     map[uint32][2]int32

	Bound        uint32
	BoundTexture uint32
	Attribs      map[uint32]map[uint32]int32 // vao -> location -> components

	Mat4s  map[int32]mgl32.Mat4
	Uints  map[int32]uint32
	Ints   map[int32]int32
	Vec3s  map[int32]mgl32.Vec3
	Draws  []Draw
	Errors []string
}

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{
		VertexArrays: make(map[uint32]bool),
		Buffers:      make(map[uint32]int),
		Textures:     make(map[uint32][2]int32),
		Attribs:      make(map[uint32]map[uint32]int32),
		Mat4s:        make(map[int32]mgl32.Mat4),
		Uints:        make(map[int32]uint32),
		Ints:         make(map[int32]int32),
		Vec3s:        make(map[int32]mgl32.Vec3),
	}
}

func (d *Device) gen() uint32 {
	d.next++
	return d.next
}

func (d *Device) GenVertexArray() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.gen()
	d.VertexArrays[id] = true
	d.Attribs[id] = make(map[uint32]int32)
	return id
}

func (d *Device) BindVertexArray(vao uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if vao != 0 && !d.VertexArrays[vao] {
		d.Errors = append(d.Errors, "bind of unknown vertex array")
	}
	d.Bound = vao
}

func (d *Device) DeleteVertexArray(vao uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.VertexArrays[vao] {
		d.Errors = append(d.Errors, "delete of unknown vertex array")
	}
	delete(d.VertexArrays, vao)
}

func (d *Device) GenBuffer() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.gen()
	d.Buffers[id] = 0
	return id
}

func (d *Device) DeleteBuffer(buf uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.Buffers[buf]; !ok {
		d.Errors = append(d.Errors, "delete of unknown buffer")
	}
	delete(d.Buffers, buf)
}

func (d *Device) ArrayBufferData(buf uint32, data []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Buffers[buf] = len(data)
}

func (d *Device) ElementBufferData(buf uint32, data []uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Bound == 0 {
		d.Errors = append(d.Errors, "element buffer upload without a bound vertex array")
	}
	d.Buffers[buf] = len(data)
}

func (d *Device) VertexAttrib(location uint32, components int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Bound == 0 {
		d.Errors = append(d.Errors, "attribute set without a bound vertex array")
		return
	}
	d.Attribs[d.Bound][location] = components
}

func (d *Device) UniformMatrix4(location int32, m mgl32.Mat4) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Mat4s[location] = m
}

func (d *Device) Uniform1ui(location int32, v uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Uints[location] = v
}

func (d *Device) Uniform1i(location int32, v int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Ints[location] = v
}

func (d *Device) Uniform3f(location int32, v mgl32.Vec3) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Vec3s[location] = v
}

func (d *Device) CreateTexture2D(width, height int32, rgba []uint8) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if int(width*height*4) != len(rgba) {
		d.Errors = append(d.Errors, "texture size does not match pixel data")
	}
	id := d.gen()
	d.Textures[id] = [2]int32{width, height}
	return id
}

func (d *Device) DeleteTexture(tex uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.Textures, tex)
}

func (d *Device) BindTextureUnit(unit, tex uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.BoundTexture = tex
}

func (d *Device) DrawTriangles(count int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Bound == 0 {
		d.Errors = append(d.Errors, "draw without a bound vertex array")
	}
	d.Draws = append(d.Draws, Draw{VAO: d.Bound, Count: count, Texture: d.BoundTexture})
}

// Reset forgets recorded draws and uniforms but keeps live objects.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Draws = nil
	d.Mat4s = make(map[int32]mgl32.Mat4)
	d.Uints = make(map[int32]uint32)
	d.Ints = make(map[int32]int32)
	d.Vec3s = make(map[int32]mgl32.Vec3)
	d.BoundTexture = 0
}

// Program resolves uniform names to stable locations in first-seen order.
type Program struct {
	mu        sync.Mutex
	locations map[string]int32
	Active    bool
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{locations: make(map[string]int32)}
}

func (p *Program) Activate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Active = true
}

func (p *Program) UniformLocation(name string) int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	loc, ok := p.locations[name]
	if !ok {
		loc = int32(len(p.locations))
		p.locations[name] = loc
	}
	return loc
}
