package scene

// ResourceKind identifies a class of tracked render resource.
type ResourceKind int

const (
	ResourceGeometry ResourceKind = iota
	ResourceMaterial
	ResourceTexture
	resourceKinds
)

// String returns a human-readable name for the kind.
func (k ResourceKind) String() string {
	switch k {
	case ResourceGeometry:
		return "geometry"
	case ResourceMaterial:
		return "material"
	case ResourceTexture:
		return "texture"
	default:
		return "unknown"
	}
}

// resource is embedded by everything that must be explicitly released.
// Dispose is idempotent; the release hook runs at most once.
type resource struct {
	release  func()
	disposed bool
}

// Dispose releases the resource. Calling it again is a no-op.
func (r *resource) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	if r.release != nil {
		r.release()
		r.release = nil
	}
}

// Disposed reports whether Dispose has been called.
func (r *resource) Disposed() bool {
	return r.disposed
}

func (r *resource) resourceBase() *resource {
	return r
}

// Trackable is implemented by geometries, materials and textures.
type Trackable interface {
	resourceBase() *resource
	resourceKind() ResourceKind
	Dispose()
}

// RenderInfo holds per-frame draw accounting.
type RenderInfo struct {
	Calls     int
	Triangles int
	Points    int
	Lines     int
}

// Info is a snapshot of live resources plus the last frame's draw info.
type Info struct {
	Geometries int
	Materials  int
	Textures   int
	Render     RenderInfo
}

// Resources counts live render resources, standing in for the GPU memory
// bookkeeping a hardware renderer would expose.
type Resources struct {
	live  [resourceKinds]int
	frame RenderInfo
}

// NewResources creates an empty tracker.
func NewResources() *Resources {
	return &Resources{}
}

// Track registers resources so they are counted until disposed.
// Nil, already tracked and already disposed items are ignored.
func (r *Resources) Track(items ...Trackable) {
	for _, item := range items {
		if item == nil {
			continue
		}
		base := item.resourceBase()
		if base == nil || base.disposed || base.release != nil {
			continue
		}
		kind := item.resourceKind()
		r.live[kind]++
		base.release = func() {
			r.live[kind]--
		}
	}
}

// TrackObject registers the geometry and material of a scene object.
func (r *Resources) TrackObject(obj Object) {
	switch o := obj.(type) {
	case *Mesh:
		if o.Geometry != nil {
			r.Track(o.Geometry)
		}
		if o.Material != nil {
			r.Track(o.Material)
		}
	case *Line:
		if o.Geometry != nil {
			r.Track(o.Geometry)
		}
		if o.Material != nil {
			r.Track(o.Material)
		}
	case *Points:
		if o.Geometry != nil {
			r.Track(o.Geometry)
		}
		if o.Material != nil {
			r.Track(o.Material)
		}
	}
}

// Live returns the number of live resources of a kind.
func (r *Resources) Live(kind ResourceKind) int {
	if kind < 0 || kind >= resourceKinds {
		return 0
	}
	return r.live[kind]
}

// BeginFrame resets per-frame draw accounting.
func (r *Resources) BeginFrame() {
	r.frame = RenderInfo{}
}

// RecordDraw accumulates one draw call.
func (r *Resources) RecordDraw(info RenderInfo) {
	r.frame.Calls += info.Calls
	r.frame.Triangles += info.Triangles
	r.frame.Points += info.Points
	r.frame.Lines += info.Lines
}

// Info returns the current counters.
func (r *Resources) Info() Info {
	return Info{
		Geometries: r.live[ResourceGeometry],
		Materials:  r.live[ResourceMaterial],
		Textures:   r.live[ResourceTexture],
		Render:     r.frame,
	}
}
