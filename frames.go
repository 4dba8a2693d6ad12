package orbital

import (
	"time"

	"github.com/gonum/matrix/mat64"
)

// TransformFunc computes one edge of the frame graph for a date: the rotation
// applied to both halves of the 6-vector and an offset in the same units as
// the orbit. The current orbit is provided because some edges need it (the
// Coriolis term of rotating frames, orbit-anchored frames).
type TransformFunc func(date time.Time, orbit []float64) (*mat64.Dense, []float64, error)

// Frame is a node of the transformation graph.
type Frame struct {
	Name   string
	Center CelestialObject
	// rotationFirst selects the composition order when leaving this node:
	// offset + R·orbit instead of R·(offset + orbit). Topocentric frames
	// rotate first, celestial frames translate first.
	rotationFirst bool

	edges     map[string]TransformFunc
	neighbors []string
}

func (f *Frame) String() string {
	return f.Name
}

// AddEdge declares a transformation from this frame to another. The reverse
// direction is derived by transposing the rotation and negating the offset,
// so a single direction suffices.
func (f *Frame) AddEdge(to *Frame, fn TransformFunc) {
	if _, ok := f.edges[to.Name]; !ok {
		f.neighbors = append(f.neighbors, to.Name)
	}
	f.edges[to.Name] = fn
	if _, back := to.edges[f.Name]; !back {
		to.neighbors = append(to.neighbors, f.Name)
	}
}

// NewFrame creates an unregistered frame.
func NewFrame(name string, center CelestialObject, rotationFirst bool) *Frame {
	return &Frame{Name: name, Center: center, rotationFirst: rotationFirst, edges: make(map[string]TransformFunc)}
}

// Frames is the registry and transformation engine.
type Frames struct {
	env    *Environment
	frames map[string]*Frame
}

// NewFrames returns an empty registry.
func NewFrames(env *Environment) *Frames {
	return &Frames{env: env, frames: make(map[string]*Frame)}
}

// Register adds a frame to the registry, replacing (with a warning) any
// frame of the same name.
func (f *Frames) Register(frame *Frame) {
	if _, exists := f.frames[frame.Name]; exists {
		f.env.Logger.Log("level", "warning", "subsys", "frames", "override", frame.Name)
	}
	f.frames[frame.Name] = frame
}

// Get returns a registered frame from its name.
func (f *Frames) Get(name string) (*Frame, error) {
	if frame, ok := f.frames[name]; ok {
		return frame, nil
	}
	return nil, UnknownFrameError{name}
}

// Path returns the shortest chain of frames between two nodes, both ends
// included. Ties break in edge declaration order.
func (f *Frames) Path(from, to *Frame) ([]*Frame, error) {
	if from.Name == to.Name {
		return []*Frame{from}, nil
	}
	parents := map[string]string{from.Name: ""}
	queue := []string{from.Name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range f.frames[cur].neighbors {
			if _, seen := parents[next]; seen {
				continue
			}
			parents[next] = cur
			if next == to.Name {
				names := []string{to.Name}
				for at := cur; at != ""; at = parents[at] {
					names = append([]string{at}, names...)
				}
				path := make([]*Frame, len(names))
				for i, name := range names {
					path[i] = f.frames[name]
				}
				return path, nil
			}
			queue = append(queue, next)
		}
	}
	return nil, NoPathError{from.Name, to.Name}
}

// Transform expresses a cartesian orbit given in the from frame into the to
// frame, walking the graph one edge at a time.
func (f *Frames) Transform(date time.Time, orbit []float64, from, to *Frame) ([]float64, error) {
	if len(orbit) != 6 {
		return nil, VectorError{6, len(orbit)}
	}
	path, err := f.Path(from, to)
	if err != nil {
		return nil, err
	}
	out := append([]float64(nil), orbit...)
	for i := 0; i < len(path)-1; i++ {
		a, b := path[i], path[i+1]
		var rot *mat64.Dense
		var offset []float64
		if fn, ok := a.edges[b.Name]; ok {
			if rot, offset, err = fn(date, out); err != nil {
				return nil, err
			}
		} else if fn, ok := b.edges[a.Name]; ok {
			if rot, offset, err = fn(date, out); err != nil {
				return nil, err
			}
			rot = Transpose33(rot)
			offset = scale6(-1, offset)
		} else {
			return nil, UnknownTransformError{a.Name, b.Name}
		}
		if a.rotationFirst {
			out = add6(offset, MxV66(rot, out))
		} else {
			out = MxV66(rot, add6(offset, out))
		}
	}
	return out, nil
}

var identity33Data = []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}

func identity33() *mat64.Dense {
	return mat64.NewDense(3, 3, append([]float64(nil), identity33Data...))
}

func zero6() []float64 {
	return make([]float64, 6)
}

// rotationOnly wraps a date-only rotation into a TransformFunc.
func rotationOnly(fn func(date time.Time) (*mat64.Dense, error)) TransformFunc {
	return func(date time.Time, orbit []float64) (*mat64.Dense, []float64, error) {
		rot, err := fn(date)
		if err != nil {
			return nil, nil, err
		}
		return rot, zero6(), nil
	}
}

// newBuiltinFrames wires the two Earth chains. The equinox-based chain is
// WGS84, ITRF, PEF, TOD, MOD, EME2000 with the TEME branch off TOD; the
// CIO-based chain is ITRF, TIRF, CIRF, GCRF. Both share ITRF so any pair of
// frames is reachable.
func newBuiltinFrames(env *Environment) *Frames {
	reg := NewFrames(env)

	eme2000 := NewFrame("EME2000", Earth, false)
	mod := NewFrame("MOD", Earth, false)
	tod := NewFrame("TOD", Earth, false)
	teme := NewFrame("TEME", Earth, false)
	pef := NewFrame("PEF", Earth, false)
	itrf := NewFrame("ITRF", Earth, false)
	wgs84 := NewFrame("WGS84", Earth, false)
	tirf := NewFrame("TIRF", Earth, false)
	cirf := NewFrame("CIRF", Earth, false)
	gcrf := NewFrame("GCRF", Earth, false)

	mod.AddEdge(eme2000, rotationOnly(func(date time.Time) (*mat64.Dense, error) {
		eop, err := env.Eop(date)
		if err != nil {
			return nil, err
		}
		return precession1980Matrix(date, eop), nil
	}))
	tod.AddEdge(mod, rotationOnly(func(date time.Time) (*mat64.Dense, error) {
		eop, err := env.Eop(date)
		if err != nil {
			return nil, err
		}
		return nutation1980Matrix(date, eop, false), nil
	}))
	teme.AddEdge(tod, rotationOnly(func(date time.Time) (*mat64.Dense, error) {
		eop, err := env.Eop(date)
		if err != nil {
			return nil, err
		}
		equin := equinox1980(date, eop, false, 4, false)
		return R3(-equin * deg2rad), nil
	}))
	pef.AddEdge(tod, func(date time.Time, orbit []float64) (*mat64.Dense, []float64, error) {
		eop, err := env.Eop(date)
		if err != nil {
			return nil, nil, err
		}
		rot := sideral1980Matrix(date, eop, "apparent", false)
		// Coriolis term of the rotating frame
		vel := cross(earthRotationVector(eop), orbit[:3])
		return rot, []float64{0, 0, 0, vel[0], vel[1], vel[2]}, nil
	})
	itrf.AddEdge(pef, rotationOnly(func(date time.Time) (*mat64.Dense, error) {
		eop, err := env.Eop(date)
		if err != nil {
			return nil, err
		}
		return poleMotion1980Matrix(eop), nil
	}))
	wgs84.AddEdge(itrf, func(date time.Time, orbit []float64) (*mat64.Dense, []float64, error) {
		return identity33(), zero6(), nil
	})

	itrf.AddEdge(tirf, rotationOnly(func(date time.Time) (*mat64.Dense, error) {
		eop, err := env.Eop(date)
		if err != nil {
			return nil, err
		}
		return poleMotion2010Matrix(date, eop), nil
	}))
	tirf.AddEdge(cirf, func(date time.Time, orbit []float64) (*mat64.Dense, []float64, error) {
		eop, err := env.Eop(date)
		if err != nil {
			return nil, nil, err
		}
		rot := sideral2010Matrix(date, eop)
		vel := cross(earthRotationVector(eop), orbit[:3])
		return rot, []float64{0, 0, 0, vel[0], vel[1], vel[2]}, nil
	})
	cirf.AddEdge(gcrf, rotationOnly(func(date time.Time) (*mat64.Dense, error) {
		eop, err := env.Eop(date)
		if err != nil {
			return nil, err
		}
		return precessionNutation2010Matrix(date, eop), nil
	}))

	for _, frame := range []*Frame{eme2000, mod, tod, teme, pef, itrf, wgs84, tirf, cirf, gcrf} {
		reg.Register(frame)
	}
	return reg
}

// BodyFrame returns a pseudo-inertial frame centered on a celestial body,
// linked to EME2000 through the heliocentric ephemeris. The frame is
// registered so it becomes reachable from every other frame.
func (env *Environment) BodyFrame(body CelestialObject) (*Frame, error) {
	if frame, err := env.Frames.Get(body.Name); err == nil {
		return frame, nil
	}
	eme2000, err := env.Frames.Get("EME2000")
	if err != nil {
		return nil, err
	}
	frame := NewFrame(body.Name, body, false)
	frame.AddEdge(eme2000, func(date time.Time, orbit []float64) (*mat64.Dense, []float64, error) {
		bodyHelio, err := env.HelioOrbit(body, date)
		if err != nil {
			return nil, nil, err
		}
		earthHelio, err := env.HelioOrbit(Earth, date)
		if err != nil {
			return nil, nil, err
		}
		return identity33(), sub6(bodyHelio, earthHelio), nil
	})
	env.Frames.Register(frame)
	return frame, nil
}

// OrbitFrame creates a frame anchored on an orbit, oriented along its QSW or
// TNW local frame, or aligned with the parent frame for an empty orientation.
// Propagating the anchor is the caller's duty: the frame holds a propagator
// bound state and queries it for each date.
func (env *Environment) OrbitFrame(name string, anchor *StateVector, orientation string) (*Frame, error) {
	var local func(cart []float64) *mat64.Dense
	switch orientation {
	case "QSW", "qsw":
		local = ToQSW
	case "TNW", "tnw":
		local = ToTNW
	case "":
		local = nil
	default:
		return nil, UnknownFrameError{orientation}
	}

	frame := NewFrame(name, anchor.Frame().Center, true)
	frame.AddEdge(anchor.Frame(), func(date time.Time, orbit []float64) (*mat64.Dense, []float64, error) {
		at, err := anchor.At(date)
		if err != nil {
			return nil, nil, err
		}
		cart, err := at.Cartesian()
		if err != nil {
			return nil, nil, err
		}
		rot := identity33()
		if local != nil {
			rot = Transpose33(local(cart))
		}
		return rot, cart, nil
	})
	env.Frames.Register(frame)
	return frame, nil
}
