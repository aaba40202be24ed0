package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	OrbitSpeed      = 0.001
	OrbitHeight     = 20
	DefaultDistance = 40
	MinDistance     = 5
	MaxDistance     = 100
	PanSpeed        = 0.1
	FOV             = 45

	near = 0.1
	far  = 5000
)

// OrbitCamera circles Target at a fixed height. Both viewers drive it;
// the GUI copies Eye and Target into its own camera.
type OrbitCamera struct {
	Angle    float32
	Height   float32
	Distance float32
	Target   mgl32.Vec3
}

func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{Height: OrbitHeight, Distance: DefaultDistance}
}

// Orbit advances the auto rotation by one frame.
func (c *OrbitCamera) Orbit() {
	c.Angle += OrbitSpeed
	if c.Angle > 2*math.Pi {
		c.Angle -= 2 * math.Pi
	}
}

func (c *OrbitCamera) Rotate(rad float32) { c.Angle += rad }

func (c *OrbitCamera) Eye() mgl32.Vec3 {
	s, co := math.Sincos(float64(c.Angle))
	return c.Target.Add(mgl32.Vec3{float32(co) * c.Distance, c.Height, float32(s) * c.Distance})
}

// SetDistance clamps to [MinDistance, MaxDistance].
func (c *OrbitCamera) SetDistance(d float32) {
	c.Distance = mgl32.Clamp(d, MinDistance, MaxDistance)
}

// Zoom moves the camera closer by amount.
func (c *OrbitCamera) Zoom(amount float32) {
	c.SetDistance(c.Distance - amount)
}

// Pan shifts the target along the screen axes by a drag of (dx, dy).
func (c *OrbitCamera) Pan(dx, dy float32) {
	forward := c.Target.Sub(c.Eye()).Normalize()
	up := mgl32.Vec3{0, 1, 0}
	right := forward.Cross(up).Normalize()
	c.Target = c.Target.Add(right.Mul(-dx * PanSpeed)).Add(up.Mul(dy * PanSpeed))
}

func (c *OrbitCamera) Reset() {
	*c = *NewOrbitCamera()
}

func (c *OrbitCamera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Project maps a world point to screen coordinates with y growing down.
// depth is the distance along the view axis; ok is false for points
// behind the camera or off screen.
func (c *OrbitCamera) Project(p mgl32.Vec3, w, h int) (x, y int, depth float32, ok bool) {
	view := c.View()
	eye := view.Mul4x1(p.Vec4(1))
	depth = -eye.Z()
	if depth <= near {
		return 0, 0, depth, false
	}

	proj := mgl32.Perspective(mgl32.DegToRad(FOV), float32(w)/float32(h), near, far)
	win := mgl32.Project(p, view, proj, 0, 0, w, h)
	x = int(win.X())
	y = h - 1 - int(win.Y())
	return x, y, depth, x >= 0 && x < w && y >= 0 && y < h
}

// ScreenRadius is the projected radius in pixels of a sphere of the given
// world radius at depth.
func (c *OrbitCamera) ScreenRadius(radius, depth float32, h int) float32 {
	if depth <= 0 {
		return 0
	}
	focal := float32(h) / 2 / float32(math.Tan(float64(mgl32.DegToRad(FOV))/2))
	return radius * focal / depth
}
