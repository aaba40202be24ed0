package gui

import (
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/spheresim/internal/config"
	"github.com/san-kum/spheresim/internal/control"
	"github.com/san-kum/spheresim/internal/logging"
	"github.com/san-kum/spheresim/internal/particle"
	"github.com/san-kum/spheresim/internal/sim"
	"github.com/san-kum/spheresim/internal/viz"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColE       = rl.NewColor(255, 215, 0, 255)
	ColMP      = rl.NewColor(230, 41, 55, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColGrid    = rl.NewColor(30, 30, 30, 255)
)

const (
	screenW = 1280
	screenH = 720

	wheelZoom  = 1.2
	maxFrameDt = 0.1
	maxHistory = 200
	fontPath   = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
)

type App struct {
	Sim       *sim.Simulator
	Cfg       *config.Config
	Camera    rl.Camera3D
	Orbit     *viz.OrbitCamera
	Manual    *control.Manual
	Log       *logging.Logger
	Running   bool
	AutoOrbit bool
	InMenu    bool
	Presets   []string
	Selected  int
	History   []float64
	Font      rl.Font
	hasFont   bool
}

func initWindow() {
	rl.InitWindow(screenW, screenH, "spheresim")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func loadFont() (rl.Font, bool) {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault(), false
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font, true
}

// NewApp builds a viewer for cfg. With interactive set the app opens on
// the preset menu and creates the simulator once one is chosen.
func NewApp(cfg *config.Config, log *logging.Logger, interactive bool) (*App, error) {
	if log == nil {
		log = logging.Discard()
	}
	font, ok := loadFont()
	app := &App{
		Cfg:       cfg,
		Orbit:     viz.NewOrbitCamera(),
		Manual:    control.NewManual(),
		Log:       log,
		AutoOrbit: true,
		InMenu:    interactive,
		Presets:   config.ListPresets(),
		History:   make([]float64, 0, maxHistory),
		Font:      font,
		hasFont:   ok,
	}
	app.Camera = rl.NewCamera3D(
		rl.NewVector3(0, viz.OrbitHeight, viz.DefaultDistance),
		rl.NewVector3(0, 0, 0),
		rl.NewVector3(0, 1, 0),
		viz.FOV,
		rl.CameraPerspective,
	)
	if !interactive {
		if err := app.start(cfg); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Run opens the window on an already configured simulation and blocks
// until it is closed.
func Run(cfg *config.Config, log *logging.Logger) error {
	initWindow()
	defer rl.CloseWindow()
	app, err := NewApp(cfg, log, false)
	if err != nil {
		return err
	}
	app.RunLoop()
	return nil
}

// RunInteractive opens the window on the preset menu.
func RunInteractive(base *config.Config, log *logging.Logger) error {
	initWindow()
	defer rl.CloseWindow()
	app, err := NewApp(base, log, true)
	if err != nil {
		return err
	}
	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if !a.Update() {
			return
		}
		a.Draw()
	}
}

func (a *App) start(cfg *config.Config) error {
	sc, err := cfg.SimConfig()
	if err != nil {
		return err
	}
	s, err := sim.New(sc)
	if err != nil {
		return err
	}
	a.Cfg = cfg
	a.Sim = s
	a.Running = true
	a.InMenu = false
	a.History = a.History[:0]
	a.Manual.Reset()
	a.Orbit.Reset()
	a.Log.Infof("gui: started %s", s.Counts())
	return nil
}

// Update handles one frame of input and physics. It returns false when
// the user asked to quit.
func (a *App) Update() bool {
	if a.InMenu {
		return a.updateMenu()
	}

	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		return false
	}
	if rl.IsKeyPressed(rl.KeyM) {
		a.InMenu = true
		a.Running = false
		return true
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyO) {
		a.AutoOrbit = !a.AutoOrbit
	}
	if rl.IsKeyPressed(rl.KeyC) {
		a.Orbit.Reset()
	}

	for _, cmd := range a.Manual.Update(pollInput()) {
		a.Log.Debugf("gui: %s", cmd)
		a.Sim.Enqueue(cmd)
		if cmd.Kind == sim.Reset {
			a.History = a.History[:0]
		}
	}

	a.updateCamera()

	dt := rl.GetFrameTime()
	if dt > maxFrameDt {
		dt = maxFrameDt
	}
	if !a.Running {
		dt = 0
	}
	if a.Running || a.Sim.Pending() > 0 {
		stats, err := a.Sim.Step(dt)
		if err != nil {
			a.Log.Warnf("gui: frame %d: %v", stats.Frame, err)
		}
		if stats.Rejected > 0 {
			a.Log.Debugf("gui: frame %d rejected %d non-finite updates", stats.Frame, stats.Rejected)
		}
	}

	a.History = append(a.History, float64(a.Sim.Counts().E))
	if len(a.History) > maxHistory {
		a.History = a.History[1:]
	}
	return true
}

func pollInput() control.Input {
	in := control.Input{
		Ctrl: rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl),
	}
	keys := map[control.Key]int32{
		control.Key1: rl.KeyOne,
		control.Key2: rl.KeyTwo,
		control.Key3: rl.KeyThree,
		control.Key4: rl.KeyFour,
		control.KeyR: rl.KeyR,
	}
	for k, rk := range keys {
		in.Down[k] = rl.IsKeyDown(rk)
	}
	return in
}

func (a *App) updateCamera() {
	if a.AutoOrbit {
		a.Orbit.Orbit()
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		a.Orbit.Zoom(wheel * wheelZoom)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		d := rl.GetMouseDelta()
		a.Orbit.Pan(d.X, d.Y)
	}

	a.Camera.Position = toRL(a.Orbit.Eye())
	a.Camera.Target = toRL(a.Orbit.Target)
}

func toRL(v mgl32.Vec3) rl.Vector3 {
	return rl.NewVector3(v.X(), v.Y(), v.Z())
}

func (a *App) updateMenu() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return false
	}
	if rl.IsKeyPressed(rl.KeyEscape) {
		if a.Sim == nil {
			return false
		}
		a.InMenu = false
		a.Running = true
		return true
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		a.Selected = (a.Selected + 1) % len(a.Presets)
	}
	if rl.IsKeyPressed(rl.KeyUp) {
		a.Selected = (a.Selected - 1 + len(a.Presets)) % len(a.Presets)
	}
	if rl.IsKeyPressed(rl.KeyEnter) {
		cfg := a.Cfg.Clone()
		config.Presets[a.Presets[a.Selected]](cfg)
		if err := a.start(cfg); err != nil {
			a.Log.Errorf("gui: preset %s: %v", a.Presets[a.Selected], err)
		}
	}
	return true
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.InMenu {
		a.drawMenu()
	} else {
		a.drawSim()
		a.DrawHUD()
	}

	rl.EndDrawing()
}

func (a *App) drawSim() {
	rl.BeginMode3D(a.Camera)
	a.drawGrid(40, 5)

	pop := a.Sim.Population()
	for i := 0; i < pop.LenE(); i++ {
		rl.DrawSphere(toRL(pop.E(i).Position), particle.DefaultESize, ColE)
	}
	for i := 0; i < pop.LenMP(); i++ {
		mp := pop.MP(i)
		rl.DrawSphere(toRL(mp.Position), mp.Size*0.5, ColMP)
	}
	rl.EndMode3D()
}

func (a *App) drawGrid(slices int, spacing float32) {
	half := float32(slices) * spacing / 2
	for i := -slices / 2; i <= slices/2; i++ {
		pos := float32(i) * spacing
		rl.DrawLine3D(rl.NewVector3(pos, 0, -half), rl.NewVector3(pos, 0, half), ColGrid)
		rl.DrawLine3D(rl.NewVector3(-half, 0, pos), rl.NewVector3(half, 0, pos), ColGrid)
	}
}

func (a *App) DrawHUD() {
	c := a.Sim.Counts()
	a.drawText(fmt.Sprintf("E Particles: %d/%d", c.E, c.MaxE), 10, 10, 20, ColE)
	a.drawText(fmt.Sprintf("MP Particles: %d/%d", c.MP, c.MaxMP), 10, 35, 20, ColMP)

	status := "RUNNING"
	col := ColSelect
	if !a.Running {
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, screenW-130, 10, 16, col)
	a.drawText(fmt.Sprintf("frame %d  t=%.2f", a.Sim.FrameNumber(), a.Sim.Time()), screenW-230, 32, 14, ColText)

	a.DrawTelemetry()

	a.drawText("1/2 ADD E/MP  3/4 REMOVE  CTRL+1/2/3 BATCH  CTRL+R RESET  SPACE PAUSE  O ORBIT  M MENU  ESC/Q QUIT",
		10, screenH-24, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), screenW-80, screenH-48, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	if !a.hasFont {
		rl.DrawText(text, int32(x), int32(y), int32(size), color)
		return
	}
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// DrawTelemetry plots the recent E count as a line strip.
func (a *App) DrawTelemetry() {
	if len(a.History) < 2 {
		return
	}

	rectX, rectY := 10, screenH-110
	width, height := 400, 60

	minVal, maxVal := a.History[0], a.History[0]
	for _, v := range a.History {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.History))
	for i, val := range a.History {
		px := float32(rectX) + float32(i)/float32(len(a.History))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("E: %d", int(a.History[len(a.History)-1])), rectX+width+10, rectY+height-10, 14, ColText)
}

func (a *App) drawMenu() {
	a.drawText("spheresim", 50, 50, 40, ColSelect)
	a.drawText("Select Preset", 50, 100, 16, ColTextDim)

	y := 160
	for i, name := range a.Presets {
		if i == a.Selected {
			a.drawText(fmt.Sprintf("> %s", name), 50, y, 20, ColSelect)
		} else {
			a.drawText(fmt.Sprintf("  %s", name), 50, y, 20, ColText)
		}
		y += 28
	}

	a.drawText("ARROWS: NAVIGATE  ENTER: START  ESC: BACK  Q: QUIT", 800, screenH-40, 14, ColTextDim)
}
