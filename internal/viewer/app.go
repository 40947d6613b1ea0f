// Package viewer runs the twin viewer: the main loop tying input, the model
// registry, asset loading and rendering together.
package viewer

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/twinview/internal/anim"
	"github.com/Faultbox/twinview/internal/assets"
	"github.com/Faultbox/twinview/internal/config"
	"github.com/Faultbox/twinview/internal/engine/camera"
	"github.com/Faultbox/twinview/internal/engine/debug"
	"github.com/Faultbox/twinview/internal/engine/input"
	"github.com/Faultbox/twinview/internal/engine/renderer"
	"github.com/Faultbox/twinview/internal/engine/ui2d"
	"github.com/Faultbox/twinview/internal/engine/window"
	"github.com/Faultbox/twinview/internal/gesture"
	"github.com/Faultbox/twinview/internal/logger"
	"github.com/Faultbox/twinview/internal/render"
	"github.com/Faultbox/twinview/internal/scene"
)

const windowTitle = "Twinview"

// Viewer is the main viewer instance.
type Viewer struct {
	cfg     *config.Config
	log     *zap.Logger
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	ui       *ui2d.Context
	input    *input.Input

	registry *scene.Registry
	camera   *camera.OrbitCamera
	smoother *anim.Smoother
	gestures *gesture.Controller
	actions  *Actions

	cache    *assets.Cache
	loader   *assets.GLTFLoader
	uploads  *assets.Uploads
	watcher  *assets.Watcher
	sources  *sources
	importer *Importer
	composer *render.Composer

	screenshots *debug.ScreenshotCapture

	// Window size in points (input, UI, picking) and pixels (GL).
	winW, winH int
	pixW, pixH int

	uiOwnsPointer bool
	screenshot    bool
	fps           float64
	status        string
}

// New creates the window, GL state and scene from cfg.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg: cfg,
		log: logger.Named("viewer"),
	}

	records, err := BuildRecords(cfg)
	if err != nil {
		return nil, err
	}
	v.registry, err = scene.NewRegistry(records...)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}
	v.log.Info("initializing viewer",
		zap.Int("models", v.registry.Len()),
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	// Create window (this also creates the OpenGL context)
	v.window, err = window.New(window.Config{
		Title:      windowTitle,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		MSAA:       cfg.Graphics.MSAA,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	v.winW, v.winH = v.window.GetSize()
	v.pixW, v.pixH = v.window.DrawableSize()
	if v.pixW != v.winW {
		v.log.Info("HiDPI detected",
			zap.Int("window", v.winW),
			zap.Int("drawable", v.pixW),
			zap.Float32("scale", float32(v.pixW)/float32(v.winW)),
		)
	}

	// Renderer AFTER window, since the OpenGL context must exist
	v.renderer, err = renderer.New(renderer.Config{
		Width:      v.pixW,
		Height:     v.pixH,
		MSAA:       cfg.Graphics.MSAA,
		Background: cfg.Graphics.Background,
	})
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.ui, err = ui2d.NewContext(v.winW, v.winH)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create ui: %w", err)
	}
	v.input = input.New(v.winW, v.winH)

	v.uploads = assets.NewUploads(cfg.Upload.MaxBytes)
	v.loader = assets.NewGLTFLoader(cfg.Assets.Root, v.uploads)
	v.loader.Normalize = cfg.Assets.Normalize
	v.cache = assets.NewCache(v.loader)

	var fw FileWatcher
	if cfg.Assets.Watch {
		if v.watcher, err = assets.NewWatcher(); err != nil {
			v.log.Warn("hot reload disabled", zap.Error(err))
		} else {
			fw = v.watcher
		}
	}
	v.sources = newSources(v.cache, v.loader, fw, v.log)
	if cfg.Upload.Enabled {
		v.importer = NewImporter(v.uploads)
	}

	v.composer, err = render.NewComposer(render.ComposerConfig{
		Styles:         BuildStyles(cfg.Render),
		GroundExtent:   cfg.Scene.GroundExtent,
		GridDivisions:  cfg.Scene.GridDivisions,
		LightAzimuth:   cfg.Scene.Light.Azimuth,
		LightElevation: cfg.Scene.Light.Elevation,
	}, v.cache)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to create composer: %w", err)
	}

	v.camera = camera.NewOrbitCamera(CameraSettings(cfg.Camera))
	v.smoother = anim.NewSmoother(cfg.Interaction.EaseRate, cfg.Interaction.SnapEpsilon)
	v.gestures = gesture.NewController(v.registry, gesture.NewScenePicker(v.registry, v.viewport), v.camera, GestureParams(cfg))
	v.actions = NewActions(v.registry, v.camera, StepsFromConfig(cfg.Interaction))
	v.screenshots = debug.NewScreenshotCapture("screenshots", "twinview")

	v.registry.OnChange(func(version uint64) {
		v.log.Debug("scene changed", zap.Uint64("version", version))
		v.sources.Sync(v.registry.Records())
	})
	v.sources.Sync(v.registry.Records())

	v.log.Info("viewer initialized")
	return v, nil
}

// viewport returns the current projection for picking, in window points.
func (v *Viewer) viewport() gesture.Viewport {
	vp := v.projection().Mul4(v.camera.ViewMatrix())
	return gesture.Viewport{
		Width:       float32(v.winW),
		Height:      float32(v.winH),
		InvViewProj: vp.Inv(),
	}
}

func (v *Viewer) projection() mgl32.Mat4 {
	aspect := float32(1)
	if v.winH > 0 {
		aspect = float32(v.winW) / float32(v.winH)
	}
	return v.camera.ProjectionMatrix(aspect)
}

// Run starts the main loop and blocks until the viewer quits.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting main loop")

	for v.running {
		frameStart := time.Now()
		dt := float32(frameStart.Sub(lastTime).Seconds())
		lastTime = frameStart

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		for _, ev := range v.input.Events() {
			v.handleEvent(ev)
		}

		// 2. Update scene state
		v.update(dt)

		// 3. Render
		v.render()

		// 4. Present
		v.window.SwapBuffers()

		frameCount++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			v.fps = float64(frameCount) / elapsed.Seconds()
			frameCount = 0
			fpsTimer = time.Now()
		}
		v.limitFrame(frameStart)
	}

	v.log.Info("viewer closed normally")
	return nil
}

// limitFrame sleeps out the rest of the frame when an FPS cap is set and
// VSync does not pace the loop.
func (v *Viewer) limitFrame(start time.Time) {
	limit := v.cfg.Graphics.FPSLimit
	if limit <= 0 || v.cfg.Graphics.VSync {
		return
	}
	budget := time.Second / time.Duration(limit)
	if spent := time.Since(start); spent < budget {
		time.Sleep(budget - spent)
	}
}

func (v *Viewer) handleEvent(ev input.Event) {
	uiIn := v.ui.Input()

	switch ev.Type {
	case input.EventWindowResize:
		v.winW, v.winH = v.window.GetSize()
		v.pixW, v.pixH = v.window.DrawableSize()
		v.input.SetSize(v.winW, v.winH)
		v.ui.Resize(v.winW, v.winH)
		v.renderer.Resize(v.pixW, v.pixH)

	case input.EventKeyDown:
		v.runCommand(KeyCommand(ev), "")

	case input.EventPointerDown:
		uiIn.MouseX, uiIn.MouseY = ev.X, ev.Y
		if v.ui.Hit(ev.X, ev.Y) || v.ui.Capturing() {
			v.uiOwnsPointer = true
			uiIn.MouseLeftDown = ev.Contacts == 1
			return
		}
		v.gestures.PointerDown(pointer(ev))

	case input.EventPointerMove:
		uiIn.MouseX, uiIn.MouseY = ev.X, ev.Y
		if v.uiOwnsPointer {
			return
		}
		if ev.Hover && v.ui.Hit(ev.X, ev.Y) {
			return
		}
		v.gestures.PointerMove(pointer(ev))

	case input.EventPointerUp:
		uiIn.MouseX, uiIn.MouseY = ev.X, ev.Y
		if v.uiOwnsPointer {
			v.uiOwnsPointer = false
			uiIn.MouseLeftDown = false
			return
		}
		v.gestures.PointerUp(pointer(ev))

	case input.EventWheel:
		if v.ui.Hit(ev.X, ev.Y) {
			uiIn.ScrollY += ev.Wheel
			return
		}
		v.gestures.Wheel(ev.Wheel)

	case input.EventDropFile:
		if v.importer == nil {
			v.setStatus("Uploads are disabled")
			return
		}
		id, ok := DropTarget(v.registry)
		if !ok {
			return
		}
		v.importFile(id, ev.Path)
	}
}

func pointer(ev input.Event) gesture.Pointer {
	return gesture.Pointer{X: ev.X, Y: ev.Y, Contacts: ev.Contacts}
}

// runCommand runs a panel or keyboard command.
func (v *Viewer) runCommand(cmd Command, id string) {
	switch cmd {
	case CmdNone:
		return
	case CmdQuit:
		v.running = false
		return
	case CmdScreenshot:
		v.screenshot = true
		return
	case CmdLoadFile:
		if v.importer == nil {
			return
		}
		target, err := v.actions.Target(id)
		if err != nil {
			v.setStatus("Select a model first")
			return
		}
		v.importer.Browse(target)
		return
	}

	if err := v.actions.Run(cmd, id); err != nil {
		if errors.Is(err, ErrNoTarget) {
			v.setStatus("Select a model first")
			return
		}
		v.log.Warn("command failed", zap.Stringer("command", cmd), zap.Error(err))
	}
}

func (v *Viewer) importFile(id, path string) {
	old, _, err := v.importer.Import(v.registry, id, path)
	if err != nil {
		v.log.Warn("import failed", zap.String("path", path), zap.Error(err))
		v.setStatus("Import failed: " + err.Error())
		return
	}
	if assets.IsMemoryRef(old) {
		v.cache.Invalidate(old)
		v.composer.Release(old)
		v.sources.Forget(old)
	}
	v.setStatus("Loaded " + path)
}

func (v *Viewer) setStatus(msg string) {
	v.status = msg
}

// update advances animation, camera and asset state.
func (v *Viewer) update(dt float32) {
	if v.importer != nil {
		for _, p := range v.importer.Picks() {
			v.importFile(p.ID, p.Path)
		}
	}

	if v.watcher != nil {
		for _, ref := range v.watcher.Drain() {
			v.log.Info("asset changed, reloading", zap.String("ref", ref))
			v.cache.Reload(ref)
		}
	}
	v.cache.Poll()

	v.smoother.Step(dt, v.registry.Records())
	v.camera.Update(dt)
}

// render draws the scene, the panel and takes a pending screenshot.
func (v *Viewer) render() {
	v.renderer.Begin()

	v.composer.Draw(render.View{
		View:       v.camera.ViewMatrix(),
		Projection: v.projection(),
		Width:      v.pixW,
		Height:     v.pixH,
	}, render.SceneFrame{
		Records:    v.registry.Records(),
		Overlaps:   v.registry.Overlaps(),
		Hovered:    v.gestures.Hovered(),
		Rotation:   v.smoother.RotationOr,
		ShowBounds: v.cfg.Scene.ShowBounds,
	})

	v.ui.Begin()
	for _, req := range DrawPanel(v.ui, v.panelState()) {
		v.runCommand(req.Cmd, req.ID)
	}
	v.ui.End()

	v.renderer.End()

	if v.screenshot {
		v.screenshot = false
		v.takeScreenshot()
	}
}

func (v *Viewer) panelState() PanelState {
	styles := v.composer.Styles()
	records := v.registry.Records()
	hits, misses := v.cache.Stats()
	dragging, _ := v.gestures.Dragging()
	st := PanelState{
		Models:   make([]ModelRow, 0, len(records)),
		Names:    make(map[string]string, len(records)),
		Uploads:  v.importer != nil,
		Browsing: v.importer != nil && v.importer.Browsing(),
		ShowFPS:  v.cfg.Graphics.ShowFPS,
		FPS:      v.fps,
		Status:   v.status,

		CacheHits:   hits,
		CacheMisses: misses,
		Dragging:    dragging,
	}
	for _, rec := range records {
		st.Names[rec.ID] = rec.Name
		if rec.Selected {
			st.Selection = true
		}
		st.Models = append(st.Models, ModelRow{
			Record:  rec,
			Overlap: v.registry.Overlap(rec.ID),
			Asset:   v.cache.State(rec.Source),
			Color:   [3]float32(styles.Role(rec.Role).Color),
		})
	}
	return st
}

func (v *Viewer) takeScreenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		v.setStatus("Screenshot failed")
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
	v.setStatus("Saved " + path)
}

// Close releases all resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.watcher != nil {
		if err := v.watcher.Close(); err != nil {
			v.log.Warn("closing watcher", zap.Error(err))
		}
	}
	if v.cache != nil {
		v.cache.Close()
	}
	if v.composer != nil {
		v.composer.Close()
	}
	if v.ui != nil {
		v.ui.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
