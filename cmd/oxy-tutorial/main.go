// Command oxy-tutorial opens a window and draws a textured, instanced mesh with a camera driven
// by WASD or the arrow keys. Moving the cursor changes the clear color; Escape quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"cogentcore.org/core/math32"
	"github.com/Carmen-Shannon/oxy-tutorial/common"
	"github.com/Carmen-Shannon/oxy-tutorial/config"
	"github.com/Carmen-Shannon/oxy-tutorial/engine"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/camera"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/loader"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/renderer"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/scene"
	"github.com/Carmen-Shannon/oxy-tutorial/engine/window"
)

func init() {
	// GLFW and the surface must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "oxy.toml", "TOML configuration file; missing means defaults")
	flag.Parse()

	if err := run(*configPath); err != nil {
		common.Logger().Error("exiting", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "oxy-tutorial:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	common.SetLogger(logger)
	slog.SetDefault(logger)

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	presentMode, err := renderer.ParsePresentMode(cfg.Renderer.PresentMode)
	if err != nil {
		return err
	}
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(presentMode),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceFallbackAdapter),
	)
	if err != nil {
		return err
	}
	defer r.Release()

	source, err := assetSource(cfg.Assets)
	if err != nil {
		return err
	}
	ld := loader.NewLoader(source,
		loader.WithRenderer(r),
		loader.WithWorkers(cfg.Assets.Workers),
	)
	defer ld.Release()

	c := cfg.Camera
	cam := camera.NewCamera(
		camera.WithEye(math32.Vec3(c.Eye[0], c.Eye[1], c.Eye[2])),
		camera.WithTarget(math32.Vec3(c.Target[0], c.Target[1], c.Target[2])),
		camera.WithUp(math32.Vec3(c.Up[0], c.Up[1], c.Up[2])),
		camera.WithFovy(math32.DegToRad(c.FovyDegrees)),
		camera.WithClipPlanes(c.ZNear, c.ZFar),
	)
	sc, err := scene.NewScene(context.Background(), r, ld,
		scene.WithCamera(cam),
		scene.WithController(camera.NewCameraController(camera.WithSpeed(c.Speed))),
		scene.WithInstanceGrid(cfg.Instances.PerRow, cfg.Instances.Spacing),
		scene.WithShader(cfg.Assets.Shader),
		scene.WithModelShader(cfg.Assets.ModelShader),
		scene.WithTexture(cfg.Assets.Texture),
		scene.WithModel(cfg.Assets.Model),
		scene.WithShaderValidation(cfg.Renderer.ValidateShaders),
	)
	if err != nil {
		return err
	}
	defer sc.Release()

	eng := engine.NewEngine(r, sc, engine.WithProfiling(cfg.Log.Profile))
	return eng.Run(win)
}

func assetSource(cfg config.AssetsConfig) (loader.AssetSource, error) {
	if cfg.Source == "http" {
		return loader.NewHTTPSource(cfg.Origin, cfg.Prefix, loader.WithProgress(cfg.ShowProgress))
	}
	return loader.NewOSSource(cfg.Dir)
}
