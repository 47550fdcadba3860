package app

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/Faultbox/nodering/internal/assets"
	"github.com/Faultbox/nodering/internal/config"
	"github.com/Faultbox/nodering/internal/engine/lighting"
	"github.com/Faultbox/nodering/internal/engine/mesh"
	"github.com/Faultbox/nodering/internal/engine/scene"
	"github.com/Faultbox/nodering/internal/gpu"
	"github.com/Faultbox/nodering/pkg/math"
)

// Node names of the demo scene.
const (
	TriangleNode = "triangle"
	CubeNode     = "cube"
)

// Pipelines are the pipelines the demo scene is drawn with. Cube is a
// textured pipeline, lit or not depending on the configuration.
type Pipelines struct {
	Color gpu.Pipeline
	Cube  gpu.Pipeline
}

// Demo is the demo scene together with the meshes and texture it draws.
type Demo struct {
	Scene *scene.Scene

	meshes  []*mesh.Mesh
	texture gpu.Texture
	sampler gpu.Sampler
}

// NewDemo builds a colored triangle and a textured, spinning cube.
// The cube is lit when cfg.Render.Lit is set.
func NewDemo(dev gpu.Device, pipes Pipelines, img *image.RGBA, cfg *config.Config) (_ *Demo, err error) {
	d := &Demo{Scene: scene.New()}
	defer func() {
		if err != nil {
			d.Close(context.Background())
		}
	}()

	tri, err := mesh.New(dev, assets.Triangle(), nil)
	if err != nil {
		return nil, fmt.Errorf("triangle mesh: %w", err)
	}
	d.meshes = append(d.meshes, tri)

	cubeVerts, cubeIdx := assets.Cube()
	var cube *mesh.Mesh
	if cfg.Render.Lit {
		cube, err = mesh.New(dev, cubeVerts, cubeIdx)
	} else {
		cube, err = mesh.New(dev, unlit(cubeVerts), cubeIdx)
	}
	if err != nil {
		return nil, fmt.Errorf("cube mesh: %w", err)
	}
	d.meshes = append(d.meshes, cube)

	if d.texture, err = dev.NewTexture(img); err != nil {
		return nil, fmt.Errorf("cube texture: %w", err)
	}
	if d.sampler, err = dev.NewSampler(gpu.DefaultSampling); err != nil {
		return nil, fmt.Errorf("cube sampler: %w", err)
	}

	common := []scene.Option{
		scene.WithBuffers(cfg.Render.InflightBuffers),
		scene.WithAcquireTimeout(cfg.Render.AcquireTimeout),
	}

	triNode, err := scene.NewNode(TriangleNode, tri, dev, common...)
	if err != nil {
		return nil, err
	}
	triNode.Position = math.Vec3{X: -2}
	d.Scene.Add(triNode, pipes.Color)

	cubeOpts := append(common[:len(common):len(common)],
		scene.WithTexture(d.texture, d.sampler),
		scene.WithCullMode(gpu.CullBack))
	if cfg.Render.Lit {
		light := lighting.Default()
		light.AimFromSun(30, 45)
		cubeOpts = append(cubeOpts, scene.WithLight(light))
	}
	cubeNode, err := scene.NewNode(CubeNode, cube, dev, cubeOpts...)
	if err != nil {
		return nil, err
	}
	cubeNode.Position = math.Vec3{X: 1.5}
	d.Scene.Add(cubeNode, pipes.Cube)

	d.Scene.SetAnimator(spin)
	return d, nil
}

// spin turns the cube by its accumulated time.
func spin(s *scene.Scene, elapsed time.Duration) {
	cube := s.Node(CubeNode)
	if cube == nil {
		return
	}
	t := float32((cube.Elapsed() + elapsed).Seconds())
	cube.Rotation = math.Vec3{X: t * 0.5, Y: t}
}

// Close destroys the scene, waits until the device has given back every
// uniform slot, then frees meshes and texture. The scene must already be
// detached from the frame driver.
func (d *Demo) Close(ctx context.Context) error {
	d.Scene.Destroy()
	err := d.Scene.Wait(ctx)

	for _, m := range d.meshes {
		m.Destroy()
	}
	d.meshes = nil
	if d.texture != nil {
		d.texture.Destroy()
		d.texture = nil
	}
	if d.sampler != nil {
		d.sampler.Destroy()
		d.sampler = nil
	}
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	return nil
}

// CubeTexture returns the configured texture image, or a checkerboard
// when none is configured.
func CubeTexture(m *assets.Manager, cfg *config.Config) (*image.RGBA, error) {
	if cfg.Assets.Texture == "" {
		return assets.Checkerboard(256, 8,
			color.RGBA{0xf0, 0xf0, 0xf0, 0xff}, color.RGBA{0x30, 0x30, 0x90, 0xff})
	}
	img, err := m.LoadImage(cfg.Assets.Texture)
	if err != nil {
		return nil, fmt.Errorf("texture: %w", err)
	}
	return img, nil
}

func unlit(v []mesh.LitVertex) []mesh.TexturedVertex {
	out := make([]mesh.TexturedVertex, len(v))
	for i, lv := range v {
		out[i] = mesh.TexturedVertex{Position: lv.Position, UV: lv.UV}
	}
	return out
}
