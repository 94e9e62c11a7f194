package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-engine/internal/graphics"
	"mini-engine/internal/input"
)

func TestTransformModel(t *testing.T) {
	tr := newTransform()
	tr.SetPosition(mgl32.Vec3{1, 2, 3})
	tr.SetRotation(mgl32.Vec3{0, 0, math32.Pi / 2})
	tr.SetScale(mgl32.Vec3{2, 2, 2})
	require.True(t, tr.Dirty())

	want := mgl32.Translate3D(1, 2, 3).
		Mul4(mgl32.HomogRotate3DX(0)).
		Mul4(mgl32.HomogRotate3DY(0)).
		Mul4(mgl32.HomogRotate3DZ(math32.Pi / 2)).
		Mul4(mgl32.Scale3D(2, 2, 2))
	m := tr.Model()
	assert.True(t, m.ApproxEqualThreshold(want, 1e-5))
	assert.False(t, tr.Dirty())

	// scale, then rotate a quarter turn about Z, then translate
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 1, p.X(), 1e-5)
	assert.InDelta(t, 4, p.Y(), 1e-5)
	assert.InDelta(t, 3, p.Z(), 1e-5)

	tr.SetPosition(mgl32.Vec3{0, 0, 0})
	assert.True(t, tr.Dirty())
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, tr.Model().Col(3).Vec3())
}

func TestTransformModelIsCachedUntilASetterRuns(t *testing.T) {
	tr := newTransform()
	first := tr.Model()
	tr.position = mgl32.Vec3{5, 5, 5} // bypasses the setter
	assert.Equal(t, first, tr.Model(), "no setter ran, no rebuild")
	tr.Translate(mgl32.Vec3{1, 0, 0})
	assert.Equal(t, mgl32.Vec3{6, 5, 5}, tr.Model().Col(3).Vec3())
}

func TestMaterialValidity(t *testing.T) {
	ctx, _ := newTestContext(t)
	addTexture(t, ctx, 10, "crate", 8, 8)
	addShader(t, ctx, 20, "sprite")
	s := New(ctx, 1, "main")
	root := s.CreateRoot("root")
	mat := mustAdd[*Material](t, root, TypeMaterial)

	assert.False(t, mat.Valid(), "no shader or texture yet")
	assert.False(t, mat.SetShader(20), "texture still missing")
	assert.True(t, mat.SetTexture(10))
	assert.True(t, mat.Valid())

	assert.False(t, mat.SetTexture(11))
	assert.False(t, mat.Valid())
	assert.True(t, mat.SetTextureByName("crate"))

	assert.False(t, mat.SetShaderByName("missing"))
	assert.Zero(t, mat.ShaderID())
	assert.True(t, mat.SetShaderByName("sprite"))
	assert.Equal(t, uint32(20), mat.ShaderID())

	ctx.Textures.Remove(10)
	mat.Init()
	assert.False(t, mat.Valid(), "init revalidates")
}

func TestMeshValidity(t *testing.T) {
	ctx, _ := newTestContext(t)
	s := New(ctx, 1, "main")
	root := s.CreateRoot("root")
	mc := mustAdd[*Mesh](t, root, TypeMesh)
	assert.False(t, mc.Valid())

	layout := graphics.MeshLayout{Stride: 3, Position: &graphics.Attribute{Size: 3}}
	mesh, err := graphics.NewMesh(ctx.Device, 30, "tri", layout, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, []uint32{0, 1, 2})
	require.NoError(t, err)
	ctx.Meshes.Add(mesh)

	assert.True(t, mc.SetMeshByName("tri"))
	got, ok := mc.Mesh()
	require.True(t, ok)
	assert.Same(t, mesh, got)
	assert.False(t, mc.SetMesh(31))
}

func TestBuilderRoundTrip(t *testing.T) {
	ctx, _ := newTestContext(t)
	addTexture(t, ctx, 1, "tex", 2, 2)
	addShader(t, ctx, 2, "sh")

	setup := map[string]func(Component){
		TypeTransform: func(c Component) {
			tr := c.(*Transform)
			tr.SetPosition(mgl32.Vec3{1, 2, 3})
			tr.SetRotation(mgl32.Vec3{0.1, 0.2, 0.3})
			tr.SetScale(mgl32.Vec3{4, 5, 6})
		},
		TypeMesh: func(c Component) { c.(*Mesh).SetMesh(77) },
		TypeMaterial: func(c Component) {
			c.(*Material).SetShader(2)
			c.(*Material).SetTexture(1)
		},
		TypeCamera: func(c Component) {
			cam := c.(*Camera)
			cam.SetMode(Perspective)
			cam.SetFOV(75)
			cam.SetAspect(2)
			cam.SetClip(0.5, 50)
			cam.SetPosition(mgl32.Vec3{0, 1, 5})
			cam.SetYaw(-45)
			cam.SetPitch(10)
		},
		TypeFlipbookAnimation: func(c Component) {
			f := c.(*FlipbookAnimation)
			f.SetMaterials([]uint32{3, 4, 5})
			f.SetUpdateTime(120)
			f.Play()
		},
		TypeMouseEventFilter: func(c Component) {
			c.(*MouseEventFilter).SetTrigger(input.MouseButtonRight, input.Release)
		},
		TypeRenderScope: func(c Component) {
			r := c.(*RenderScope)
			r.SetInt("i", 7)
			r.SetFloat("f", 0.5)
			r.SetBool("b", true)
			r.SetVec2("v2", mgl32.Vec2{1, 2})
			r.SetVec3("v3", mgl32.Vec3{1, 2, 3})
			r.SetVec4("v4", mgl32.Vec4{1, 2, 3, 4})
			r.SetMat4("m", mgl32.Translate3D(1, 2, 3))
		},
		TypeRenderPass: func(c Component) { c.(*RenderPass).SetPass("light") },
		TypeLightSource: func(c Component) {
			l := c.(*LightSource)
			l.SetColor(mgl32.Vec3{1, 0.5, 0})
			l.SetIntensity(2)
		},
	}

	for _, typ := range RegisteredTypes() {
		t.Run(typ, func(t *testing.T) {
			fill, ok := setup[typ]
			require.True(t, ok, "no setup for %s", typ)

			c, ok := BuildEmpty(ctx, typ, "orig", 100, 1)
			require.True(t, ok)
			fill(c)
			c.SetActive(false)

			data, ok := SaveJSON(c)
			require.True(t, ok)
			rebuilt, ok := BuildFromJSON(ctx, typ, data)
			require.True(t, ok)

			assert.Equal(t, c.ID(), rebuilt.ID())
			assert.Equal(t, "orig", rebuilt.Name())
			assert.Equal(t, uint32(100), rebuilt.Node())
			assert.False(t, rebuilt.Active())
			assert.Equal(t, c.Valid(), rebuilt.Valid())

			again, ok := SaveJSON(rebuilt)
			require.True(t, ok)
			assert.JSONEq(t, string(data), string(again))
		})
	}
}

func TestBuilderUnknownType(t *testing.T) {
	ctx, _ := newTestContext(t)
	_, ok := BuildEmpty(ctx, "nope", "x", 1, 1)
	assert.False(t, ok)
	_, ok = BuildFromJSON(ctx, "nope", []byte(`{}`))
	assert.False(t, ok)
	_, ok = BuildFromJSON(ctx, TypeTransform, []byte(`{"position": "bad"}`))
	assert.False(t, ok)
	_, ok = SaveJSON(&counter{})
	assert.False(t, ok)

	cam, ok := BuildEmptyOf[Camera](ctx, "cam", 1, 1)
	require.True(t, ok)
	assert.Equal(t, TypeCamera, cam.Type())
	assert.NotZero(t, cam.ID())
}

func TestFlipbookCycles(t *testing.T) {
	ctx, _ := newTestContext(t)
	s := New(ctx, 1, "main")
	root := s.CreateRoot("root")
	frames := make([]*Material, 3)
	ids := make([]uint32, 3)
	for i, name := range []string{"A", "B", "C"} {
		frames[i] = mustAdd[*Material](t, mustChild(t, root, name), TypeMaterial)
		ids[i] = frames[i].ID()
	}
	flip := mustAdd[*FlipbookAnimation](t, root, TypeFlipbookAnimation)
	flip.SetMaterials(ids)
	flip.SetUpdateTime(100)
	flip.Play()
	s.Init()

	activeFrames := func() []bool {
		return []bool{frames[0].Active(), frames[1].Active(), frames[2].Active()}
	}
	assert.Equal(t, []bool{true, false, false}, activeFrames())

	s.Update(60)
	assert.Equal(t, []bool{true, false, false}, activeFrames())
	s.Update(40)
	assert.Equal(t, []bool{false, true, false}, activeFrames())
	s.Update(100)
	assert.Equal(t, []bool{false, false, true}, activeFrames())
	s.Update(100)
	assert.Equal(t, []bool{true, false, false}, activeFrames())

	flip.Stop()
	s.Update(1000)
	assert.Equal(t, []bool{true, false, false}, activeFrames())
}

func TestFlipbookEmptyIsNoop(t *testing.T) {
	f := &FlipbookAnimation{}
	f.Play()
	f.Init()
	f.Update(500)
	assert.Zero(t, f.Cursor())
}

func TestCameraRejectsMismatchedParameters(t *testing.T) {
	cam := newCamera()
	require.Equal(t, Orthographic, cam.Mode())

	assert.False(t, cam.SetFOV(90))
	assert.Equal(t, float32(60), cam.FOV())
	assert.True(t, cam.SetOrtho(OrthoBounds{Left: -400, Right: 400, Top: 300, Bottom: -300}))
	b, ok := cam.Ortho()
	require.True(t, ok)
	assert.Equal(t, float32(400), b.Right)

	cam.SetMode(Perspective)
	assert.False(t, cam.SetOrtho(OrthoBounds{}))
	_, ok = cam.Ortho()
	assert.False(t, ok)
	assert.True(t, cam.SetFOV(90))
	assert.True(t, cam.SetAspect(2))
	assert.True(t, cam.Projection().ApproxEqual(mgl32.Perspective(mgl32.DegToRad(90), 2, cam.Near(), cam.Far())))
}

func TestCameraView(t *testing.T) {
	cam := newCamera()
	cam.SetPosition(mgl32.Vec3{0, 0, 5})
	assert.True(t, cam.Front().ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-5))

	want := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 4}, mgl32.Vec3{0, 1, 0})
	assert.True(t, cam.View().ApproxEqualThreshold(want, 1e-5))

	cam.SetPitch(120)
	assert.Equal(t, float32(89), cam.Pitch())
}

func TestMouseFilterHitTest(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Input.HandleResize(800, 600)
	addTexture(t, ctx, 1, "button", 32, 16)
	addShader(t, ctx, 2, "sh")

	s := New(ctx, 1, "main")
	s.SetActive(true)
	root := s.CreateRoot("root")
	rootTr := mustAdd[*Transform](t, root, TypeTransform)
	rootTr.SetPosition(mgl32.Vec3{50, 0, 0})

	btn := mustChild(t, root, "button")
	tr := mustAdd[*Transform](t, btn, TypeTransform)
	tr.SetPosition(mgl32.Vec3{50, 0, 0})
	tr.SetScale(mgl32.Vec3{2, 2, 1})
	mat := mustAdd[*Material](t, btn, TypeMaterial)
	mat.SetShader(2)
	mat.SetTexture(1)
	filter := mustAdd[*MouseEventFilter](t, btn, TypeMouseEventFilter)

	var hits []uint32
	filter.SetCallback(func(n *Node) { hits = append(hits, n.ID()) })
	s.Init()
	require.True(t, filter.Valid())

	// Center of the window is (400, 300); the button sits at x=100 with
	// half extents 32 x 16.
	assert.True(t, filter.Contains(500, 300))
	assert.True(t, filter.Contains(531, 285))
	assert.False(t, filter.Contains(534, 300))
	assert.False(t, filter.Contains(500, 318))

	rootTr.SetRotation(mgl32.Vec3{0, 0, math32.Pi / 2})
	// Rotated a quarter turn the quad is 32 wide and 64 tall on screen.
	assert.True(t, filter.Contains(500, 270))
	assert.False(t, filter.Contains(525, 300))

	ctx.Input.HandleCursorPos(500, 300)
	ctx.Input.HandleMouseButtonEvent(input.MouseButtonLeft, input.Press)
	assert.Equal(t, []uint32{btn.ID()}, hits)

	ctx.Input.HandleCursorPos(10, 10)
	ctx.Input.HandleMouseButtonEvent(input.MouseButtonLeft, input.Press)
	assert.Len(t, hits, 1, "miss")

	ctx.Input.HandleCursorPos(500, 300)
	btn.SetActive(false)
	ctx.Input.HandleMouseButtonEvent(input.MouseButtonLeft, input.Press)
	assert.Len(t, hits, 1, "inactive node")

	btn.SetActive(true)
	s.SetActive(false)
	ctx.Input.HandleMouseButtonEvent(input.MouseButtonLeft, input.Press)
	assert.Len(t, hits, 1, "inactive scene")
}

func TestMouseFilterCallbackSurvivesClone(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Input.HandleResize(800, 600)
	addTexture(t, ctx, 1, "button", 32, 32)
	addShader(t, ctx, 2, "sh")

	s := New(ctx, 1, "main")
	s.SetActive(true)
	root := s.CreateRoot("root")
	btn := mustChild(t, root, "button")
	mustAdd[*Transform](t, btn, TypeTransform)
	mat := mustAdd[*Material](t, btn, TypeMaterial)
	mat.SetShader(2)
	mat.SetTexture(1)
	filter := mustAdd[*MouseEventFilter](t, btn, TypeMouseEventFilter)

	var hits []uint32
	filter.SetCallback(func(n *Node) { hits = append(hits, n.ID()) })
	s.Init()

	clone, ok := btn.Clone(root.ID())
	require.True(t, ok)
	cf, ok := ComponentOf[*MouseEventFilter](clone)
	require.True(t, ok)
	require.True(t, cf.Valid())

	ctx.Input.HandleCursorPos(400, 300)
	ctx.Input.HandleMouseButtonEvent(input.MouseButtonLeft, input.Press)
	assert.ElementsMatch(t, []uint32{btn.ID(), clone.ID()}, hits)
}

func TestMouseFilterNeedsSiblings(t *testing.T) {
	ctx, _ := newTestContext(t)
	s := New(ctx, 1, "main")
	root := s.CreateRoot("root")
	filter := mustAdd[*MouseEventFilter](t, root, TypeMouseEventFilter)
	s.Init()
	assert.False(t, filter.Valid())
	assert.Zero(t, ctx.Input.HandlerCount())
}

func TestIDsReserved(t *testing.T) {
	ReserveID(1_000_000)
	assert.Greater(t, NextID(), uint32(1_000_000))
	ReserveID(5)
	assert.Greater(t, NextID(), uint32(1_000_000))
}
