package engine

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/relief/pkg/meshio"
)

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	res, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if res == nil {
		t.Fatal("expected non-nil result")
	}
	if len(res.Written) != 0 {
		t.Errorf("expected no written files, got %v", res.Written)
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := NewEngine()

	res, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if res == nil {
		t.Fatal("expected non-nil result")
	}
}

func TestEvaluateValidExpression(t *testing.T) {
	eng := NewEngine()

	// Plain arithmetic produces a result but writes nothing.
	res, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if res == nil {
		t.Fatal("expected non-nil result")
	}
	if len(res.Written) != 0 {
		t.Errorf("expected no written files, got %v", res.Written)
	}
}

func TestEvaluateParseError(t *testing.T) {
	eng := NewEngine()

	res, evalErrs, err := eng.Evaluate("(sphere :nphi")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result on parse error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for unbalanced parens")
	}
}

func TestEvaluateBuiltinError(t *testing.T) {
	eng := NewEngine()

	res, evalErrs, err := eng.Evaluate(`(load-mesh "/nonexistent/missing.ply")`)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if res != nil {
		t.Fatal("expected nil result when a builtin fails")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors for missing input file")
	}
	found := false
	for _, e := range evalErrs {
		if strings.Contains(e.Message, "load-mesh") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected error mentioning load-mesh, got %v", evalErrs)
	}
}

func TestEvaluateSpherePipeline(t *testing.T) {
	eng := NewEngine()
	out := filepath.Join(t.TempDir(), "ball.ply")

	source := `(write-mesh (sphere :nphi 8 :ntheta 5 :radius 2) "` + out + `")`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if len(res.Written) != 1 || res.Written[0] != out {
		t.Fatalf("expected written=[%s], got %v", out, res.Written)
	}

	m, err := meshio.Read(out)
	if err != nil {
		t.Fatalf("reading output mesh: %v", err)
	}
	if m.VertexCount() != 8*3+2 {
		t.Errorf("expected %d vertices, got %d", 8*3+2, m.VertexCount())
	}
}

func TestEvaluateDisplacePipeline(t *testing.T) {
	eng := NewEngine()
	dir := t.TempDir()
	texPath := filepath.Join(dir, "bands.png")
	writeTestImage(t, texPath)
	out := filepath.Join(dir, "carved.ply")

	// Sample the texture, threshold it and carve a difference shell from
	// the displaced sphere. Writes one part.
	source := `
; displacement pipeline
(def ball (sphere :nphi 16 :ntheta 9))
(def tex (load-texture "` + texPath + `"))
(def mask (threshold (sample ball tex) :value 128))
(def carved (displace ball :by -0.1 :where mask))
(write-mesh (difference ball carved :where mask) "` + out + `")
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if len(res.Written) != 1 {
		t.Fatalf("expected one written file, got %v", res.Written)
	}

	m, err := meshio.Read(out)
	if err != nil {
		t.Fatalf("reading output mesh: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("difference shell is empty; expected carved region")
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("invalid output mesh: %v", err)
	}
}

func TestEvaluateSolidPipeline(t *testing.T) {
	eng := NewEngine()
	out := filepath.Join(t.TempDir(), "washer.ply")

	source := `
(def ring (solid-difference (solid-cylinder :height 4 :radius 10)
                            (solid-cylinder :height 6 :radius 5)))
(write-mesh (mesh-solid ring :cells 24) "` + out + `")
`
	res, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if len(res.Written) != 1 {
		t.Fatalf("expected one written file, got %v", res.Written)
	}

	m, err := meshio.Read(out)
	if err != nil {
		t.Fatalf("reading output mesh: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("solid mesh is empty")
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	eng := NewEngine()

	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			eng.Evaluate("(+ 1 2)")
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
}

// writeTestImage writes a grayscale gradient image: black on the left half,
// white on the right half.
func writeTestImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			var c uint8
			if x >= 8 {
				c = 255
			}
			img.Set(x, y, color.RGBA{c, c, c, 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
}
