package preprocess

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestSource(t *testing.T) {
	src := "#define GAP 10px\nel.style(GAP, #fff, \"12px\")"
	got := Source(src).Text
	// юниты переписываются до раскрытия макросов
	if want := "\nel.style(\"10px\", \"#fff\", \"12px\")"; got != want {
		t.Errorf("Source = %q, want %q", got, want)
	}
}

func TestApplies(t *testing.T) {
	tests := map[string]bool{
		"a.ts":        true,
		"a.tsx":       true,
		"lib/a.mjs":   true,
		"types.d.ts":  false,
		"data.json":   false,
		"README.md":   false,
		"noextension": false,
	}
	for path, want := range tests {
		if got := Applies(path); got != want {
			t.Errorf("Applies(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestPipelineFileSkipsNonSources(t *testing.T) {
	p := New(nil)
	text, err := p.File(context.Background(), "x.json", `{"w": 10px}`).Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if text != `{"w": 10px}` {
		t.Errorf("json rewritten: %q", text)
	}
}

func TestPipelineTransform(t *testing.T) {
	var seen string
	p := New(func(_ context.Context, path, text string) *Pending {
		seen = text
		return Ready("// " + path + "\n" + text)
	})
	got, err := p.Sync(context.Background(), "a.ts", "#define A 1\nA")
	if err != nil {
		t.Fatal(err)
	}
	if seen != "\n1" {
		t.Errorf("transform saw %q, want the expanded text", seen)
	}
	if got != "// a.ts\n\n1" {
		t.Errorf("Sync = %q", got)
	}
}

func TestSyncRejectsAsync(t *testing.T) {
	p := New(func(_ context.Context, _, text string) *Pending {
		return Async(func() (string, error) { return text, nil })
	})
	_, err := p.Sync(context.Background(), "a.ts", "x")
	if !errors.Is(err, ErrAsyncTransform) {
		t.Fatalf("Sync error = %v, want ErrAsyncTransform", err)
	}
	if !strings.Contains(err.Error(), "a.ts") {
		t.Errorf("error does not name the file: %v", err)
	}
}

func TestAsyncWait(t *testing.T) {
	p := Async(func() (string, error) { return "done", nil })
	if !p.IsAsync() {
		t.Fatal("Async result not reported as async")
	}
	got, err := p.Wait(context.Background())
	if err != nil || got != "done" {
		t.Errorf("Wait = %q, %v", got, err)
	}

	boom := errors.New("boom")
	if _, err := Failed(boom).Wait(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Failed.Wait error = %v", err)
	}
}

func TestAsyncWaitCancelled(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	p := Async(func() (string, error) {
		<-block
		return "", nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait error = %v, want context.Canceled", err)
	}
}

func TestLoader(t *testing.T) {
	read := func(path string) ([]byte, error) {
		if path == "a.ts" {
			return []byte("x = 2em"), nil
		}
		return nil, os.ErrNotExist
	}
	asyncPipeline := New(func(_ context.Context, _, text string) *Pending {
		return Async(func() (string, error) { return strings.ToUpper(text), nil })
	})

	load := asyncPipeline.Loader(context.Background(), read, true)
	got, err := load("a.ts")
	if err != nil || got != `X = "2EM"` {
		t.Errorf("async loader = %q, %v", got, err)
	}
	if _, err := load("missing.ts"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}

	syncLoad := asyncPipeline.Loader(context.Background(), read, false)
	if _, err := syncLoad("a.ts"); !errors.Is(err, ErrAsyncTransform) {
		t.Errorf("sync loader error = %v, want ErrAsyncTransform", err)
	}
}
