package mesh

import (
	"context"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/pbaille/scribble/internal/domain"
)

// Options controls how strokes are converted to meshes.
type Options struct {
	// RadialSegments is the ring resolution.
	RadialSegments int
	// RadiusScale converts stroke thickness to tube radius.
	RadiusScale float64
	// Preview selects BuildSegments instead of BuildTube.
	Preview bool
}

// DefaultOptions matches how placed story objects are rendered: eight
// segments per ring and radius = thickness/6000.
func DefaultOptions() Options {
	return Options{RadialSegments: 8, RadiusScale: 1.0 / 6000}
}

// Radius returns the tube radius for a stroke thickness.
func (o Options) Radius(thickness float64) float64 {
	return thickness * o.RadiusScale
}

// StrokeMesh is the baked geometry of one stroke.
type StrokeMesh struct {
	StrokeID uuid.UUID    `json:"strokeId"`
	Color    domain.Color `json:"color"`
	Mesh     Mesh         `json:"mesh"`
}

// BakeStroke builds the mesh of a single stroke.
func BakeStroke(s domain.Stroke, opt Options) StrokeMesh {
	build := BuildTube
	if opt.Preview {
		build = BuildSegments
	}
	return StrokeMesh{
		StrokeID: s.ID,
		Color:    s.Color,
		Mesh:     build(s.Points, opt.Radius(s.Thickness), opt.RadialSegments),
	}
}

// BakeFrame builds every stroke of f in parallel and returns the meshes in
// stroke order. Strokes that produce no triangles are left out.
func BakeFrame(ctx context.Context, f domain.Frame, opt Options) ([]StrokeMesh, error) {
	results := make([]StrokeMesh, len(f.Strokes))
	jobs := make(chan int)
	workers := min(runtime.GOMAXPROCS(0), len(f.Strokes))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = BakeStroke(f.Strokes[i], opt)
			}
		}()
	}

	var err error
feed:
	for i := range f.Strokes {
		select {
		case jobs <- i:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	if err != nil {
		return nil, err
	}

	out := results[:0]
	for _, r := range results {
		if !r.Mesh.IsEmpty() {
			out = append(out, r)
		}
	}
	return out, nil
}
