package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/pbaille/scribble/internal/animation"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/loop"
	"github.com/pbaille/scribble/internal/mesh"
	"github.com/pbaille/scribble/internal/story"
	"github.com/spf13/cobra"
)

func meshCmd() *cobra.Command {
	var (
		frame   int
		preview bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "mesh [story-id] [object-id]",
		Short: "Bake the tube meshes of one object frame",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.FindStory(args[0])
			if err != nil {
				return fmt.Errorf("story %s: %w", args[0], err)
			}
			o, err := findObject(st, args[1])
			if err != nil {
				return err
			}
			if frame < 0 {
				frame = o.ActiveFrameIndex
			}
			if frame >= len(o.Frames) {
				return fmt.Errorf("frame %d out of range (%d frames)", frame, len(o.Frames))
			}

			opt := cfg.Mesh()
			opt.Preview = preview
			meshes, err := mesh.BakeFrame(cmd.Context(), o.Frames[frame], opt)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(meshes)
			}

			verts, tris := 0, 0
			for _, sm := range meshes {
				fmt.Printf("%s  %6d vertices  %6d triangles\n",
					sm.StrokeID.String()[:8], len(sm.Mesh.Vertices), sm.Mesh.TriangleCount())
				verts += len(sm.Mesh.Vertices)
				tris += sm.Mesh.TriangleCount()
			}
			fmt.Printf("\n%d strokes, %d vertices, %d triangles\n", len(meshes), verts, tris)
			return nil
		},
	}

	cmd.Flags().IntVar(&frame, "frame", -1, "frame index (default the active frame)")
	cmd.Flags().BoolVar(&preview, "preview", false, "per-segment cylinders instead of joined tubes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the buffers as JSON")
	return cmd
}

func playCmd() *cobra.Command {
	var (
		speed int
		ticks int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "play [story-id]",
		Short: "Play a story's animation and print each object's frame per tick",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			st, err := s.FindStory(args[0])
			if err != nil {
				return fmt.Errorf("story %s: %w", args[0], err)
			}
			if !cmd.Flags().Changed("speed") {
				speed = cfg.PlaybackSpeed
			}

			var rnd *rand.Rand
			if cmd.Flags().Changed("seed") {
				rnd = rand.New(rand.NewPCG(seed, seed))
			}

			l := loop.New()
			repo := story.NewRepository(*st)
			player := animation.NewPlayer(l, repo, rnd)
			if !player.SetSpeed(speed) {
				return fmt.Errorf("speed must be in [0,%d)", len(animation.Speeds))
			}

			n := 0
			repo.Changes.Subscribe(func(ev story.Event) {
				if ev.Kind != story.FramesAdvanced {
					return
				}
				n++
				printFrames(n, repo)
				if ticks > 0 && n >= ticks {
					player.Stop()
					l.Close()
				}
			})

			l.Post(func() {
				printFrames(0, repo)
				player.Play()
			})
			go func() {
				<-cmd.Context().Done()
				l.Post(player.Stop)
				l.Close()
			}()
			return l.Run(context.Background())
		},
	}

	cmd.Flags().IntVar(&speed, "speed", animation.DefaultSpeed, "speed preset, 0 (slowest) to 4")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "stop after this many ticks (0 plays until interrupted)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for random playback")
	return cmd
}

func printFrames(tick int, repo *story.Repository) {
	parts := make([]string, 0, repo.Len())
	for _, o := range repo.Objects() {
		parts = append(parts, fmt.Sprintf("%s=%d", o.Name, o.ActiveFrameIndex))
	}
	fmt.Printf("%4d  %s\n", tick, strings.Join(parts, " "))
}

func findObject(st *domain.Story, ref string) (domain.Object, error) {
	var found []domain.Object
	for _, o := range st.Objects {
		if strings.HasPrefix(o.ID.String(), ref) || o.Name == ref {
			found = append(found, o)
		}
	}
	switch len(found) {
	case 0:
		return domain.Object{}, fmt.Errorf("object not found: %s", ref)
	case 1:
		return found[0], nil
	default:
		return domain.Object{}, fmt.Errorf("object reference %q is ambiguous", ref)
	}
}
