package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pbaille/scribble/internal/animation"
	"github.com/pbaille/scribble/internal/capture"
	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
	"github.com/pbaille/scribble/internal/history"
	"github.com/pbaille/scribble/internal/logging"
	"github.com/pbaille/scribble/internal/store"
	"github.com/pbaille/scribble/internal/story"
	"github.com/spf13/cobra"
)

func drawCmd() *cobra.Command {
	var (
		name     string
		world    bool
		snap     bool
		playback string
	)

	cmd := &cobra.Command{
		Use:   "draw [story-id]",
		Short: "Draw an object from samples on stdin and add it to a story",
		Long: `Reads one sample per line as "x y [z]". A blank line ends the stroke.

Directives:
  ---                  start a new frame
  frame op [n]         select n, left, right, dup, delete or add; edit the
                       resulting active frame
  color r g b [a]      color of following strokes, channels in [0,1]
  thickness t          thickness of following strokes
  erase x y radius     erase strokes near a point (plane drawings only)
  undo | redo          step through the current frame's history
  # ...                comment`,
		Args: cobra.ExactArgs(1),
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

			space := capture.Plane
			if world {
				space = capture.World
			}
			ccfg := cfg.Capture(space)
			if cmd.Flags().Changed("snap") {
				ccfg.Snap = snap
			}
			setting, err := domain.ParsePlaybackSetting(playback)
			if err != nil {
				return err
			}

			drawing, err := recordDrawing(cmd.InOrStdin(), ccfg)
			if err != nil {
				return err
			}
			drawing.PlaybackSetting = setting

			var o domain.Object
			if world {
				o, err = story.Continue3D(drawing, name)
			} else {
				o, err = story.Continue2D(drawing, name)
			}
			if err != nil {
				return err
			}

			repo := story.NewRepository(*st)
			stopSaving := store.Autosave(s, repo)
			defer stopSaving()
			repo.Append(o)

			fmt.Printf("Added object %s to %s: %d frames\n", o.ID.String()[:8], st.Title, len(o.Frames))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "object", "object name")
	cmd.Flags().BoolVar(&world, "world", false, "samples are 3D world positions instead of plane coordinates")
	cmd.Flags().BoolVar(&snap, "snap", false, "snap samples to nearby committed points")
	cmd.Flags().StringVar(&playback, "playback", "loop", "loop, bounce or random")
	return cmd
}

// recordDrawing feeds a sample script through a capture engine and returns
// the drawn object
func recordDrawing(r io.Reader, ccfg capture.Config) (domain.Object, error) {
	drawing := domain.NewObject("drawing")
	hist := history.New(&drawing.Frames[0])
	engine := capture.NewEngine(hist, ccfg)
	color, thickness := domain.Black, 1.0

	// samples are stamped at the capture tick so resampling sees them in order
	at := time.Unix(0, 0)
	finish := func() {
		if s, ok := engine.End(); ok {
			logging.Logger().Debug("stroke committed", "stroke", s.ID, "points", len(s.Points))
		}
	}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			finish()
			continue
		}

		var err error
		switch fields[0] {
		case "#":
		case "---":
			finish()
			animation.AddFrame(&drawing)
			hist.Bind(drawing.ActiveFrame())
		case "frame":
			finish()
			err = editFrames(&drawing, fields[1:])
			hist.Bind(drawing.ActiveFrame())
		case "color":
			var c []float64
			if c, err = parseFloats(fields[1:], 3, 4); err == nil {
				color = domain.Color{Red: c[0], Green: c[1], Blue: c[2], Alpha: 1}
				if len(c) == 4 {
					color.Alpha = c[3]
				}
				engine.SetStyle(color, thickness)
			}
		case "thickness":
			var t []float64
			if t, err = parseFloats(fields[1:], 1, 1); err == nil {
				thickness = t[0]
				engine.SetStyle(color, thickness)
			}
		case "erase":
			var e []float64
			if e, err = parseFloats(fields[1:], 3, 3); err == nil {
				finish()
				n := engine.Erase(geom.V3(e[0], e[1], 0), e[2])
				logging.Logger().Debug("erased", "strokes", n)
			}
		case "undo":
			finish()
			hist.Undo()
		case "redo":
			finish()
			hist.Redo()
		default:
			if strings.HasPrefix(fields[0], "#") {
				continue
			}
			var p []float64
			if p, err = parseFloats(fields, 2, 3); err == nil {
				v := geom.V3(p[0], p[1], 0)
				if len(p) == 3 {
					v.Z = p[2]
				}
				if !engine.Capturing() {
					engine.Begin()
				}
				at = at.Add(capture.DefaultSampleInterval)
				engine.AppendSample(v, at)
			}
		}
		if err != nil {
			return domain.Object{}, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return domain.Object{}, fmt.Errorf("read samples: %w", err)
	}
	finish()
	return drawing, nil
}

// editFrames applies a "frame op [n]" directive
func editFrames(o *domain.Object, args []string) error {
	op, index, err := parseFrameArgs(args)
	if err != nil {
		return err
	}
	animation.Apply(o, op, index)
	return nil
}

// parseFrameArgs parses "op [n]", where n is only given for select
func parseFrameArgs(args []string) (animation.FrameOp, int, error) {
	if len(args) == 0 {
		return "", 0, errors.New("missing frame operation")
	}
	op, err := animation.ParseFrameOp(args[0])
	if err != nil {
		return "", 0, err
	}
	if op != animation.OpSelect {
		if len(args) != 1 {
			return "", 0, errors.New("wrong number of values")
		}
		return op, 0, nil
	}
	if len(args) != 2 {
		return "", 0, errors.New("frame select needs an index")
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, err
	}
	return op, index, nil
}

func parseFloats(fields []string, lo, hi int) ([]float64, error) {
	if len(fields) < lo || len(fields) > hi {
		return nil, errors.New("wrong number of values")
	}
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
