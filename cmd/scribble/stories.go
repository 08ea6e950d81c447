package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/export"
	"github.com/pbaille/scribble/internal/story"
	"github.com/spf13/cobra"
)

func newCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new [title]",
		Short: "Create an empty story",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			st := domain.NewStory(strings.Join(args, " "))
			if err := s.SaveStory(st); err != nil {
				return err
			}

			fmt.Printf("Created story: %s\n", st.ID.String()[:8])
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			stories, err := s.ListStories(limit, 0)
			if err != nil {
				return err
			}

			if len(stories) == 0 {
				fmt.Println("No stories yet. Use 'scribble new' to create one.")
				return nil
			}

			for _, st := range stories {
				fmt.Printf("%s  %-40s %d objects\n", st.ID.String()[:8], truncate(st.Title, 40), st.ObjectCount)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of stories to show")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show story details",
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

			fmt.Printf("ID:      %s\n", st.ID)
			fmt.Printf("Title:   %s\n", st.Title)
			fmt.Printf("Objects: %d\n", len(st.Objects))
			for _, o := range st.Objects {
				strokes, points := 0, 0
				for _, f := range o.Frames {
					strokes += len(f.Strokes)
					points += f.PointCount()
				}
				fmt.Printf("\n  %s  %s\n", o.ID.String()[:8], o.Name)
				fmt.Printf("    frames:   %d (active %d, %s)\n", len(o.Frames), o.ActiveFrameIndex, o.PlaybackSetting)
				fmt.Printf("    strokes:  %d, %d points\n", strokes, points)
				fmt.Printf("    position: %.3f %.3f %.3f\n", o.Position.X, o.Position.Y, o.Position.Z)
			}
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a story document (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open document: %w", err)
				}
				defer f.Close()
				r = f
			}

			st, err := story.Decode(r)
			if err != nil {
				return err
			}
			if title != "" {
				st.Title = title
			}

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.SaveStory(st); err != nil {
				return err
			}

			fmt.Printf("Imported story: %s (%d objects)\n", st.ID.String()[:8], len(st.Objects))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "override the story title")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		format string
		out    string
		frame  int
		active bool
	)

	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Export a story as json, obj or pdf",
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

			var w io.Writer = os.Stdout
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "json":
				return story.Encode(w, *st)
			case "obj":
				opt := export.Options{Frame: frame, Mesh: cfg.Mesh()}
				if active {
					opt.Frame = export.ActiveFrame
				}
				return export.WriteOBJ(cmd.Context(), w, *st, opt)
			case "pdf":
				return export.WritePDF(w, *st)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "json, obj or pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&frame, "frame", 0, "frame baked for obj export")
	cmd.Flags().BoolVar(&active, "active", false, "bake each object's active frame")
	return cmd
}
