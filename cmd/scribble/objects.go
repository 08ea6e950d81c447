package main

import (
	"fmt"
	"strconv"

	"github.com/pbaille/scribble/internal/domain"
	"github.com/pbaille/scribble/internal/geom"
	"github.com/pbaille/scribble/internal/story"
	"github.com/spf13/cobra"
)

func objectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "object",
		Short: "Manage the objects of a story",
	}
	cmd.AddCommand(objectRenameCmd())
	cmd.AddCommand(objectRemoveCmd())
	cmd.AddCommand(objectDuplicateCmd())
	cmd.AddCommand(objectMoveCmd())
	cmd.AddCommand(objectArrangeCmd())
	cmd.AddCommand(objectPlaybackCmd())
	cmd.AddCommand(objectFrameCmd())
	return cmd
}

func objectRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename [story-id] [object] [name]",
		Short: "Rename an object",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editObject(args[0], args[1], func(repo *story.Repository, o domain.Object) error {
				if err := repo.Rename(o.ID, args[2]); err != nil {
					return err
				}
				fmt.Printf("Renamed %s to %s\n", o.Name, args[2])
				return nil
			})
		},
	}
}

func objectRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [story-id] [object]",
		Short: "Remove an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editObject(args[0], args[1], func(repo *story.Repository, o domain.Object) error {
				if err := repo.Remove(o.ID); err != nil {
					return err
				}
				fmt.Printf("Removed %s\n", o.Name)
				return nil
			})
		},
	}
}

func objectDuplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dup [story-id] [object]",
		Short: "Copy an object next to the original",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editObject(args[0], args[1], func(repo *story.Repository, o domain.Object) error {
				d, err := repo.Duplicate(o.ID)
				if err != nil {
					return err
				}
				fmt.Printf("Duplicated %s as %s\n", o.Name, d.ID.String()[:8])
				return nil
			})
		},
	}
}

func objectMoveCmd() *cobra.Command {
	var face bool

	cmd := &cobra.Command{
		Use:   "move [story-id] [object] [x] [y] [z]",
		Short: "Place an object",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parseVec(args[2:])
			if err != nil {
				return err
			}
			return editObject(args[0], args[1], func(repo *story.Repository, o domain.Object) error {
				orient := o.Orientation
				if face {
					orient = geom.FacingOrientation(pos, geom.Vec3{})
				}
				return repo.Reposition(o.ID, pos, orient)
			})
		},
	}

	cmd.Flags().BoolVar(&face, "face", false, "turn the object toward the origin")
	return cmd
}

func objectArrangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "arrange [story-id] [x] [y] [z]",
		Short: "Move every object so the scene is centred on a point facing the origin",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			anchor, err := parseVec(args[1:])
			if err != nil {
				return err
			}
			return editStory(args[0], func(repo *story.Repository) error {
				repo.RepositionAll(anchor, geom.FacingOrientation(anchor, geom.Vec3{}))
				fmt.Printf("Arranged %d objects around %v\n", repo.Len(), anchor)
				return nil
			})
		},
	}
}

func objectPlaybackCmd() *cobra.Command {
	var direction int

	cmd := &cobra.Command{
		Use:   "playback [story-id] [object] [loop|bounce|random]",
		Short: "Set how an object advances through its frames",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			setting, err := domain.ParsePlaybackSetting(args[2])
			if err != nil {
				return err
			}
			return editObject(args[0], args[1], func(repo *story.Repository, o domain.Object) error {
				if err := repo.SetPlayback(o.ID, setting); err != nil {
					return err
				}
				if cmd.Flags().Changed("direction") {
					return repo.SetDirection(o.ID, direction)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&direction, "direction", 1, "bounce direction, 1 or -1")
	return cmd
}

func objectFrameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frame [story-id] [object] [select n|left|right|dup|delete|add]",
		Short: "Select, reorder, copy, delete or add frames",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, index, err := parseFrameArgs(args[2:])
			if err != nil {
				return err
			}
			return editObject(args[0], args[1], func(repo *story.Repository, o domain.Object) error {
				if err := repo.EditFrames(o.ID, op, index); err != nil {
					return err
				}
				o, err := repo.Get(o.ID)
				if err != nil {
					return err
				}
				fmt.Printf("%s: %d frames, active %d\n", o.Name, len(o.Frames), o.ActiveFrameIndex)
				return nil
			})
		},
	}
}

// editStory runs fn on a repository holding the story and saves the result
func editStory(ref string, fn func(repo *story.Repository) error) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.FindStory(ref)
	if err != nil {
		return fmt.Errorf("story %s: %w", ref, err)
	}
	repo := story.NewRepository(*st)
	if err := fn(repo); err != nil {
		return err
	}
	if err := s.SaveStory(repo.Story()); err != nil {
		return fmt.Errorf("save story: %w", err)
	}
	return nil
}

// editObject is editStory for one object, found by id prefix or name
func editObject(storyRef, objectRef string, fn func(repo *story.Repository, o domain.Object) error) error {
	return editStory(storyRef, func(repo *story.Repository) error {
		st := repo.Story()
		o, err := findObject(&st, objectRef)
		if err != nil {
			return err
		}
		return fn(repo, o)
	})
}

func parseVec(args []string) (geom.Vec3, error) {
	var v [3]float64
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return geom.Vec3{}, fmt.Errorf("coordinate %q: %w", a, err)
		}
		v[i] = f
	}
	return geom.V3(v[0], v[1], v[2]), nil
}
