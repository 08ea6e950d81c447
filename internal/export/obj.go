package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pbaille/scribble/internal/domain"
)

// WriteOBJ bakes s and writes it as a Wavefront OBJ document. Each object
// becomes an "o" group and each stroke a "g" group. Vertex colors follow the
// coordinates on every "v" line.
func WriteOBJ(ctx context.Context, w io.Writer, s domain.Story, opt Options) error {
	sc, err := Bake(ctx, s, opt)
	if err != nil {
		return err
	}
	return sc.WriteOBJ(w)
}

// WriteOBJ writes an already baked scene.
func (sc Scene) WriteOBJ(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n", oneLine(sc.Title))

	base := 1
	for _, om := range sc.Objects {
		fmt.Fprintf(bw, "o %s\n", objName(om.Name, om.ObjectID.String()))
		for _, sm := range om.Strokes {
			fmt.Fprintf(bw, "g stroke_%s\n", sm.StrokeID)
			c := sm.Color
			for _, v := range sm.Mesh.Vertices {
				fmt.Fprintf(bw, "v %s %s %s %s %s %s\n",
					num(v.X), num(v.Y), num(v.Z), num(c.Red), num(c.Green), num(c.Blue))
			}
			for _, n := range sm.Mesh.Normals {
				fmt.Fprintf(bw, "vn %s %s %s\n", num(n.X), num(n.Y), num(n.Z))
			}
			idx := sm.Mesh.Indices
			for i := 0; i+2 < len(idx); i += 3 {
				a, b, c := base+int(idx[i]), base+int(idx[i+1]), base+int(idx[i+2])
				fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
			}
			base += len(sm.Mesh.Vertices)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write obj: %w", err)
	}
	return nil
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func objName(name, fallback string) string {
	n := strings.Join(strings.Fields(name), "_")
	if n == "" {
		return fallback
	}
	return n
}
