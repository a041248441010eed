package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/astei/anvil/nbt"
	"github.com/astei/anvil/region"
	"github.com/astei/anvil/snapshot"
)

var chunkFlags = []cli.Flag{
	&cli.IntFlag{Name: "x", Usage: "chunk x within the region (0-31)"},
	&cli.IntFlag{Name: "z", Usage: "chunk z within the region (0-31)"},
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return fmt.Errorf("%s: expected %d argument(s): %s", c.Command.Name, n, c.Command.ArgsUsage)
	}

	return nil
}

func (e *env) open(path string) (*region.Region, error) {
	return region.Open(path, region.WithLogger(e.logger))
}

func infoCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print the header of a region file",
		ArgsUsage: "<region>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			r, err := e.open(c.Args().First())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(c.App.Writer, r)
			return err
		},
	}
}

func dumpCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "print the NBT tree of one chunk",
		ArgsUsage: "<region>",
		Flags:     chunkFlags,
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			r, err := e.open(c.Args().First())
			if err != nil {
				return err
			}
			tag, err := r.Chunk(c.Int("x"), c.Int("z"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, tag)
			return err
		},
	}
}

func nbtCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "nbt",
		Usage:     "print a gzip-compressed NBT document such as level.dat",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			f, err := os.Open(c.Args().First())
			if err != nil {
				return err
			}
			defer f.Close()

			tag, err := nbt.ReadGzip(f)
			if err != nil {
				return err
			}
			e.logger.Debug("read document", "path", f.Name(), "kind", tag.Kind())
			_, err = fmt.Fprintln(c.App.Writer, tag)
			return err
		},
	}
}

func generateCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "write an empty chunk into a region file, creating it if needed",
		ArgsUsage: "<region>",
		Flags:     chunkFlags,
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			path := c.Args().First()

			r, err := e.open(path)
			if errors.Is(err, fs.ErrNotExist) {
				x, z, perr := region.ParseFilename(path)
				if perr != nil {
					return perr
				}
				r, err = region.New(x, z, region.WithLogger(e.logger)), nil
			}
			if err != nil {
				return err
			}
			if err := r.GenerateChunk(c.Int("x"), c.Int("z")); err != nil {
				return err
			}

			return replaceFile(path, r)
		},
	}
}

// replaceFile writes r next to path and renames it over path once complete.
func replaceFile(path string, r *region.Region) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".anvil-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := r.WriteFile(name); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}

	return nil
}

func exportCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "write every chunk of a region to a snapshot",
		ArgsUsage: "<region> <snapshot>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 2); err != nil {
				return err
			}
			r, err := e.open(c.Args().Get(0))
			if err != nil {
				return err
			}
			s, err := snapshot.Capture(r)
			if err != nil {
				return err
			}

			out, err := os.Create(c.Args().Get(1))
			if err != nil {
				return err
			}
			defer out.Close()

			bar := e.progress(c, -1, "exporting", true)
			n, err := s.WriteTo(io.MultiWriter(out, bar))
			if err != nil {
				return err
			}
			_ = bar.Finish()
			e.logger.Info("exported region", "x", r.X, "z", r.Z, "chunks", len(s.Entries), "bytes", n)

			return out.Close()
		},
	}
}

func importCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "restore a snapshot as a region file in a directory",
		ArgsUsage: "<snapshot> <dir>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 2); err != nil {
				return err
			}
			in, err := os.Open(c.Args().Get(0))
			if err != nil {
				return err
			}
			defer in.Close()
			info, err := in.Stat()
			if err != nil {
				return err
			}

			bar := e.progress(c, info.Size(), "importing", true)
			rd := progressbar.NewReader(in, bar)
			s, err := snapshot.Read(&rd)
			if err != nil {
				return err
			}
			_ = bar.Finish()

			r, err := s.Restore(region.WithLogger(e.logger))
			if err != nil {
				return err
			}

			return replaceFile(filepath.Join(c.Args().Get(1), region.Filename(s.X, s.Z)), r)
		},
	}
}

func worldCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "world",
		Usage:     "summarize every region file in a directory",
		ArgsUsage: "<dir>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			world, err := region.OpenWorld(c.Args().First(), region.WithLogger(e.logger))
			if world == nil {
				return err
			}
			if err != nil {
				e.logger.Warn("some regions could not be opened", "error", err)
			}

			var total region.ChunkSummary
			chunks := 0
			bar := e.progress(c, int64(world.ChunkCount()), "scanning", false)
			for _, r := range world.Regions {
				err := r.Each(func(_, _ int, tag nbt.Tag) error {
					s := region.Summarize(tag)
					total.Sections += s.Sections
					total.Entities += s.Entities
					total.TileEntities += s.TileEntities
					chunks++
					return bar.Add(1)
				})
				if err != nil {
					return fmt.Errorf("region %d,%d: %w", r.X, r.Z, err)
				}
			}
			_ = bar.Finish()

			_, err = fmt.Fprintf(c.App.Writer, "regions: %d, chunks: %d, sections: %d, entities: %d, tile entities: %d\n",
				len(world.Regions), chunks, total.Sections, total.Entities, total.TileEntities)
			return err
		},
	}
}
