package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/leeforge/resizer/concurrency"
	"github.com/leeforge/resizer/errors"
	"github.com/leeforge/resizer/logging"
	"github.com/leeforge/resizer/media/processor"
	"github.com/leeforge/resizer/media/queue"
	"github.com/leeforge/resizer/media/session"
	"github.com/leeforge/resizer/media/storage"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func (a *cliApp) newSession() *session.Session {
	return session.New(
		session.WithLogger(a.logger.Named("session")),
		session.WithMetrics(a.metrics),
	)
}

func imageArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", errors.NewValidation(fmt.Sprintf("expected exactly one image path, got %d", c.NArg()))
	}
	return c.Args().First(), nil
}

type InfoResult struct {
	File        string         `json:"file"`
	Path        string         `json:"path"`
	Format      string         `json:"format"`
	Size        processor.Size `json:"size"`
	AspectRatio float64        `json:"aspectRatio"`
	FileSizeMB  float64        `json:"fileSizeMB"`
}

func (r *InfoResult) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%.2f MB\n", r.File, r.Size, r.Format, r.FileSizeMB)
}

func (a *cliApp) infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "show the size and format of an image",
		ArgsUsage: "<image>",
		Action: a.action(func(c *cli.Context) (any, error) {
			path, err := imageArg(c)
			if err != nil {
				return nil, err
			}

			sess := a.newSession()
			size, err := sess.Load(path)
			if err != nil {
				return nil, err
			}
			return &InfoResult{
				File:        filepath.Base(path),
				Path:        path,
				Format:      sess.SourceFormat(),
				Size:        size,
				AspectRatio: float64(size.Width) / float64(size.Height),
				FileSizeMB:  storage.FileSizeMB(path),
			}, nil
		}),
	}
}

type ResizeResult struct {
	Input        string         `json:"input"`
	Output       string         `json:"output"`
	Format       string         `json:"format"`
	Options      map[string]any `json:"options"`
	OriginalSize processor.Size `json:"originalSize"`
	FinalSize    processor.Size `json:"finalSize"`
	Bytes        int64          `json:"bytes"`
	Preview      string         `json:"preview,omitempty"`
	SaveID       string         `json:"saveId"`
}

func (r *ResizeResult) writeText(w io.Writer) {
	fmt.Fprintf(w, "%s -> %s (%s, %s -> %s, %d bytes)\n",
		r.Input, r.Output, r.Format, r.OriginalSize, r.FinalSize, r.Bytes)
	if r.Preview != "" {
		fmt.Fprintf(w, "preview: %s\n", r.Preview)
	}
}

func (a *cliApp) resizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "resize",
		Usage:     "resize an image and save it",
		ArgsUsage: "<image>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: "target width (default from config)"},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: "target height (default from config)"},
			&cli.BoolFlag{Name: "keep-ratio", Usage: "fit inside width x height keeping the aspect ratio (default from config)"},
			&cli.StringFlag{Name: "method", Usage: "LANCZOS, BICUBIC, BILINEAR or NEAREST"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "JPEG, PNG or WEBP"},
			&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: "JPEG/WebP quality, 1-100"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file; derived from the input when empty"},
			&cli.StringFlag{Name: "suffix", Usage: "suffix for the derived output name"},
			&cli.BoolFlag{Name: "overwrite", Usage: "replace an existing derived output instead of numbering"},
			&cli.BoolFlag{Name: "backup", Usage: "keep the replaced file as <name>_backup<ext>; requires --overwrite"},
			&cli.StringFlag{Name: "preview", Usage: "also write a preview-box sized copy to this file"},
		},
		Action: a.action(a.resize),
	}
}

func (a *cliApp) resizeIntent(c *cli.Context) (processor.ResizeIntent, error) {
	intent := a.settings.ResizeIntent()
	if c.IsSet("width") {
		intent.Width = c.Int("width")
	}
	if c.IsSet("height") {
		intent.Height = c.Int("height")
	}
	if c.IsSet("keep-ratio") {
		intent.MaintainRatio = c.Bool("keep-ratio")
	}
	if c.IsSet("method") {
		method, ok := processor.ParseMethod(c.String("method"))
		if !ok {
			return intent, errors.NewValidation(fmt.Sprintf("unknown resampling method %q", c.String("method")))
		}
		intent.Method = method
	}
	return intent, nil
}

func (a *cliApp) compressionIntent(c *cli.Context) (processor.CompressionIntent, error) {
	intent := a.settings.CompressionIntent()
	if c.IsSet("format") {
		format, ok := processor.ParseFormat(c.String("format"))
		if !ok {
			return intent, errors.NewValidation(fmt.Sprintf("unsupported output format %q", c.String("format")))
		}
		intent.Format = format
	} else if out := c.String("output"); out != "" {
		if format, ok := processor.FormatForPath(out); ok {
			intent.Format = format
		}
	}
	if c.IsSet("quality") {
		intent.Quality = c.Int("quality")
	}
	return intent, intent.Validate()
}

func (a *cliApp) resize(c *cli.Context) (any, error) {
	path, err := imageArg(c)
	if err != nil {
		return nil, err
	}
	if c.Bool("backup") && !c.Bool("overwrite") {
		return nil, errors.NewValidation("--backup requires --overwrite")
	}
	resizeIntent, err := a.resizeIntent(c)
	if err != nil {
		return nil, err
	}
	compression, err := a.compressionIntent(c)
	if err != nil {
		return nil, err
	}

	sess := a.newSession()
	original, err := sess.Load(path)
	if err != nil {
		return nil, err
	}
	final, err := sess.Resize(resizeIntent)
	if err != nil {
		return nil, err
	}

	result := &ResizeResult{
		Input:        path,
		Format:       compression.Format.String(),
		OriginalSize: original,
		FinalSize:    final,
	}

	if preview := c.String("preview"); preview != "" {
		if err := a.writePreview(c.Context, sess, preview); err != nil {
			return nil, err
		}
		result.Preview = preview
	}

	output, err := a.outputPath(c, sess, compression.Format)
	if err != nil {
		return nil, err
	}

	outcome, err := a.save(c.Context, sess, compression, output)
	if err != nil {
		return nil, err
	}

	_, opts := processor.ResolveCompression(compression)
	result.Output = outcome.Path
	result.Options = opts.Params()
	result.Bytes = outcome.Bytes
	result.SaveID = outcome.ID.String()
	return result, nil
}

// outputPath returns --output as given, or the derived path numbered so it
// does not replace an existing file unless --overwrite is set.
func (a *cliApp) outputPath(c *cli.Context, sess *session.Session, format processor.Format) (string, error) {
	if out := c.String("output"); out != "" {
		return out, nil
	}

	suffix := a.settings.OutputSuffix
	if c.IsSet("suffix") {
		suffix = c.String("suffix")
	}
	derived, err := sess.DefaultOutputPath(format, suffix)
	if err != nil {
		return "", err
	}
	if !c.Bool("overwrite") {
		return storage.EnsureUnique(derived), nil
	}

	if c.Bool("backup") {
		if err := backupExisting(derived); err != nil {
			return "", err
		}
	}
	return derived, nil
}

// backupExisting moves path aside to its backup name. A missing file is
// not an error; an existing backup is replaced.
func backupExisting(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := os.Rename(path, storage.BackupName(path)); err != nil {
		return errors.NewEncodeWrite(path, err).WithDetail("stage", "backup")
	}
	return nil
}

// save runs the save on a one-worker queue and renders its progress events.
func (a *cliApp) save(ctx context.Context, sess *session.Session, intent processor.CompressionIntent, path string) (queue.SaveOutcome, error) {
	tasks := concurrency.NewTaskQueue(1).OnPanic(func(r any, stack []byte) {
		a.logger.Error("save task panic", zap.Any("panic", r), zap.ByteString("stack", stack))
	})
	tasks.Start(1)
	defer tasks.Stop()

	saver := queue.NewAsyncSaver(tasks, storage.NewLocalProvider(""), a.logger, a.metrics)
	ticket, err := saver.Save(ctx, sess, intent, path)
	if err != nil {
		return queue.SaveOutcome{}, err
	}

	var outcome queue.SaveOutcome
	for ev := range ticket.Events() {
		switch ev.Type {
		case queue.SaveStarted:
			fmt.Fprintf(a.stderr, "saving %s ...\n", ticket.Path)
		case queue.SaveSucceeded, queue.SaveFailed:
			outcome = *ev.Outcome
		}
	}
	return outcome, outcome.Err
}

func (a *cliApp) writePreview(ctx context.Context, sess *session.Session, path string) error {
	img, ok := sess.Preview(a.settings.Preview.Size())
	if !ok {
		return errors.NewNoImage("preview")
	}
	if err := storage.CheckOutput(path); err != nil {
		return err
	}

	format, _ := processor.FormatForPath(path)
	_, opts := processor.ResolveCompression(processor.CompressionIntent{Format: format, Quality: a.settings.Compression.Quality})

	var buf bytes.Buffer
	if err := processor.Encode(&buf, img, format, opts); err != nil {
		return errors.NewEncodeWrite(path, err)
	}
	if _, err := storage.NewLocalProvider("").Write(ctx, path, &buf); err != nil {
		return errors.NewEncodeWrite(path, err)
	}
	a.logger.Debug("preview written", logging.Path(path), logging.Size("size", img.Bounds().Dx(), img.Bounds().Dy()))
	return nil
}

type FollowResult struct {
	Original processor.Size `json:"original"`
	Size     processor.Size `json:"size"`
}

func (r *FollowResult) writeText(w io.Writer) {
	fmt.Fprintln(w, r.Size)
}

func (a *cliApp) followCommand() *cli.Command {
	return &cli.Command{
		Name:      "follow",
		Usage:     "print the ratio-locked height for a new width",
		ArgsUsage: "<image>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Required: true, Usage: "new width"},
		},
		Action: a.action(func(c *cli.Context) (any, error) {
			path, err := imageArg(c)
			if err != nil {
				return nil, err
			}

			sess := a.newSession()
			original, err := sess.Load(path)
			if err != nil {
				return nil, err
			}
			size, err := sess.FollowWidth(c.Int("width"))
			if err != nil {
				return nil, err
			}
			return &FollowResult{Original: original, Size: size}, nil
		}),
	}
}

type ListEntry struct {
	Path   string  `json:"path"`
	SizeMB float64 `json:"sizeMB"`
}

type ListResult struct {
	Dir    string      `json:"dir"`
	Images []ListEntry `json:"images"`
}

func (r *ListResult) writeText(w io.Writer) {
	for _, img := range r.Images {
		fmt.Fprintf(w, "%s\t%.2f MB\n", filepath.Base(img.Path), img.SizeMB)
	}
}

func (a *cliApp) listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "list supported images in a directory",
		ArgsUsage: "<dir>",
		Action: a.action(func(c *cli.Context) (any, error) {
			dir := c.Args().First()
			if dir == "" {
				dir = "."
			}

			result := &ListResult{Dir: dir, Images: []ListEntry{}}
			for _, path := range storage.DirectoryImages(dir) {
				result.Images = append(result.Images, ListEntry{Path: path, SizeMB: storage.FileSizeMB(path)})
			}
			return result, nil
		}),
	}
}

type DropResult struct {
	Path string `json:"path"`
}

func (r *DropResult) writeText(w io.Writer) {
	fmt.Fprintln(w, r.Path)
}

func (a *cliApp) dropCommand() *cli.Command {
	return &cli.Command{
		Name:      "drop",
		Usage:     "extract the first image path from a drag-and-drop payload",
		ArgsUsage: "<payload>",
		Action: a.action(func(c *cli.Context) (any, error) {
			payload := strings.Join(c.Args().Slice(), " ")
			path, ok := storage.ExtractDropPath(payload)
			if !ok {
				return nil, errors.NewLoad(payload, fmt.Errorf("no supported image in payload"))
			}
			return &DropResult{Path: path}, nil
		}),
	}
}

type FormatsResult struct {
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
	Methods []string `json:"methods"`
}

func (r *FormatsResult) writeText(w io.Writer) {
	fmt.Fprintf(w, "input:   %s\n", strings.Join(r.Inputs, " "))
	fmt.Fprintf(w, "output:  %s\n", strings.Join(r.Outputs, " "))
	fmt.Fprintf(w, "methods: %s\n", strings.Join(r.Methods, " "))
}

func (a *cliApp) formatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "formats",
		Usage: "list supported input extensions, output formats and resampling methods",
		Action: a.action(func(c *cli.Context) (any, error) {
			result := &FormatsResult{Inputs: storage.SupportedExtensions()}
			for _, f := range processor.Formats() {
				result.Outputs = append(result.Outputs, f.String())
			}
			for _, m := range processor.Methods() {
				result.Methods = append(result.Methods, m.DisplayName())
			}
			return result, nil
		}),
	}
}
