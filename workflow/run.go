package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"adt/cache"
	"adt/config"
	"adt/convert"
	"adt/document"
	"adt/state"
	"adt/transport"
	"adt/xliff"
)

// Run is the translate subcommand: load a document snapshot, push its
// texts through the translation service for every configured language,
// review, upload and persist the mutated snapshot.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("translate")

	src, dst, err := resolvePaths(env)
	if err != nil {
		return err
	}

	if cpErr := env.Rpt.StoreCopy("input/"+config.CleanFileName(filepath.Base(src)), src); cpErr != nil {
		log.Warn("Unable to store source snapshot in the report", zap.Error(cpErr))
	}

	store, err := document.Load(src, env.Log)
	if err != nil {
		return err
	}

	codes := cmd.StringSlice("lang")
	if len(codes) == 0 {
		codes = env.Cfg.Translation.Languages
	}
	languages, err := ParseLanguages(codes, log)
	if err != nil {
		return err
	}

	client := transport.NewClient(env.Cfg.Service.URL, string(env.Cfg.Service.Token),
		time.Duration(env.Cfg.Service.TimeoutSec)*time.Second, env.Log).
		WithChunking(env.Cfg.Chunking.BatchSize, env.Cfg.Chunking.SplitAboveBytes)

	var c *cache.Cache
	if env.Cfg.Cache.Enable && !cmd.Bool("no-cache") {
		if c, err = cache.Open(env.Cfg.Cache.Path, env.Log); err != nil {
			// translation works without the cache, it just costs service calls
			log.Warn("Translation cache unavailable", zap.Error(err))
		} else {
			defer c.Close()
		}
	}

	var reviewer Reviewer = NewConsoleReviewer(os.Stdin, os.Stdout)
	if env.AutoApprove || env.Cfg.Translation.AutoApprove {
		reviewer = AutoApprove{}
	}

	m, err := NewManager(Config{
		Store:     store,
		Client:    client,
		Cache:     c,
		Reviewer:  reviewer,
		Languages: languages,
		Meta: transport.Meta{
			FileKey:  store.FileKey(),
			FileName: store.FileName(),
			PageName: store.PageName(),
		},
		DuplicateNameTemplate: env.Cfg.Document.DuplicateNameTemplate,
		PreviewMaxWidth:       env.Cfg.Document.Preview.MaxWidth,
		PreviewQuality:        env.Cfg.Document.Preview.JPEGQuality,
		Report:                env.Rpt,
		Log:                   env.Log,
	})
	if err != nil {
		return err
	}

	log.Info("Translation starting", zap.String("source", src), zap.String("destination", dst),
		zap.Int("languages", len(languages)))
	defer func(start time.Time) {
		log.Info("Translation completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	err = m.Run(ctx)

	summary := m.Summary()
	var survived bool
	for _, s := range summary {
		if s.State != StateFailed {
			survived = true
			break
		}
	}
	if !survived {
		return err
	}

	if saveErr := store.Save(dst); saveErr != nil {
		return multierr.Append(err, saveErr)
	}
	log.Info("Snapshot saved", zap.String("destination", dst))
	if cpErr := env.Rpt.StoreCopy("output/"+config.CleanFileName(filepath.Base(dst)), dst); cpErr != nil {
		log.Warn("Unable to store result snapshot in the report", zap.Error(cpErr))
	}

	if cmd.Bool("xliff") {
		if xlErr := writeXLIFF(env.Cfg.Translation.XLIFFDir, env.Cfg.Translation.SourceLang, m, summary, log); xlErr != nil {
			return multierr.Append(err, xlErr)
		}
	}
	return err
}

// resolvePaths settles the source and destination snapshot locations.
// Command line arguments land in the environment before the action runs
// and take precedence over the configuration.
func resolvePaths(env *state.LocalEnv) (src, dst string, err error) {
	src = env.SnapshotPath
	if len(src) == 0 {
		src = env.Cfg.Document.SnapshotPath
	}
	if len(src) == 0 {
		return "", "", errors.New("no document snapshot has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return "", "", err
	}

	dst = env.SavePath
	if len(dst) == 0 {
		dst = env.Cfg.Document.SavePath
	}
	if len(dst) == 0 {
		// mutate in place
		dst = src
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return "", "", err
	}
	if dst != src && !env.Overwrite {
		if _, statErr := os.Stat(dst); statErr == nil {
			return "", "", fmt.Errorf("destination '%s' already exists, use overwrite to replace it", dst)
		}
	}
	return src, dst, nil
}

func writeXLIFF(dir, sourceLang string, m *Manager, summary []LanguageReport, log *zap.Logger) error {
	var (
		files []xliff.File
		langs []string
	)
	for _, s := range summary {
		if s.State != StateUploaded || len(s.Uploaded) == 0 {
			continue
		}
		f := xliff.File{
			Original:   m.FrameName(),
			SourceLang: sourceLang,
			TargetLang: s.Lang.Code,
		}
		for _, u := range s.Uploaded {
			f.Units = append(f.Units, xliff.Unit{ID: u.NodeID, Source: u.Characters, Target: u.CharactersTranslated})
		}
		files = append(files, f)
		langs = append(langs, s.Lang.Code)
	}
	if len(files) == 0 {
		log.Info("No uploaded translations, skipping XLIFF export")
		return nil
	}

	path := xliff.Filename(dir, m.FrameName(), langs)
	if err := xliff.Save(path, files); err != nil {
		return err
	}
	log.Info("XLIFF written", zap.String("file", path), zap.Int("languages", len(files)))
	return nil
}

// Export is the export subcommand: collect the selected frame's text units
// and write the service payload as JSON without calling the service.
func Export(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("export")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		src = env.Cfg.Document.SnapshotPath
	}
	if len(src) == 0 {
		return errors.New("no document snapshot has been specified")
	}

	store, err := document.Load(src, env.Log)
	if err != nil {
		return err
	}

	sel := store.Selection()
	if len(sel) != 1 {
		return fmt.Errorf("select exactly one frame to export, have %d nodes selected", len(sel))
	}
	frame := sel[0]
	if !store.IsFrame(frame) {
		return fmt.Errorf("selected node %s is not a frame", frame)
	}

	units := convert.CollectTextUnits(store, frame, env.Log)
	if len(units) == 0 {
		return fmt.Errorf("frame %q contains no text to export", store.Name(frame))
	}

	payload := &transport.ExportPayload{
		Meta: transport.Meta{
			FileKey:    store.FileKey(),
			FileName:   store.FileName(),
			PageName:   store.PageName(),
			ExportedAt: time.Now().UTC(),
		},
		Frame: transport.Frame{ID: string(frame), Name: store.Name(frame)},
		Texts: units,
		Lang:  cmd.String("lang"),
	}
	if img, err := store.ExportImage(frame); err == nil {
		if uri, err := convert.PreparePreview(img, env.Cfg.Document.Preview.MaxWidth, env.Cfg.Document.Preview.JPEGQuality, env.Log); err == nil {
			payload.Frame.Image = uri
		} else {
			log.Warn("Unable to prepare frame preview", zap.Error(err))
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	out := os.Stdout
	if fname := cmd.Args().Get(1); len(fname) > 0 {
		if out, err = os.Create(fname); err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
		log.Info("Exporting payload", zap.String("file", fname), zap.Int("units", len(units)))
	}

	if _, err = out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("unable to write payload: %w", err)
	}
	return nil
}
