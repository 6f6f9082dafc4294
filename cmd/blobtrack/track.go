package main

import (
	"context"

	"github.com/LdDl/blobtrack/api"
	"github.com/LdDl/blobtrack/config"
	"github.com/LdDl/blobtrack/detector"
	"github.com/LdDl/blobtrack/mot"
	"github.com/LdDl/blobtrack/pipeline"
	"github.com/LdDl/blobtrack/render"
	"github.com/LdDl/blobtrack/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func track(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (err error) {
	trackerOptions, err := cfg.TrackerOptions()
	if err != nil {
		return err
	}
	tracker := mot.NewTracker(trackerOptions, cfg.Tracker.NextObjectID)

	var source *pipeline.VideoSource
	if cfg.Video.Camera >= 0 {
		source, err = pipeline.OpenCamera(cfg.Video.Camera)
	} else {
		source, err = pipeline.OpenFile(cfg.Video.Path)
	}
	if err != nil {
		return err
	}
	defer source.Close()
	logger.Infow("source opened", "source", source.Name(), "fps", source.FPS(), "matcher", cfg.Tracker.Matcher)

	archive := storage.NewArchive()
	opts := []pipeline.Option{
		pipeline.WithRenderer(render.New(cfg.RenderOptions())),
		pipeline.WithSink(archive),
	}

	if cfg.Output.SQLite != "" {
		store, err := storage.NewSQLiteStore(cfg.Output.SQLite)
		if err != nil {
			return err
		}
		defer store.Close()
		recorder, err := storage.NewRecorder(store, source.Name())
		if err != nil {
			return err
		}
		logger.Infow("recording run", "db", cfg.Output.SQLite, "run", recorder.RunID())
		opts = append(opts, pipeline.WithSink(recorder))
	}

	if cfg.Output.Video != "" {
		writer := pipeline.NewVideoFile(cfg.Output.Video, source.FPS())
		defer func() {
			if closeErr := writer.Close(); closeErr != nil && err == nil {
				err = errors.Wrap(closeErr, "can't close video")
			}
		}()
		opts = append(opts, pipeline.WithWriter(writer))
	}

	if cfg.Display.Enabled {
		window := pipeline.NewWindow(cfg.Display.DelayMs)
		defer window.Close()
		opts = append(opts, pipeline.WithDisplay(window))
	}

	serverDone := make(chan error, 1)
	if cfg.HTTP.Addr != "" {
		hub := api.NewStateHub()
		opts = append(opts, pipeline.WithPublisher(hub))
		serverCtx, cancelServer := context.WithCancel(ctx)
		server := api.NewServer(cfg.HTTP.Addr, hub, logger)
		go func() {
			serverDone <- server.Run(serverCtx)
		}()
		defer func() {
			cancelServer()
			if serverErr := <-serverDone; serverErr != nil && err == nil {
				err = serverErr
			}
		}()
	}

	p := pipeline.New(source, detector.New(cfg.DetectorOptions()), tracker, logger, opts...)
	runErr := p.Run(ctx)

	objects := archive.Objects()
	logger.Infow("tracking finished", "frames", p.Frames(), "tracks", len(objects), "live", tracker.Len())

	if cfg.Output.CSV != "" {
		if err := storage.SaveCSV(cfg.Output.CSV, objects); err != nil {
			return err
		}
		logger.Infow("trajectories exported", "csv", cfg.Output.CSV)
	}
	if cfg.Output.Plot != "" {
		err := render.PlotTrajectories(objects, cfg.Output.Plot)
		switch {
		case errors.Is(err, render.ErrNothingToPlot):
			logger.Warnw("no trajectories to plot")
		case err != nil:
			return err
		default:
			logger.Infow("trajectories plotted", "png", cfg.Output.Plot)
		}
	}
	return runErr
}

func export(dbPath, run, csvPath string, logger *zap.SugaredLogger) error {
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var runID uuid.UUID
	if run != "" {
		runID, err = uuid.Parse(run)
		if err != nil {
			return errors.Wrapf(err, "bad run id '%s'", run)
		}
	} else {
		runs, err := store.Runs()
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return errors.Errorf("no runs in '%s'", dbPath)
		}
		runID = runs[len(runs)-1]
	}

	tracks, err := store.Tracks(runID)
	if err != nil {
		return err
	}
	state := make(mot.State, len(tracks))
	for id, history := range tracks {
		state[id] = &mot.TrackedObject{
			ID:      id,
			Center:  history[len(history)-1],
			History: history,
		}
	}
	if err := storage.SaveCSV(csvPath, state); err != nil {
		return err
	}
	logger.Infow("run exported", "run", runID, "tracks", len(state), "csv", csvPath)
	return nil
}
