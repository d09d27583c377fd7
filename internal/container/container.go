package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"simlab/adapters/export"
	"simlab/adapters/report"
	"simlab/adapters/sqlstore"
	"simlab/app"
	"simlab/internal"
	"simlab/internal/config"
	"simlab/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Adapters
	RunRepo   ports.RunRepository
	Exporters []ports.TableExporter
	Markdown  ports.ReportRenderer
	HTML      ports.ReportRenderer

	Lab *app.LabService
}

// New creates a container. The summary store is only opened when the
// configuration names a database.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Exporters: []ports.TableExporter{export.NewCSVExporter(), export.NewXLSXExporter("lab_tables")},
		Markdown:  report.NewMarkdownRenderer(),
		HTML:      report.NewHTMLRenderer(),
	}

	if cfg.Database.Enabled() {
		if err := c.initDatabase(ctx); err != nil {
			return nil, err
		}
	}

	opts := []app.LabOption{
		app.WithExporters(c.Exporters...),
		app.WithRenderer(c.HTML),
	}
	if c.RunRepo != nil {
		opts = append(opts, app.WithRepository(c.RunRepo))
	}
	c.Lab = app.NewLabService(cfg.Simulation, logger, opts...)
	return c, nil
}

// initDatabase opens the summary store and its repositories
func (c *Container) initDatabase(ctx context.Context) error {
	db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return err
	}
	c.DB = db
	c.RunRepo = sqlstore.NewRunRepository(db)
	c.Logger.Info("Summary store ready (%s)", c.Config.Database.Driver)
	return nil
}

// Shutdown closes the database and flushes the logger
func (c *Container) Shutdown(ctx context.Context) error {
	var err error
	if c.DB != nil {
		err = c.DB.Close()
	}
	_ = c.Logger.Sync()
	return err
}
