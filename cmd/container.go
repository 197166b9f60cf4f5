package cmd

import (
	"fmt"

	"github.com/compozy/m2release/internal/config"
	"github.com/compozy/m2release/internal/orchestrator"
	"github.com/compozy/m2release/internal/repository"
	"github.com/compozy/m2release/internal/service"
	"github.com/compozy/m2release/internal/usecase"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.

type container struct {
	cfg    *config.Config
	logger *zap.Logger

	projects repository.ProjectRepository
	history  service.BuildHistory
	action   *orchestrator.ReleaseAction
}

// newContainer creates a new container with all the dependencies.
func newContainer(configFile string) (*container, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	projects, err := repository.NewStaticProjectRepository(cfg.Projects)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	queue := repository.NewJSONQueueRepository(afero.NewOsFs(), cfg.QueueDir, logger.Named("queue"))
	tags := repository.NewGitTagRepository()
	scheduler := service.NewQueueScheduler(queue, logger.Named("scheduler"))

	action := orchestrator.NewReleaseAction(orchestrator.ReleaseActionDeps{
		Projects:  projects,
		Tags:      tags,
		Authz:     service.NewReleaserAuthorizer(),
		Scheduler: scheduler,
		History:   scheduler,
		Planner:   usecase.NewVersionPlanner(logger.Named("planner")),
		Builder:   &usecase.BuildReleaseRequestUseCase{Logger: logger.Named("submission")},
		Logger:    logger.Named("release"),
	})

	return &container{
		cfg:      cfg,
		logger:   logger,
		projects: projects,
		history:  scheduler,
		action:   action,
	}, nil
}

// newLogger builds a production logger, or a development logger for debug.
func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level == "debug" {
		cfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = lvl
	return cfg.Build()
}

// InitCommands initializes all commands with their dependencies
func InitCommands() error {
	rootCmd.AddCommand(
		newServeCmd(),
		newPlanCmd(),
		newQueueCmd(),
		newVersionCmd(),
	)
	return nil
}
