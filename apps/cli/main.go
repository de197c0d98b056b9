package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/attendly/attendly/core"
	"github.com/attendly/attendly/core/course"
	emailsvc "github.com/attendly/attendly/services/email"
	logsvc "github.com/attendly/attendly/services/logger"
	weathersvc "github.com/attendly/attendly/services/weather"
	"github.com/attendly/attendly/storage"
)

func main() {
	conf := core.NewConfig()

	// stdout only carries command output
	var logOut io.Writer = io.Discard
	if conf.Debug {
		logOut = os.Stderr
	}
	logger := logsvc.NewRollbarLogger(log.New(logOut, "CLI : ", log.LstdFlags), conf)

	os.Exit(run(conf, logger))
}

func run(conf *core.Config, logger core.Logger) int {
	ctx := context.Background()

	repo, closeStorage, err := storage.Open(ctx, conf, logger)
	if err != nil {
		logger.Error(fmt.Sprintf("setting up storage: %v", err), err)
		return 1
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logger.Error(fmt.Sprintf("closing storage: %v", err), err)
		}
	}()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)

	svc := course.NewService(repo, validate, logger)
	if err := svc.Load(ctx); err != nil {
		logger.Error(fmt.Sprintf("loading courses: %v", err), err)
		return 1
	}

	var mailSvc core.EmailService
	if conf.Mail.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, os.Stdout)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// start CLI
	cli := newCommandLine(svc, weathersvc.NewOpenWeatherMap(conf), mailSvc, os.Stdout)
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			cli.println(cli.color.Red("error: " + describe(err, translator)))
		}
		return 1
	}
	return 0
}
