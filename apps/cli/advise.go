package main

import (
	"context"
	"flag"
	"io"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/attendly/attendly/core"
	"github.com/attendly/attendly/core/advice"
	"github.com/attendly/attendly/core/course"
	exportsvc "github.com/attendly/attendly/services/export"
)

const reportSubject = "Should I go to class today?"

func (cli *commandLine) advise(args []string) error {
	cmd := cli.newFlagSet("advise")
	mood := cmd.Int("mood", 0, "How you feel, from 1 (very bad) to 10 (great).")
	dayFlag := cmd.String("day", "", "The day (default: today).")
	codeFlag := cmd.String("weather-code", "", "OpenWeatherMap condition code. Looked up for the profile city if omitted.")
	mailTo := cmd.String("mail", "", "Also mail the report to this address.")
	if err := parse(cmd, args); err != nil {
		return err
	}
	if *mood == 0 {
		cmd.Usage()
		return errHelp
	}

	if len(cli.svc.List()) == 0 {
		cli.println(cli.color.Yellow("Add your courses first: attendly course -name NAME -days Mon,Wed"))
		return nil
	}

	day, err := cli.day(*dayFlag)
	if err != nil {
		return err
	}
	in := advice.Input{Today: day, Mood: *mood}
	if *codeFlag != "" {
		code, err := strconv.Atoi(*codeFlag)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: "weather-code", Error: "must be an integer"})
		}
		in.WeatherCode = &code
	} else if city := cli.svc.Profile().City; cli.weather != nil && city != "" {
		w, err := cli.weather.Current(context.Background(), city)
		if err != nil {
			// advice is still given without the weather
			cli.println(cli.color.Yellow("Could not get the weather: " + err.Error()))
		} else {
			cli.printWeather(w)
			in.WeatherCode = &w.Code
		}
	}

	rep, err := advice.Analyze(cli.svc.List(), in)
	if err != nil {
		return err
	}
	for _, o := range rep.Skipped {
		cli.println(cli.color.Yellow("Skipped " + o.Course + ": " + o.Reason))
	}
	cli.printf("%s", rep.Format(cli.style))

	if *mailTo == "" {
		return nil
	}
	to, err := mail.ParseAddress(*mailTo)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "mail", Error: "invalid email address"})
	}
	err = cli.mail.SendMessages(&core.EmailMessage{
		To:          []mail.Address{*to},
		Subject:     reportSubject,
		TextContent: rep.String(),
	})
	if err != nil {
		return errors.Wrap(err, "mailing report")
	}
	cli.printf("Report sent to %s\n", to.Address)
	return nil
}

func (cli *commandLine) printWeather(w core.WeatherConditions) {
	cli.printf("Weather in %s: %s, %.1f°C\n", w.City, w.Description, w.Temp)
}

func (cli *commandLine) showWeather(args []string) error {
	cmd := cli.newFlagSet("weather")
	city := cmd.String("city", "", "The city (default: the profile city).")
	if err := parse(cmd, args); err != nil {
		return err
	}
	if cli.weather == nil {
		return core.ErrNoWeather
	}
	if *city == "" {
		*city = cli.svc.Profile().City
	}

	w, err := cli.weather.Current(context.Background(), *city)
	if err != nil {
		return err
	}
	cli.printWeather(w)
	if icon := w.IconURL(); icon != "" {
		cli.printf("Icon: %s\n", icon)
	}
	return nil
}

func (cli *commandLine) profile(args []string) error {
	cmd := cli.newFlagSet("profile")
	name := cmd.String("name", "", "Your name.")
	city := cmd.String("city", "", "Your city, used for the weather.")
	pic := cmd.String("pic", "", "Path to your profile picture.")
	style := cmd.String("style", "", "The display style.")
	if err := parse(cmd, args); err != nil {
		return err
	}

	var up course.UpdateProfile
	var changed bool
	cmd.Visit(func(f *flag.Flag) {
		changed = true
		switch f.Name {
		case "name":
			up.Name = name
		case "city":
			up.City = city
		case "pic":
			up.ProfilePic = pic
		case "style":
			up.Style = style
		}
	})
	if changed {
		if _, err := cli.svc.UpdateProfile(context.Background(), up); err != nil {
			return err
		}
	}

	state := cli.svc.Snapshot()
	cli.printf("Name: %s\nCity: %s\nPicture: %s\nStyle: %s\n", state.Profile.Name, state.Profile.City, state.Profile.ProfilePic, state.Style)
	return nil
}

func (cli *commandLine) export(args []string) error {
	cmd := cli.newFlagSet("export")
	out := cmd.String("o", "courses.xlsx", "The file to write, a .ics file exports the timetable.")
	if err := parse(cmd, args); err != nil {
		return err
	}

	write := func(w io.Writer, courses []course.Course) error { return exportsvc.WriteXLSX(w, courses) }
	if strings.EqualFold(filepath.Ext(*out), ".ics") {
		write = func(w io.Writer, courses []course.Course) error { return exportsvc.WriteICS(w, courses, cli.now()) }
	}

	f, err := os.Create(*out)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	if err := write(f, cli.svc.List()); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "closing export file")
	}
	cli.printf("Exported %d courses to %s\n", len(cli.svc.List()), *out)
	return nil
}
