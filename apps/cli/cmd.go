package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/labstack/gommon/color"
	"golang.org/x/term"

	"github.com/attendly/attendly/core"
	"github.com/attendly/attendly/core/advice"
	"github.com/attendly/attendly/core/course"
)

var (
	isTerminalFunc = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) } // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	svc     course.ServiceInterface
	weather core.WeatherService // nil when no API key is configured
	mail    core.EmailService
	out     io.Writer
	now     func() time.Time
	color   *color.Color
}

func newCommandLine(svc course.ServiceInterface, weather core.WeatherService, mail core.EmailService, out io.Writer) *commandLine {
	c := color.New()
	c.SetOutput(out)
	// SetOutput only trusts *os.File outputs
	if isTerminalFunc() {
		c.Enable()
	} else {
		c.Disable()
	}
	return &commandLine{svc: svc, weather: weather, mail: mail, out: out, now: time.Now, color: c}
}

func (cli *commandLine) printUsage() {
	cli.println("Usage: attendly <command> [flags]")
	cli.println("  course -name NAME [-days Mon,Wed] [-lecturer L] [-max N] [-absences N] [-mandatory] - add or replace a course")
	cli.println("  grade -course NAME -value V [-note N] [-date YYYY-MM-DD] [-index I | -id ID] - add a grade, or replace one")
	cli.println("  rmgrade -course NAME (-index I | -id ID) - remove a grade")
	cli.println("  list [-ids] - list all courses")
	cli.println("  today [-day D] - list the courses of the day")
	cli.println("  advise -mood 1..10 [-day D] [-weather-code C] [-mail ADDRESS] - should I go to class?")
	cli.println("  weather [-city C] - current weather")
	cli.println("  profile [-name N] [-city C] [-pic P] [-style S] - show or edit the profile")
	cli.println("  export -o FILE.xlsx|FILE.ics - export courses and grades, or the weekly timetable")
}

func (cli *commandLine) println(a ...interface{}) {
	_, _ = fmt.Fprintln(cli.out, a...)
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, a...)
}

// style colours text by tone.
func (cli *commandLine) style(tone advice.Tone, text string) string {
	switch tone {
	case advice.ToneGood:
		return cli.color.Green(text)
	case advice.ToneWarn:
		return cli.color.Yellow(text)
	case advice.ToneBad:
		return cli.color.Red(text)
	}
	return text
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

// parse returns errHelp for -h and usage errors, the flag package already printed why.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errHelp
	}
	return nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// describe renders err for the terminal, listing invalid fields one per line.
func describe(err error, translator ut.Translator) string {
	flds := core.FieldErrors(err, translator)
	if len(flds) == 0 {
		return err.Error()
	}
	names := make([]string, 0, len(flds))
	for name := range flds {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+": "+flds[name])
	}
	return strings.Join(lines, "\n")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "course":
		return cli.upsertCourse(args[2:])
	case "grade":
		return cli.grade(args[2:])
	case "rmgrade":
		return cli.removeGrade(args[2:])
	case "list":
		return cli.list(args[2:])
	case "today":
		return cli.today(args[2:])
	case "advise":
		return cli.advise(args[2:])
	case "weather":
		return cli.showWeather(args[2:])
	case "profile":
		return cli.profile(args[2:])
	case "export":
		return cli.export(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
