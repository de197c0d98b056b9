package course

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Weekday is a day of the week, Monday first.
type Weekday uint8

const (
	Mon Weekday = iota
	Tue
	Wed
	Thu
	Fri
	Sat
	Sun
)

var ErrUnknownWeekday = errors.New("unknown weekday")

var (
	Weekdays = []Weekday{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

	weekdayTokens = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

	// every accepted spelling, lower-cased
	weekdayAliases = map[string]Weekday{
		"mon": Mon, "monday": Mon, "pon": Mon, "poniedziałek": Mon,
		"tue": Tue, "tuesday": Tue, "wt": Tue, "wtorek": Tue,
		"wed": Wed, "wednesday": Wed, "śr": Wed, "sr": Wed, "środa": Wed,
		"thu": Thu, "thursday": Thu, "czw": Thu, "czwartek": Thu,
		"fri": Fri, "friday": Fri, "pt": Fri, "piątek": Fri,
		"sat": Sat, "saturday": Sat, "sob": Sat, "sobota": Sat,
		"sun": Sun, "sunday": Sun, "niedz": Sun, "niedziela": Sun,
	}
)

// ParseWeekday accepts english short or full names and the legacy polish tokens, case-insensitively.
func ParseWeekday(s string) (Weekday, error) {
	if d, ok := weekdayAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return 0, errors.Wrapf(ErrUnknownWeekday, "%q", s)
}

// WeekdayOf returns the Weekday of t.
func WeekdayOf(t time.Time) Weekday {
	// time.Weekday is Sunday first
	return Weekday((int(t.Weekday()) + 6) % 7)
}

func (d Weekday) Valid() bool { return d <= Sun }

func (d Weekday) String() string {
	if !d.Valid() {
		return "Weekday(" + strconv.Itoa(int(d)) + ")"
	}
	return weekdayTokens[d]
}

func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, ErrUnknownWeekday
	}
	return []byte(d.String()), nil
}

func (d *Weekday) UnmarshalText(b []byte) error {
	wd, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*d = wd
	return nil
}

// Days is a set of weekdays.
type Days uint8

func NewDays(days ...Weekday) Days {
	var s Days
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

// ParseDays reads the comma-separated form used by early data files ("pon, śr")
// as well as single tokens. Blank items are ignored.
func ParseDays(s string) (Days, error) {
	var days Days
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item == "" {
			continue
		}
		d, err := ParseWeekday(item)
		if err != nil {
			return 0, err
		}
		days = days.With(d)
	}
	return days, nil
}

func (s Days) With(d Weekday) Days {
	if !d.Valid() {
		return s
	}
	return s | 1<<d
}

func (s Days) Has(d Weekday) bool {
	return d.Valid() && s&(1<<d) != 0
}

func (s Days) IsEmpty() bool { return s == 0 }

// List returns the days in week order.
func (s Days) List() []Weekday {
	days := make([]Weekday, 0, 7)
	for _, d := range Weekdays {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

func (s Days) Strings() []string {
	list := s.List()
	tokens := make([]string, 0, len(list))
	for _, d := range list {
		tokens = append(tokens, d.String())
	}
	return tokens
}

func (s Days) String() string {
	return strings.Join(s.Strings(), ", ")
}

func (s Days) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON accepts either an array of tokens or a comma-separated string.
func (s *Days) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	days, err := DaysFrom(raw)
	if err != nil {
		return err
	}
	*s = days
	return nil
}

// DaysFrom converts a decoded JSON value (nil, string or []interface{} of strings) to Days.
func DaysFrom(raw interface{}) (Days, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case string:
		return ParseDays(v)
	case []string:
		return ParseDays(strings.Join(v, ","))
	case []interface{}:
		var days Days
		for _, item := range v {
			token, ok := item.(string)
			if !ok {
				return 0, errors.Errorf("invalid day %v", item)
			}
			d, err := ParseDays(token)
			if err != nil {
				return 0, err
			}
			days |= d
		}
		return days, nil
	}
	return 0, errors.Errorf("invalid days %v", raw)
}
