package util

import (
	"time"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"
)

const DateLayout = "2006-01-02"

// dateLayouts are tried in order when coercing free-form date strings.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// ParseDate coerces a raw date string to the beginning of its calendar day
// in UTC. The pipeline operates at day granularity throughout.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return BeginningOfDay(t), nil
		}
	}
	return time.Time{}, errors.Errorf("unparseable date value [ %s ]", value)
}

func BeginningOfDay(t time.Time) time.Time {
	return now.New(t.UTC()).BeginningOfDay()
}

// DateOnly renders a timestamp in the canonical day format used by reports
// and the store.
func DateOnly(t time.Time) string {
	return t.Format(DateLayout)
}
