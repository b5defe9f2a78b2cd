package parser

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Epoch selects the date system a workbook counts serial days from.
type Epoch int

const (
	// Epoch1900 is the default Windows date system. Serial 1 is 1900-01-01
	// and serial 60 is the non-existent 1900-02-29.
	Epoch1900 Epoch = 1900
	// Epoch1904 is the legacy Mac date system. Serial 0 is 1904-01-01.
	Epoch1904 Epoch = 1904
)

// ErrInvalidEpoch is returned for an Epoch other than Epoch1900 or Epoch1904.
var ErrInvalidEpoch = errors.New("invalid date epoch")

var (
	base1900 = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	base1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
)

const msPerDay = 24 * 60 * 60 * 1000

// EpochFromFlag maps the workbookPr date1904 attribute to an Epoch. An empty
// value means the attribute is absent.
func EpochFromFlag(date1904 string) Epoch {
	switch date1904 {
	case "1", "true", "on":
		return Epoch1904
	}
	return Epoch1900
}

// SerialToTime converts a serial day count to a UTC time. The fractional part
// is the time of day, rounded to the millisecond.
func SerialToTime(serial float64, epoch Epoch) (time.Time, error) {
	var base time.Time
	switch epoch {
	case Epoch1900:
		// Values before 60 are shifted past the phantom leap day, and
		// time-only values anchor on day 1.
		if serial < 1 {
			serial++
		}
		if serial < 60 {
			serial++
		}
		base = base1900
	case Epoch1904:
		base = base1904
	default:
		return time.Time{}, fmt.Errorf("%w: %d", ErrInvalidEpoch, int(epoch))
	}

	days := math.Floor(serial)
	ms := math.Round((serial - days) * msPerDay)
	return base.AddDate(0, 0, int(days)).Add(time.Duration(ms) * time.Millisecond), nil
}
