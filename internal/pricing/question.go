package pricing

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// thresholdOp is the comparison a weather question asks about.
type thresholdOp int

const (
	opAbove thresholdOp = iota
	opBelow
	opRange
	opExact
)

// weatherQuestion is the parsed form of a weather market question:
// a place, a target date, and a temperature threshold.
type weatherQuestion struct {
	Place string
	Date  time.Time
	Op    thresholdOp
	Low   float64 // threshold; lower bound for opRange
	High  float64 // upper bound for opRange only
}

// BandWidth returns the width of the threshold band in degrees. Only
// range and exact questions have a finite band.
func (q *weatherQuestion) BandWidth() (float64, bool) {
	switch q.Op {
	case opRange:
		return q.High - q.Low, true
	case opExact:
		return 1.0, true
	default:
		return 0, false
	}
}

var (
	placeRe = regexp.MustCompile(`(?i)\bin ([A-Z][A-Za-z .'-]*?)(?: on | be |\?|,)`)
	dateRe  = regexp.MustCompile(`(?i)\bon (January|February|March|April|May|June|July|August|September|October|November|December)\.? (\d{1,2})\b`)

	rangeRe = regexp.MustCompile(`(?i)\bbetween (-?\d+(?:\.\d+)?)°? and (-?\d+(?:\.\d+)?)°?`)
	aboveRe = regexp.MustCompile(`(?i)\b(?:above|higher than|exceed|at least|reach) (-?\d+(?:\.\d+)?)°?`)
	belowRe = regexp.MustCompile(`(?i)\b(?:below|lower than|under|at most) (-?\d+(?:\.\d+)?)°?`)
	exactRe = regexp.MustCompile(`(?i)\b(?:exactly|be) (-?\d+(?:\.\d+)?)°`)

	months = map[string]time.Month{
		"january": time.January, "february": time.February, "march": time.March,
		"april": time.April, "may": time.May, "june": time.June,
		"july": time.July, "august": time.August, "september": time.September,
		"october": time.October, "november": time.November, "december": time.December,
	}
)

// parseWeatherQuestion extracts place, date, and threshold from a
// weather question. The year is taken from the market expiry, which
// always falls on or just after the target date. Returns false when any
// of the three pieces cannot be recognized.
func parseWeatherQuestion(question string, expiry time.Time) (weatherQuestion, bool) {
	var q weatherQuestion

	placeMatch := placeRe.FindStringSubmatch(question)
	if placeMatch == nil {
		return q, false
	}
	q.Place = strings.TrimSpace(placeMatch[1])

	dateMatch := dateRe.FindStringSubmatch(question)
	if dateMatch == nil {
		return q, false
	}
	month := months[strings.ToLower(dateMatch[1])]
	day, err := strconv.Atoi(dateMatch[2])
	if err != nil || day < 1 || day > 31 {
		return q, false
	}

	q.Date = time.Date(expiry.Year(), month, day, 0, 0, 0, 0, time.UTC)
	if q.Date.After(expiry.AddDate(0, 0, 2)) {
		// Month/day lands after expiry: the question refers to the
		// previous year (a market expiring early January about Dec 31).
		q.Date = q.Date.AddDate(-1, 0, 0)
	}

	switch {
	case rangeRe.MatchString(question):
		m := rangeRe.FindStringSubmatch(question)
		q.Op = opRange
		q.Low, _ = strconv.ParseFloat(m[1], 64)
		q.High, _ = strconv.ParseFloat(m[2], 64)
		if q.High <= q.Low {
			return q, false
		}
	case aboveRe.MatchString(question):
		m := aboveRe.FindStringSubmatch(question)
		q.Op = opAbove
		q.Low, _ = strconv.ParseFloat(m[1], 64)
	case belowRe.MatchString(question):
		m := belowRe.FindStringSubmatch(question)
		q.Op = opBelow
		q.Low, _ = strconv.ParseFloat(m[1], 64)
	case exactRe.MatchString(question):
		m := exactRe.FindStringSubmatch(question)
		q.Op = opExact
		q.Low, _ = strconv.ParseFloat(m[1], 64)
	default:
		return q, false
	}

	return q, true
}
