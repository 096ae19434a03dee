package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Local handlers answer common questions instantly, without a model
// round-trip. Each returns ("", false) when the utterance is not for it.

var mathPattern = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s+(plus|minus|times|divided by)\s+(-?\d+(?:\.\d+)?)`)

func handleMath(text string) (string, bool) {
	m := mathPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	a, err1 := strconv.ParseFloat(m[1], 64)
	b, err2 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil {
		return "", false
	}

	var result float64
	switch m[2] {
	case "plus":
		result = a + b
	case "minus":
		result = a - b
	case "times":
		result = a * b
	case "divided by":
		if b == 0 {
			return "I can't divide by zero.", true
		}
		result = a / b
	}

	return fmt.Sprintf("%s %s %s is %s",
		formatNumber(a), m[2], formatNumber(b), formatNumber(result)), true
}

// conversion holds one supported unit pair in both directions.
type conversion struct {
	pattern *regexp.Regexp
	apply   func(v float64) (float64, string, string)
}

var conversions = []conversion{
	{
		pattern: regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*(?:degrees?\s+)?fahrenheit\s+(?:to|in)\s+(?:degrees?\s+)?celsius`),
		apply: func(v float64) (float64, string, string) {
			return (v - 32) * 5 / 9, "degrees Fahrenheit", "degrees Celsius"
		},
	},
	{
		pattern: regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*(?:degrees?\s+)?celsius\s+(?:to|in)\s+(?:degrees?\s+)?fahrenheit`),
		apply: func(v float64) (float64, string, string) {
			return v*9/5 + 32, "degrees Celsius", "degrees Fahrenheit"
		},
	},
	{
		pattern: regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*(?:feet|foot)\s+(?:to|in)\s+meters?`),
		apply: func(v float64) (float64, string, string) {
			return v * 0.3048, "feet", "meters"
		},
	},
	{
		pattern: regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*meters?\s+(?:to|in)\s+(?:feet|foot)`),
		apply: func(v float64) (float64, string, string) {
			return v / 0.3048, "meters", "feet"
		},
	},
	{
		pattern: regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*miles?\s+(?:to|in)\s+kilometers?`),
		apply: func(v float64) (float64, string, string) {
			return v * 1.60934, "miles", "kilometers"
		},
	},
	{
		pattern: regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*kilometers?\s+(?:to|in)\s+miles?`),
		apply: func(v float64) (float64, string, string) {
			return v / 1.60934, "kilometers", "miles"
		},
	},
	{
		pattern: regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*pounds?\s+(?:to|in)\s+kilograms?`),
		apply: func(v float64) (float64, string, string) {
			return v * 0.453592, "pounds", "kilograms"
		},
	},
	{
		pattern: regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*kilograms?\s+(?:to|in)\s+pounds?`),
		apply: func(v float64) (float64, string, string) {
			return v / 0.453592, "kilograms", "pounds"
		},
	},
}

func handleConversion(text string) (string, bool) {
	for _, c := range conversions {
		m := c.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		result, from, to := c.apply(v)
		return fmt.Sprintf("%s %s is %s %s", formatNumber(v), from, roundedNumber(result), to), true
	}
	return "", false
}

func handleTime(text string, now time.Time) (string, bool) {
	if strings.Contains(text, "what time") || strings.Contains(text, "the time") ||
		strings.Contains(text, "time is it") {
		return "The time is " + now.Format("3:04 PM"), true
	}
	return "", false
}

func handleDate(text string, now time.Time) (string, bool) {
	if strings.Contains(text, "date") || strings.Contains(text, "what day") ||
		strings.Contains(text, "day is it") || strings.Contains(text, "today's day") {
		return "Today is " + now.Format("Monday, January 2, 2006"), true
	}
	return "", false
}

// formatNumber drops trailing zeros so "8.000000" reads as "8" when spoken.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// roundedNumber keeps one decimal for conversion results.
func roundedNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0")
}
