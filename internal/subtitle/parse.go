package subtitle

import (
	"bufio"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yarxhe/videocreate/internal/logging"
)

// section tracks which bracketed block of the file the scanner is inside
type section int

const (
	sectionNone section = iota
	sectionStyles
	sectionEvents
)

// dialogueFieldCount is the fixed layout of a Dialogue line:
// Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
const dialogueFieldCount = 10

var tagPattern = regexp.MustCompile(`\{[^}]*\}`)

// StripTags removes inline formatting tags ({...} runs) from event text
func StripTags(text string) string {
	return tagPattern.ReplaceAllString(text, "")
}

// Parse reads a subtitle file and returns its dialogue events, sorted by
// start time, plus the style table keyed by style name. Parsing fails soft:
// a missing or unreadable file yields empty results and a warning, and any
// malformed line is skipped with a warning while parsing continues.
func Parse(path string) ([]Event, map[string]Style) {
	logger := logging.WithComponent("subtitle")

	events := []Event{}
	styles := map[string]Style{}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn().Str("path", path).Err(err).Msg("subtitle file not readable")
		return events, styles
	}
	defer f.Close()

	current := sectionNone
	var styleFields []string

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			// Any section header resets scanner state, recognized or not
			current = sectionNone
			styleFields = nil

			lower := strings.ToLower(line)
			switch {
			case lower == "[events]":
				current = sectionEvents
			case strings.HasPrefix(lower, "[v4") && strings.Contains(lower, "styles]"):
				current = sectionStyles
			}
			continue
		}

		lower := strings.ToLower(line)
		switch current {
		case sectionStyles:
			if strings.HasPrefix(lower, "format:") {
				styleFields = parseFormatLine(line)
				logger.Debug().Strs("fields", styleFields).Msg("style format loaded")
				continue
			}
			if strings.HasPrefix(lower, "style:") {
				if styleFields == nil {
					logger.Warn().Int("line", lineNum).Msg("style line before format line, skipping")
					continue
				}
				st, ok := parseStyleLine(line, styleFields, len(styles), logger, lineNum)
				if ok {
					styles[st.Name] = st
				}
			}
		case sectionEvents:
			if strings.HasPrefix(lower, "dialogue:") {
				ev, ok := parseDialogueLine(line, logger, lineNum)
				if ok {
					events = append(events, ev)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Warn().Str("path", path).Err(err).Msg("error reading subtitle file")
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start < events[j].Start
	})

	if len(styles) > 0 {
		logger.Info().Int("styles", len(styles)).Int("events", len(events)).Msg("subtitle file loaded")
	} else {
		logger.Info().Int("events", len(events)).Msg("subtitle file loaded, no styles defined")
	}
	return events, styles
}

// parseFormatLine extracts the lowercased field names of a "Format:" line
func parseFormatLine(line string) []string {
	_, rest, _ := strings.Cut(line, ":")
	parts := strings.Split(rest, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		fields = append(fields, strings.ToLower(strings.TrimSpace(p)))
	}
	return fields
}

// parseStyleLine splits a "Style:" line against the declared field names.
// The final column may absorb trailing commas; a short line is padded with
// an empty value when the schema carries an "encoding" column.
func parseStyleLine(line string, fields []string, parsed int, logger zerolog.Logger, lineNum int) (Style, bool) {
	_, rest, _ := strings.Cut(line, ":")
	values := strings.SplitN(strings.TrimSpace(rest), ",", len(fields))
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}

	if len(values) < len(fields) && hasField(fields, "encoding") {
		values = append(values, "")
	}
	if len(values) != len(fields) {
		logger.Warn().
			Int("line", lineNum).
			Int("values", len(values)).
			Int("fields", len(fields)).
			Str("content", line).
			Msg("style line does not match format, skipping")
		return Style{}, false
	}

	raw := make(map[string]string, len(fields))
	for i, name := range fields {
		raw[name] = values[i]
	}

	name := strings.TrimSpace(raw["name"])
	if name == "" {
		name = "S" + strconv.Itoa(parsed)
	}

	st := Style{
		Name:         name,
		FontName:     defaultString(raw["fontname"], "Arial"),
		FontSize:     safeFloat(raw["fontsize"], 40),
		PrimaryColor: defaultString(raw["primarycolour"], "&H00FFFFFF"),
		OutlineColor: defaultString(raw["outlinecolour"], "&H00000000"),
		BackColor:    defaultString(raw["backcolour"], "&H00000000"),
		Bold:         parseBool(raw["bold"]),
		Italic:       parseBool(raw["italic"]),
		Underline:    parseBool(raw["underline"]),
		StrikeOut:    parseBool(raw["strikeout"]),
		BorderStyle:  safeInt(raw["borderstyle"], 1),
		Outline:      safeFloat(raw["outline"], 0),
		Shadow:       safeFloat(raw["shadow"], 0),
		Alignment:    safeInt(raw["alignment"], 2),
	}

	logger.Debug().
		Str("style", st.Name).
		Str("font", st.FontName).
		Float64("size", st.FontSize).
		Msg("style parsed")
	return st, true
}

// parseDialogueLine matches the fixed 10-field Dialogue layout. The text
// field is the remainder of the line including any embedded commas.
func parseDialogueLine(line string, logger zerolog.Logger, lineNum int) (Event, bool) {
	_, rest, _ := strings.Cut(line, ":")
	values := strings.SplitN(strings.TrimSpace(rest), ",", dialogueFieldCount)
	if len(values) != dialogueFieldCount {
		logger.Warn().Int("line", lineNum).Str("content", line).Msg("malformed dialogue line, skipping")
		return Event{}, false
	}

	start := ParseTime(values[1])
	end := ParseTime(values[2])
	if end <= start {
		logger.Debug().Int("line", lineNum).Float64("start", start).Float64("end", end).Msg("discarding event with non-positive duration")
		return Event{}, false
	}

	return Event{
		Start:     start,
		End:       end,
		Duration:  end - start,
		StyleName: strings.TrimSpace(values[3]),
		Text:      values[9],
	}, true
}

// ParseTime converts an H:MM:SS.CS timestamp to seconds. A malformed value
// yields 0.0 and a log entry rather than an error.
func ParseTime(s string) float64 {
	logger := logging.WithComponent("subtitle")

	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		logger.Warn().Str("time", s).Msg("bad timestamp")
		return 0.0
	}
	secParts := strings.Split(parts[2], ".")
	if len(secParts) != 2 {
		logger.Warn().Str("time", s).Msg("bad timestamp")
		return 0.0
	}

	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(secParts[0])
	cs, err4 := strconv.Atoi(secParts[1])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		logger.Warn().Str("time", s).Msg("bad timestamp")
		return 0.0
	}

	return float64(h)*3600 + float64(m)*60 + float64(sec) + float64(cs)/100.0
}

func hasField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

func safeFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func safeInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func parseBool(s string) bool {
	s = strings.TrimSpace(s)
	return s == "-1" || s == "1"
}
