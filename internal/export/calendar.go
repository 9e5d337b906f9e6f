package export

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bilgisen/zenstudio/internal/models"
)

const (
	DefaultCalendarName     = "ZenStudio - Content Calendar"
	DefaultCalendarTimezone = "Europe/Berlin"

	uidDomain      = "zenpost.studio"
	eventDuration  = 30 * time.Minute
	alarmTrigger   = "-PT15M"
	maxTitleLength = 100
	maxLineOctets  = 75
	icsTimeLayout  = "20060102T150405"
)

// CalendarOptions configures the calendar envelope.
type CalendarOptions struct {
	Name     string
	Timezone string
	// Now stamps DTSTAMP; zero means time.Now.
	Now time.Time
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// GenerateICS renders every scheduled post that has both a date and a time
// as a 30 minute event with a 15 minute reminder. Event times are floating
// local times; the date is taken from the scheduled date as stored.
func GenerateICS(posts []models.ScheduledPost, opts CalendarOptions) (string, error) {
	if opts.Name == "" {
		opts.Name = DefaultCalendarName
	}
	if opts.Timezone == "" {
		opts.Timezone = DefaultCalendarTimezone
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	stamp := opts.Now.UTC().Format(icsTimeLayout) + "Z"

	var events [][]string
	for _, post := range posts {
		start, ok := eventStart(post)
		if !ok {
			continue
		}
		events = append(events, eventLines(post, start, stamp))
	}
	if len(events) == 0 {
		return "", fmt.Errorf("%w: no scheduled posts with date and time", models.ErrExportPrecondition)
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//ZenStudio//Content Calendar//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-CALNAME:" + escapeText(opts.Name),
		"X-WR-TIMEZONE:" + opts.Timezone,
		"X-WR-CALDESC:Scheduled social media posts",
	}
	for _, event := range events {
		lines = append(lines, event...)
	}
	lines = append(lines, "END:VCALENDAR")

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(foldLine(line))
		b.WriteString("\r\n")
	}
	return b.String(), nil
}

func eventStart(post models.ScheduledPost) (time.Time, bool) {
	if post.Status != models.StatusScheduled || !post.HasSchedule() {
		return time.Time{}, false
	}
	hour, minute, ok := models.ParseClock(post.ScheduledTime)
	if !ok {
		return time.Time{}, false
	}
	d := post.ScheduledDate
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC), true
}

func eventLines(post models.ScheduledPost, start time.Time, stamp string) []string {
	platform := post.Platform.DisplayName()
	title := truncateTitle(post.Title)

	description := fmt.Sprintf("Publish post on %s\n\nTitle: %s\nPlatform: %s\nCharacters: %d\nWords: %d",
		platform, post.Title, platform, post.CharacterCount, post.WordCount)

	return []string{
		"BEGIN:VEVENT",
		"UID:" + post.ID + "@" + uidDomain,
		"DTSTAMP:" + stamp,
		"DTSTART:" + start.Format(icsTimeLayout),
		"DTEND:" + start.Add(eventDuration).Format(icsTimeLayout),
		"SUMMARY:" + escapeText(platform+": "+title),
		"DESCRIPTION:" + escapeText(description),
		"STATUS:CONFIRMED",
		"TRANSP:OPAQUE",
		"CATEGORIES:ZenStudio,Social Media," + escapeText(platform),
		"BEGIN:VALARM",
		"TRIGGER:" + alarmTrigger,
		"ACTION:DISPLAY",
		"DESCRIPTION:" + escapeText("In 15 minutes: "+title),
		"END:VALARM",
		"END:VEVENT",
	}
}

func truncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= maxTitleLength {
		return title
	}
	runes := []rune(title)
	return string(runes[:maxTitleLength-3]) + "..."
}

// foldLine splits lines longer than 75 octets, never inside a UTF-8
// sequence. Continuation lines start with a single space.
func foldLine(line string) string {
	if len(line) <= maxLineOctets {
		return line
	}

	var b strings.Builder
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	return b.String()
}

// ScheduleStats counts posts by status and scheduled posts per platform.
func ScheduleStats(posts []models.ScheduledPost) models.ScheduleStats {
	stats := models.ScheduleStats{
		Total:          len(posts),
		PlatformCounts: make(map[models.Platform]int, len(models.Platforms)),
	}
	for _, p := range models.Platforms {
		stats.PlatformCounts[p] = 0
	}

	for _, post := range posts {
		switch post.Status {
		case models.StatusScheduled:
			stats.Scheduled++
			stats.PlatformCounts[post.Platform]++
		case models.StatusDraft:
			stats.Drafts++
		case models.StatusPublished:
			stats.Published++
		}
	}
	stats.CanExport = stats.Scheduled > 0
	return stats
}
