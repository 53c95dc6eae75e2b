package payload

import (
	"fmt"
	"strconv"
	"time"

	"toggl-opsync/internal/domain"
)

// CommentSeparator joins the originating Toggl id and the residual description
// inside the OpenProject comment field. The comment doubles as the dedup
// ledger: the text left of the first separator is read back as the Toggl id on
// later runs, so this literal must stay stable across versions.
const CommentSeparator = " - "

// TimeEntryRequest is the OpenProject time_entries POST body.
type TimeEntryRequest struct {
	Links     Links     `json:"_links"`
	Hours     string    `json:"hours"`
	StartTime time.Time `json:"startTime"`
	StopTime  time.Time `json:"stopTime"`
	Comment   Comment   `json:"comment"`
	SpentOn   string    `json:"spentOn"`
}

// Links holds the HAL references of a time entry request.
type Links struct {
	WorkPackage Link `json:"workPackage"`
	Activity    Link `json:"activity"`
}

// Link is a single HAL reference.
type Link struct {
	Href string `json:"href"`
}

// Comment is the free-text comment of a time entry.
type Comment struct {
	Raw string `json:"raw"`
}

// Builder shapes OpenProject submission payloads from tagged entries.
// Construction is pure and cannot fail once the upstream invariants hold.
type Builder struct {
	activityID string
	stopAtEnd  bool
}

// NewBuilder creates a builder that links entries to the given activity.
// When stopAtEnd is false (the historical behavior) stopTime mirrors
// startTime and OpenProject derives the booked amount from hours alone;
// when true, stopTime is start plus the tracked duration.
func NewBuilder(activityID string, stopAtEnd bool) *Builder {
	return &Builder{
		activityID: activityID,
		stopAtEnd:  stopAtEnd,
	}
}

// Build converts a tagged entry into the sink's submission payload.
func (b *Builder) Build(entry domain.TaggedEntry) TimeEntryRequest {
	start := entry.Entry.Start.UTC()
	stop := start
	if b.stopAtEnd {
		stop = start.Add(time.Duration(entry.Entry.DurationSeconds) * time.Second)
	}

	comment := strconv.FormatInt(entry.Entry.ID, 10) + CommentSeparator + entry.Description

	return TimeEntryRequest{
		Links: Links{
			WorkPackage: Link{Href: "/api/v3/work_packages/" + entry.WorkPackageID},
			Activity:    Link{Href: "/api/v3/time_entries/activities/" + b.activityID},
		},
		Hours:     fmt.Sprintf("PT%dS", entry.Entry.DurationSeconds),
		StartTime: start,
		StopTime:  stop,
		Comment:   Comment{Raw: comment},
		SpentOn:   start.Format("2006-01-02"),
	}
}
