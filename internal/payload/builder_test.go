package payload

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-opsync/internal/domain"
)

func taggedEntry(id int64, start time.Time, durationSeconds int64, workPackageID, description string) domain.TaggedEntry {
	stop := start.Add(time.Duration(durationSeconds) * time.Second)
	return domain.TaggedEntry{
		Entry: domain.TimeEntry{
			ID:              id,
			DurationSeconds: durationSeconds,
			Start:           start,
			Stop:            &stop,
		},
		WorkPackageID: workPackageID,
		Description:   description,
	}
}

func TestBuilder_Build(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	builder := NewBuilder("1", false)

	request := builder.Build(taggedEntry(999, start, 1800, "5", "Did work"))

	assert.Equal(t, "PT1800S", request.Hours)
	assert.Equal(t, "2024-01-01", request.SpentOn)
	assert.Equal(t, "999 - Did work", request.Comment.Raw)
	assert.Equal(t, "/api/v3/work_packages/5", request.Links.WorkPackage.Href)
	assert.Equal(t, "/api/v3/time_entries/activities/1", request.Links.Activity.Href)
	assert.Equal(t, start, request.StartTime)
	assert.Equal(t, start, request.StopTime, "stopTime mirrors startTime in the default mode")
}

func TestBuilder_Build_StopAtEnd(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	builder := NewBuilder("1", true)

	request := builder.Build(taggedEntry(999, start, 1800, "5", "Did work"))

	assert.Equal(t, start, request.StartTime)
	assert.Equal(t, start.Add(30*time.Minute), request.StopTime)
}

func TestBuilder_Build_ConvertsStartToUTC(t *testing.T) {
	berlin := time.FixedZone("CET", 3600)
	start := time.Date(2024, 1, 1, 0, 30, 0, 0, berlin)
	builder := NewBuilder("2", false)

	request := builder.Build(taggedEntry(42, start, 600, "7", "late night"))

	// 00:30 +01:00 is 23:30 UTC the previous day; spentOn follows UTC.
	assert.Equal(t, "2023-12-31", request.SpentOn)
	assert.Equal(t, time.UTC, request.StartTime.Location())
}

func TestBuilder_Build_EmptyResidual(t *testing.T) {
	start := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	builder := NewBuilder("1", false)

	request := builder.Build(taggedEntry(123, start, 120, "9", ""))

	assert.Equal(t, "123 - ", request.Comment.Raw)
}

func TestTimeEntryRequest_JSONShape(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	builder := NewBuilder("1", false)

	data, err := json.Marshal(builder.Build(taggedEntry(999, start, 1800, "5", "Did work")))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	links, ok := decoded["_links"].(map[string]interface{})
	require.True(t, ok, "payload must carry a _links object")
	workPackage := links["workPackage"].(map[string]interface{})
	assert.Equal(t, "/api/v3/work_packages/5", workPackage["href"])
	activity := links["activity"].(map[string]interface{})
	assert.Equal(t, "/api/v3/time_entries/activities/1", activity["href"])

	assert.Equal(t, "PT1800S", decoded["hours"])
	assert.Equal(t, "2024-01-01", decoded["spentOn"])
	assert.Equal(t, "2024-01-01T10:00:00Z", decoded["startTime"])
	assert.Equal(t, "2024-01-01T10:00:00Z", decoded["stopTime"])

	comment := decoded["comment"].(map[string]interface{})
	assert.Equal(t, "999 - Did work", comment["raw"])
}
