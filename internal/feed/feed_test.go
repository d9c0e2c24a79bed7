package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/qubitlabs/mediakeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func day(offset int) string {
	return anchor.AddDate(0, 0, offset).Format("2006-01-02")
}

func TestBuildRecentUpdates_SortedMostRecentFirst(t *testing.T) {
	t.Parallel()

	videos := []models.Video{{ID: "v1", Title: "Old Video", UploadedAt: day(-20)}}
	documents := []models.Document{{ID: "d1", Title: "Fresh Doc", UploadedAt: day(-1)}}
	patents := []models.Patent{{ID: "p1", Title: "Middling Patent", PublicationDate: day(-10)}}

	got := BuildRecentUpdates(videos, documents, patents, 5, anchor)

	require.Len(t, got, 3)
	assert.Equal(t, "Fresh Doc", got[0].Title)
	assert.Equal(t, "Middling Patent", got[1].Title)
	assert.Equal(t, "Old Video", got[2].Title)

	// Ordering comes from the raw timestamps, which must be populated.
	assert.Greater(t, got[0].SortKey, got[1].SortKey)
	assert.Greater(t, got[1].SortKey, got[2].SortKey)
}

func TestBuildRecentUpdates_TruncatesToLimit(t *testing.T) {
	t.Parallel()

	var videos []models.Video
	for i := 0; i < 10; i++ {
		videos = append(videos, models.Video{ID: string(rune('a' + i)), UploadedAt: day(-i)})
	}

	got := BuildRecentUpdates(videos, nil, nil, 3, anchor)
	assert.Len(t, got, 3)

	// limit <= 0 falls back to the default.
	got = BuildRecentUpdates(videos, nil, nil, 0, anchor)
	assert.Len(t, got, DefaultLimit)
}

func TestBuildRecentUpdates_SyntheticIDsAndTypes(t *testing.T) {
	t.Parallel()

	got := BuildRecentUpdates(
		[]models.Video{{ID: "1", UploadedAt: day(-1)}},
		[]models.Document{{ID: "1", UploadedAt: day(-2)}},
		[]models.Patent{{ID: "1", FilingDate: day(-3)}},
		5, anchor,
	)

	require.Len(t, got, 3)
	assert.Equal(t, "video-1", got[0].ID)
	assert.Equal(t, models.TypeVideo, got[0].Type)
	assert.Equal(t, "document-1", got[1].ID)
	assert.Equal(t, "patent-1", got[2].ID)
}

func TestBuildRecentUpdates_DescriptionTruncated(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 150)
	got := BuildRecentUpdates([]models.Video{{ID: "1", Description: long, UploadedAt: day(0)}}, nil, nil, 3, anchor)

	require.Len(t, got, 1)
	assert.Len(t, got[0].Description, 103)
	assert.True(t, strings.HasSuffix(got[0].Description, "..."))
}

func TestBuildRecentUpdates_PatentPrefersPublicationDate(t *testing.T) {
	t.Parallel()

	patents := []models.Patent{
		{ID: "pub", FilingDate: day(-300), PublicationDate: day(-1)},
		{ID: "filed", FilingDate: day(-2)},
	}
	got := BuildRecentUpdates(nil, nil, patents, 5, anchor)

	require.Len(t, got, 2)
	assert.Equal(t, "patent-pub", got[0].ID)
	assert.Equal(t, "patent-filed", got[1].ID)
}

func TestBuildRecentUpdates_UnparseableDateKeepsRawLabel(t *testing.T) {
	t.Parallel()

	got := BuildRecentUpdates([]models.Video{{ID: "1", UploadedAt: "sometime soon"}}, nil, nil, 3, anchor)

	require.Len(t, got, 1)
	assert.Equal(t, "sometime soon", got[0].Date)
	assert.Zero(t, got[0].SortKey)
}

func TestRelativeLabel_Thresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"seconds", 30 * time.Second, "just now"},
		{"one minute", 1 * time.Minute, "1 minute ago"},
		{"minutes", 5 * time.Minute, "5 minutes ago"},
		{"hours", 2 * time.Hour, "2 hours ago"},
		{"one day", 24 * time.Hour, "1 day ago"},
		{"days", 3 * 24 * time.Hour, "3 days ago"},
		{"weeks", 10 * 24 * time.Hour, "1 week ago"},
		{"two weeks", 15 * 24 * time.Hour, "2 weeks ago"},
		{"months", 65 * 24 * time.Hour, "2 months ago"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RelativeLabel(anchor.Add(-tc.ago), anchor))
		})
	}
}

func TestRelativeLabel_OrderingAgreesWithTimestamps(t *testing.T) {
	t.Parallel()

	// "5 minutes ago" is newer than "2 hours ago"; the sort keys must say
	// the same without consulting the labels.
	newer := anchor.Add(-5 * time.Minute)
	older := anchor.Add(-2 * time.Hour)
	assert.Greater(t, newer.UnixMilli(), older.UnixMilli())
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "", Truncate("", 5))
}
