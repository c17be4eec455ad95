package championat

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const calendarPage = `
<ul>
  <li><span>Сезон</span><div>2025/2026</div></li>
  <li><span>Участники</span><div>20 команд</div></li>
</ul>
<table>
  <tr class="stat-results__row">
    <td class="stat-results__tour-num _hidden-td">Тур: 1</td>
    <td class="stat-results__date-time">15.08.2025 22:00</td>
  </tr>
  <tr class="stat-results__row">
    <td class="stat-results__tour-num _hidden-td">Тур: 1</td>
    <td class="stat-results__date-time">16.08.2025 17:00</td>
  </tr>
  <tr class="stat-results__row">
    <td class="stat-results__tour-num _hidden-td">Тур: 2</td>
    <td class="stat-results__date-time">22.08.2025 19:30</td>
  </tr>
  <tr class="stat-results__row">
    <td class="stat-results__tour-num _hidden-td"></td>
    <td class="stat-results__date-time">not scheduled yet</td>
  </tr>
</table>`

func TestParseSchedule(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(calendarPage))
	require.NoError(t, err)

	schedule := parseSchedule(doc)
	assert.Equal(t, 20, schedule.Participants)
	require.Len(t, schedule.Rounds, 3, "rows without a tour number or date are dropped")

	assert.Equal(t, 1, schedule.Rounds[0].Matchweek)
	assert.Equal(t, time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC), schedule.Rounds[0].Date)
	assert.Equal(t, 1, schedule.Rounds[1].Matchweek)
	assert.Equal(t, 2, schedule.Rounds[2].Matchweek)
	assert.Equal(t, time.Date(2025, time.August, 22, 0, 0, 0, 0, time.UTC), schedule.Rounds[2].Date)
}

func TestParseSchedule_NoMetadata(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div>empty</div>`))
	require.NoError(t, err)

	schedule := parseSchedule(doc)
	assert.Zero(t, schedule.Participants)
	assert.Empty(t, schedule.Rounds)
}

func TestParseCalendarDate(t *testing.T) {
	t.Parallel()

	date, ok := parseCalendarDate(" 11.08.2025 22:00 ")
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, time.August, 11, 0, 0, 0, 0, time.UTC), date)

	_, ok = parseCalendarDate("TBD")
	assert.False(t, ok)
}

func TestFirstNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{raw: "Тур: 21", want: 21, ok: true},
		{raw: "20 команд", want: 20, ok: true},
		{raw: "7", want: 7, ok: true},
		{raw: "нет данных", ok: false},
		{raw: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := firstNumber(tc.raw)
		assert.Equal(t, tc.ok, ok, "input %q", tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.raw)
		}
	}
}
