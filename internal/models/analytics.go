package models

import (
	"math"
	"sort"
	"time"
)

// SummaryTopLimit размер топ-листов в сводке по ссылке.
const SummaryTopLimit = 10

// CategoryCount метка категории со счетчиком.
type CategoryCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// DailySummary строка дневной серии в сводке.
type DailySummary struct {
	Date              time.Time `json:"date"`
	Clicks            int64     `json:"clicks"`
	UniqueVisitors    int64     `json:"uniqueVisitors"`
	AverageTimeOnPage float64   `json:"averageTimeOnPage"`
	BounceRate        float64   `json:"bounceRate"`
}

// LinkSummary агрегированная сводка по одной ссылке.
type LinkSummary struct {
	TotalClicks  int64 `json:"totalClicks"`
	UniqueClicks int64 `json:"uniqueClicks"`
	RecentClicks int64 `json:"recentClicks"`

	Days []DailySummary `json:"days"`

	TopCountries []CategoryCount `json:"topCountries"`
	TopDevices   []CategoryCount `json:"topDevices"`
	TopBrowsers  []CategoryCount `json:"topBrowsers"`
	TopReferrers []CategoryCount `json:"topReferrers"`

	AverageTimeOnPage   float64 `json:"averageTimeOnPage"`
	AverageClicksPerDay float64 `json:"averageClicksPerDay"`
	ConversionRate      float64 `json:"conversionRate"`
}

// RecordClick записывает событие перехода в агрегат: инкрементит счетчики,
// ведет реестр уникальных посетителей, обновляет дневной агрегат и лог
// сырых событий. Идентичность посетителя — IP адрес (приближение, без
// cookie/fingerprint). Вызывающая сторона обязана сериализовать
// конкурентные мутации одной ссылки и персистить агрегат после вызова.
func (l *Link) RecordClick(ev ClickEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	l.Clicks++

	newVisitor := l.trackVisitor(ev)
	l.applyToDay(ev, newVisitor)

	l.AnalyticsLog = append(l.AnalyticsLog, ev)
	if over := len(l.AnalyticsLog) - AnalyticsLogLimit; over > 0 {
		l.AnalyticsLog = l.AnalyticsLog[over:]
	}
}

// trackVisitor обновляет реестр посетителей. Возвращает true если IP
// встречен впервые (клик увеличил uniqueClicks).
func (l *Link) trackVisitor(ev ClickEvent) bool {
	if l.UniqueVisitors == nil {
		l.UniqueVisitors = make(map[string]*VisitorEntry)
	}

	if entry, ok := l.UniqueVisitors[ev.IPAddress]; ok {
		entry.LastVisit = ev.Timestamp
		entry.TotalVisits++
		return false
	}

	l.UniqueClicks++
	l.UniqueVisitors[ev.IPAddress] = &VisitorEntry{
		FirstVisit:  ev.Timestamp,
		LastVisit:   ev.Timestamp,
		TotalVisits: 1,
	}
	l.evictVisitors()
	return true
}

// evictVisitors держит реестр в пределах VisitorLedgerLimit, вытесняя
// запись с самым старым первым визитом. Вернувшийся после вытеснения
// посетитель посчитается уникальным повторно — осознанная плата за
// явную границу по памяти.
func (l *Link) evictVisitors() {
	for len(l.UniqueVisitors) > VisitorLedgerLimit {
		var oldestIP string
		var oldest time.Time
		for ip, entry := range l.UniqueVisitors {
			if oldestIP == "" || entry.FirstVisit.Before(oldest) {
				oldestIP = ip
				oldest = entry.FirstVisit
			}
		}
		delete(l.UniqueVisitors, oldestIP)
	}
}

// applyToDay находит или создает агрегат текущего календарного дня и
// вливает в него событие.
func (l *Link) applyToDay(ev ClickEvent, newVisitor bool) {
	day := l.dayStat(ev.Timestamp)

	day.Clicks++
	if newVisitor {
		day.UniqueVisitors++
	}

	day.CountryCounts.Inc(ev.Country)
	day.DeviceCounts.Inc(ev.Device)
	day.BrowserCounts.Inc(ev.Browser)
	day.ReferrerCounts.Inc(ev.Referrer)

	if ev.TimeOnPage != nil {
		day.TimeOnPageTotal += *ev.TimeOnPage
		day.TimeOnPageSamples++
	}
	// Отскоком считаем клик без замера времени на странице.
	day.BounceRate = round2(float64(day.Clicks-day.TimeOnPageSamples) / float64(day.Clicks))
}

// dayStat возвращает агрегат календарного дня момента t, создавая его при
// необходимости. При превышении DailyStatsLimit самый старый день
// вытесняется.
func (l *Link) dayStat(t time.Time) *DailyStat {
	for i := range l.DailyStats {
		if SameDay(l.DailyStats[i].Date, t) {
			return &l.DailyStats[i]
		}
	}

	l.DailyStats = append(l.DailyStats, DailyStat{
		Date:           DayOf(t),
		CountryCounts:  make(CategoryCounts),
		DeviceCounts:   make(CategoryCounts),
		BrowserCounts:  make(CategoryCounts),
		ReferrerCounts: make(CategoryCounts),
	})
	if over := len(l.DailyStats) - DailyStatsLimit; over > 0 {
		l.DailyStats = l.DailyStats[over:]
	}
	return &l.DailyStats[len(l.DailyStats)-1]
}

// Summarize строит сводку по ссылке за последние windowDays дней.
// Чистое чтение, агрегат не мутирует.
func (l *Link) Summarize(windowDays int) *LinkSummary {
	return l.summarize(windowDays, time.Now())
}

func (l *Link) summarize(windowDays int, now time.Time) *LinkSummary {
	if windowDays <= 0 {
		windowDays = DailyStatsLimit
	}
	cutoff := DayOf(now).AddDate(0, 0, -windowDays+1)

	summary := &LinkSummary{
		TotalClicks:  l.Clicks,
		UniqueClicks: l.UniqueClicks,
	}

	countries := newTally()
	devices := newTally()
	browsers := newTally()
	referrers := newTally()

	var timeTotal float64
	var timeSamples int64

	for i := range l.DailyStats {
		d := &l.DailyStats[i]
		if d.Date.Before(cutoff) {
			continue
		}
		summary.RecentClicks += d.Clicks
		summary.Days = append(summary.Days, DailySummary{
			Date:              d.Date,
			Clicks:            d.Clicks,
			UniqueVisitors:    d.UniqueVisitors,
			AverageTimeOnPage: d.AverageTimeOnPage(),
			BounceRate:        d.BounceRate,
		})

		countries.merge(d.CountryCounts)
		devices.merge(d.DeviceCounts)
		browsers.merge(d.BrowserCounts)
		referrers.merge(d.ReferrerCounts)

		timeTotal += d.TimeOnPageTotal
		timeSamples += d.TimeOnPageSamples
	}

	summary.TopCountries = countries.top(SummaryTopLimit)
	summary.TopDevices = devices.top(SummaryTopLimit)
	summary.TopBrowsers = browsers.top(SummaryTopLimit)
	summary.TopReferrers = referrers.top(SummaryTopLimit)

	if timeSamples > 0 {
		summary.AverageTimeOnPage = timeTotal / float64(timeSamples)
	}
	summary.AverageClicksPerDay = round2(float64(summary.RecentClicks) / float64(windowDays))
	if l.Clicks > 0 {
		summary.ConversionRate = round2(float64(l.UniqueClicks) / float64(l.Clicks))
	}
	return summary
}

// tally накапливает счетчики категорий, запоминая порядок первого
// появления метки: при равных счетчиках в топе выигрывает метка,
// встреченная раньше.
type tally struct {
	counts CategoryCounts
	order  []string
}

func newTally() *tally {
	return &tally{counts: make(CategoryCounts)}
}

func (t *tally) merge(c CategoryCounts) {
	labels := make([]string, 0, len(c))
	for label := range c {
		labels = append(labels, label)
	}
	// Ключи карты обходим отсортированными ради детерминизма порядка
	// первого появления.
	sort.Strings(labels)
	for _, label := range labels {
		if _, ok := t.counts[label]; !ok {
			t.order = append(t.order, label)
		}
		t.counts[label] += c[label]
	}
}

func (t *tally) top(n int) []CategoryCount {
	result := make([]CategoryCount, 0, len(t.order))
	for _, label := range t.order {
		result = append(result, CategoryCount{Label: label, Count: t.counts[label]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
