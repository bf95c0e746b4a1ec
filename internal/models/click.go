package models

import "time"

// Coordinates географические координаты.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoInfo грубая геопривязка по IP адресу.
type GeoInfo struct {
	Country     string       `json:"country"`
	City        string       `json:"city"`
	Region      string       `json:"region"`
	Timezone    string       `json:"timezone"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// ClickEvent одно записанное событие перехода. Неизменяемо после записи.
type ClickEvent struct {
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Referrer  string    `json:"referrer,omitempty"`

	Device         string `json:"device,omitempty"`
	Browser        string `json:"browser,omitempty"`
	BrowserVersion string `json:"browserVersion,omitempty"`
	OS             string `json:"os,omitempty"`
	Platform       string `json:"platform,omitempty"`
	Language       string `json:"language,omitempty"`

	Country     string       `json:"country,omitempty"`
	City        string       `json:"city,omitempty"`
	Region      string       `json:"region,omitempty"`
	Timezone    string       `json:"timezone,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`

	TimeOnPage *float64 `json:"timeOnPage,omitempty"` // секунды
	ExitPage   string   `json:"exitPage,omitempty"`
}

// VisitorEntry запись реестра уникальных посетителей.
type VisitorEntry struct {
	FirstVisit  time.Time `json:"firstVisit"`
	LastVisit   time.Time `json:"lastVisit"`
	TotalVisits int64     `json:"totalVisits"`
}

// CategoryCounts счетчики по меткам категории (страна, девайс и т.п.).
type CategoryCounts map[string]int64

// Inc увеличивает счетчик метки. Пустые метки игнорируются.
func (c CategoryCounts) Inc(label string) {
	if label == "" {
		return
	}
	c[label]++
}

// DailyStat дневной агрегат кликов. Ровно одна запись на календарный день.
type DailyStat struct {
	Date           time.Time      `json:"date"` // локальная полночь дня
	Clicks         int64          `json:"clicks"`
	UniqueVisitors int64          `json:"uniqueVisitors"`
	CountryCounts  CategoryCounts `json:"countryCounts"`
	DeviceCounts   CategoryCounts `json:"deviceCounts"`
	BrowserCounts  CategoryCounts `json:"browserCounts"`
	ReferrerCounts CategoryCounts `json:"referrerCounts"`

	TimeOnPageTotal   float64 `json:"timeOnPageTotal"`
	TimeOnPageSamples int64   `json:"timeOnPageSamples"`
	BounceRate        float64 `json:"bounceRate"`
}

// AverageTimeOnPage среднее время на странице за день, 0 при отсутствии замеров.
func (d *DailyStat) AverageTimeOnPage() float64 {
	if d.TimeOnPageSamples == 0 {
		return 0
	}
	return d.TimeOnPageTotal / float64(d.TimeOnPageSamples)
}

// DayOf нормализует момент времени к локальной полуночи календарного дня.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay сравнивает два момента по календарному дню.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}
