package models

import "time"

// ShortCodeLength длина генерируемого короткого кода.
const ShortCodeLength = 8

// Лимиты хранения аналитики внутри агрегата.
const (
	// AnalyticsLogLimit максимальное количество сырых событий в логе (FIFO).
	AnalyticsLogLimit = 1000
	// DailyStatsLimit максимальное количество дневных агрегатов (FIFO по дням).
	DailyStatsLimit = 30
	// VisitorLedgerLimit максимальный размер реестра уникальных посетителей.
	// При переполнении вытесняется запись с самым старым первым визитом.
	VisitorLedgerLimit = 10000
)

// LinkStatus статус ссылки.
type LinkStatus string

const (
	LinkStatusActive   LinkStatus = "active"
	LinkStatusInactive LinkStatus = "inactive"
	LinkStatusExpired  LinkStatus = "expired"
	LinkStatusBlocked  LinkStatus = "blocked"
)

// RedirectType способ редиректа на оригинальный URL.
type RedirectType string

const (
	// RedirectTypeDirect мгновенный HTTP редирект.
	RedirectTypeDirect RedirectType = "direct"
	// RedirectTypeDelayed HTML страница с meta-refresh через RedirectDelay секунд.
	RedirectTypeDelayed RedirectType = "delayed"
	// RedirectTypeInterstitial промежуточная страница, рендер задается вызывающей стороной.
	RedirectTypeInterstitial RedirectType = "interstitial"
)

// LinkSettings настройки трекинга и редиректа. Выключенные флаги означают,
// что соответствующие поля события просто не заполняются.
type LinkSettings struct {
	TrackReferrer   bool         `json:"trackReferrer"`
	TrackLocation   bool         `json:"trackLocation"`
	TrackDeviceInfo bool         `json:"trackDeviceInfo"`
	RedirectType    RedirectType `json:"redirectType"`
	RedirectDelay   int          `json:"redirectDelay"` // секунды, для delayed
}

// DefaultSettings настройки новой ссылки.
func DefaultSettings() LinkSettings {
	return LinkSettings{
		TrackReferrer:   true,
		TrackLocation:   true,
		TrackDeviceInfo: true,
		RedirectType:    RedirectTypeDirect,
	}
}

// Link агрегат короткой ссылки. Владеет счетчиками кликов, логом сырых
// событий, дневными агрегатами и реестром уникальных посетителей.
// Все мутации агрегата идут либо через RecordClick, либо через
// обновление полей владельцем.
type Link struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"createdAt" gorm:"index:idx_links_owner_created,priority:2"`
	UpdatedAt time.Time `json:"updatedAt"`

	OwnerID     string  `json:"ownerId" gorm:"size:36;index:idx_links_owner_created,priority:1"`
	OriginalURL string  `json:"originalUrl" gorm:"size:2048"`
	ShortCode   string  `json:"shortCode" gorm:"uniqueIndex;size:16"`
	CustomAlias *string `json:"customAlias,omitempty" gorm:"uniqueIndex;size:30"`

	Title       string   `json:"title" gorm:"size:255"`
	Description string   `json:"description" gorm:"size:1024"`
	Tags        []string `json:"tags" gorm:"serializer:json"`

	Status    LinkStatus `json:"status" gorm:"size:16;default:active"`
	IsExpired bool       `json:"isExpired"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`

	Clicks       int64 `json:"clicks"`
	UniqueClicks int64 `json:"uniqueClicks"`

	// UniqueVisitors реестр посетителей по IP.
	UniqueVisitors map[string]*VisitorEntry `json:"uniqueVisitors" gorm:"serializer:json"`
	// AnalyticsLog последние AnalyticsLogLimit событий в хронологическом порядке.
	AnalyticsLog []ClickEvent `json:"analyticsLog" gorm:"serializer:json"`
	// DailyStats последние DailyStatsLimit дневных агрегатов, по возрастанию даты.
	DailyStats []DailyStat `json:"dailyStats" gorm:"serializer:json"`

	Settings LinkSettings `json:"settings" gorm:"serializer:json"`
}

// Code возвращает код по которому ссылка резолвится наружу:
// пользовательский алиас, если он задан, иначе сгенерированный код.
func (l *Link) Code() string {
	if l.CustomAlias != nil && *l.CustomAlias != "" {
		return *l.CustomAlias
	}
	return l.ShortCode
}

// IsRedirectable политика редиректа: ссылка доступна если статус не
// expired/blocked и срок действия (если задан) не истек.
func (l *Link) IsRedirectable(now time.Time) bool {
	if l.Status == LinkStatusExpired || l.Status == LinkStatusBlocked {
		return false
	}
	if l.ExpiresAt != nil && !l.ExpiresAt.After(now) {
		return false
	}
	return true
}

// CheckExpiration проверяет истек ли срок действия ссылки. Единственный
// механизм перехода active → expired: фоновой чистки нет, проверка
// выполняется лениво на путях доступа. Возвращает признак истечения и
// признак того, что статус был изменен этим вызовом (изменение нужно
// персистить вызывающей стороне).
func (l *Link) CheckExpiration(now time.Time) (expired bool, changed bool) {
	if l.ExpiresAt == nil || l.ExpiresAt.After(now) {
		return false, false
	}
	if l.IsExpired {
		return true, false
	}
	l.IsExpired = true
	l.Status = LinkStatusExpired
	return true, true
}
