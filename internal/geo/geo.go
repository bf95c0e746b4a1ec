// Package geo резолвит IP адрес в грубую геопривязку. Лукап строго
// best-effort: любая ошибка означает событие без гео-полей и никогда не
// блокирует запись клика.
package geo

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/fsdevblog/linkstats/internal/models"
)

// Locator отображает IP адрес в географические атрибуты. Реализация
// обязана возвращать (nil, nil) для приватных/зарезервированных адресов.
type Locator interface {
	Lookup(ctx context.Context, ip string) (*models.GeoInfo, error)
}

const defaultTimeout = 2 * time.Second

// HTTPLocator ходит в совместимый с ip-api.com JSON endpoint.
type HTTPLocator struct {
	endpoint string
	client   *http.Client
}

// NewHTTPLocator создает локатор поверх endpoint вида
// "http://ip-api.com/json". К endpoint будет дописан "/<ip>".
func NewHTTPLocator(endpoint string) *HTTPLocator {
	return &HTTPLocator{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
}

// lookupResponse формат ответа ip-api.com.
type lookupResponse struct {
	Status     string  `json:"status"`
	Country    string  `json:"country"`
	City       string  `json:"city"`
	RegionName string  `json:"regionName"`
	Timezone   string  `json:"timezone"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// Lookup резолвит публичный IP адрес. Для приватных, loopback и
// невалидных адресов возвращает (nil, nil).
func (h *HTTPLocator) Lookup(ctx context.Context, ip string) (*models.GeoInfo, error) {
	if !Resolvable(ip) {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", h.endpoint, ip), nil)
	if err != nil {
		return nil, errors.Wrap(err, "geo: build request")
	}

	res, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "geo: lookup %s", ip)
	}
	defer res.Body.Close() //nolint:errcheck

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("geo: lookup %s: unexpected status %d", ip, res.StatusCode)
	}

	var body lookupResponse
	if decErr := json.NewDecoder(res.Body).Decode(&body); decErr != nil {
		return nil, errors.Wrapf(decErr, "geo: decode response for %s", ip)
	}
	if body.Status != "success" {
		// Сервис не смог зарезолвить адрес. Не ошибка.
		return nil, nil
	}

	info := &models.GeoInfo{
		Country:  body.Country,
		City:     body.City,
		Region:   body.RegionName,
		Timezone: body.Timezone,
	}
	if body.Lat != 0 || body.Lon != 0 {
		info.Coordinates = &models.Coordinates{Lat: body.Lat, Lon: body.Lon}
	}
	return info, nil
}

// Resolvable проверяет что адрес валиден и в принципе может быть
// зарезолвлен публичной геобазой.
func Resolvable(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return !(addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsMulticast())
}
