package geocoding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ecofix/backend/go/internal/config"

	"googlemaps.github.io/maps"
)

var (
	// ErrNotFound 表示地址无法解析为坐标。
	ErrNotFound = errors.New("location not found")
	// ErrUnavailable 表示未配置地理编码服务。
	ErrUnavailable = errors.New("geocoding service is not configured")
	// ErrUpstream 包装地图服务返回的错误（密钥无效、配额耗尽、网络失败）。
	ErrUpstream = errors.New("geocoding service failed")
)

// Location 是地址解析后的第一个结果。
type Location struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formattedAddress"`
}

// Geocoder 把自由文本地址解析为经纬度。
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Location, error)
}

// Google 基于 Google Maps Geocoding API 实现 Geocoder。
type Google struct {
	client *maps.Client
}

// NewGoogle 创建 Google 地理编码客户端。httpClient 通常来自 pkg/http.NewClient，带熔断保护。
func NewGoogle(cfg config.MapsConfig, httpClient *http.Client) (*Google, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(cfg.APIKey)}
	if httpClient != nil {
		opts = append(opts, maps.WithHTTPClient(httpClient))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}
	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("无法创建地图客户端: %w", err)
	}
	return &Google{client: c}, nil
}

// Geocode 返回第一个匹配结果的坐标，没有结果时返回 ErrNotFound。
func (g *Google) Geocode(ctx context.Context, address string) (*Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNotFound
	}
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w: %w", address, ErrUpstream, err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	first := results[0]
	return &Location{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}, nil
}

// Unavailable 在缺少 API 密钥时使用，所有调用都返回 ErrUnavailable。
type Unavailable struct{}

func (Unavailable) Geocode(context.Context, string) (*Location, error) {
	return nil, ErrUnavailable
}
