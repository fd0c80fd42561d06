package geo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/gestaopolitica/eleitorado/internal/config"
)

// Coordinate é um ponto geográfico.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero informa se o ponto é o (0,0) de endereço não resolvido.
func (c Coordinate) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// Geocoder resolve um endereço postal em coordenada.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinate, error)
}

// Client consulta um serviço estilo Nominatim com cache em Redis e circuit
// breaker; qualquer falha degrada para a coordenada padrão configurada.
type Client struct {
	http     *http.Client
	baseURL  string
	agent    string
	fallback Coordinate
	cache    *redis.Client
	cacheTTL time.Duration
	breaker  *gobreaker.CircuitBreaker
	log      zerolog.Logger
}

// NewClient cria o geocodificador a partir da configuração.
func NewClient(cfg config.GeocodingConfig, cache *redis.Client, log zerolog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "geocoding",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		http:     &http.Client{Timeout: 10 * time.Second},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		agent:    cfg.UserAgent,
		fallback: Coordinate{Lat: cfg.DefaultLat, Lng: cfg.DefaultLng},
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		breaker:  breaker,
		log:      log,
	}
}

// Geocode resolve o endereço, preferindo o cache. Nunca devolve erro ao
// chamador: indisponibilidade vira a coordenada padrão.
func (c *Client) Geocode(ctx context.Context, address string) (Coordinate, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Coordinate{}, nil
	}

	key := cacheKey(address)
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key).Result(); err == nil {
			var coord Coordinate
			if json.Unmarshal([]byte(cached), &coord) == nil {
				return coord, nil
			}
		}
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.lookup(ctx, address)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("address", address).Msg("geocodificação indisponível, usando coordenada padrão")
		return c.fallback, nil
	}
	coord := result.(Coordinate)

	if c.cache != nil && !coord.IsZero() {
		if payload, err := json.Marshal(coord); err == nil {
			if err := c.cache.Set(ctx, key, payload, c.cacheTTL).Err(); err != nil {
				c.log.Warn().Err(err).Msg("falha ao gravar cache de geocodificação")
			}
		}
	}
	return coord, nil
}

func (c *Client) lookup(ctx context.Context, address string) (Coordinate, error) {
	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", c.baseURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Coordinate{}, err
	}
	req.Header.Set("User-Agent", c.agent)

	resp, err := c.http.Do(req)
	if err != nil {
		return Coordinate{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinate{}, fmt.Errorf("geocodificação respondeu %d", resp.StatusCode)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Coordinate{}, err
	}
	if len(results) == 0 {
		// endereço sem correspondência não é falha do serviço
		return Coordinate{}, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coordinate{}, err
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}

func cacheKey(address string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(address)))
	return "geocode:" + hex.EncodeToString(sum[:16])
}

// Static devolve sempre a mesma coordenada; útil em testes e ambientes sem
// serviço de geocodificação.
type Static struct {
	Coord Coordinate
}

func (s Static) Geocode(ctx context.Context, address string) (Coordinate, error) {
	return s.Coord, nil
}
