package foodapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/logging"
)

const (
	DefaultBaseURL   = "https://world.openfoodfacts.org"
	DefaultUserAgent = "FitMacroPlanner/1.0"
	DefaultTimeout   = 8 * time.Second
	DefaultCacheTTL  = 6 * time.Hour

	MaxPageSize = 30

	searchFields = "code,product_name,generic_name,brands,nutriments"
)

// ErrProductNotFound is wrapped into an ImportError when a code is unknown.
var ErrProductNotFound = errors.New("product not found")

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Country is tried first as countries_tags_en; empty disables the filter.
	Country  string
	CacheTTL time.Duration
}

// Client talks to the OpenFoodFacts public API.
type Client struct {
	baseURL   string
	userAgent string
	country   string
	http      *http.Client
	cache     *searchCache
	log       logging.Logger
}

func NewClient(opts Options, log logging.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		country:   opts.Country,
		http:      &http.Client{Timeout: opts.Timeout},
		cache:     newSearchCache(opts.CacheTTL),
		log:       log,
	}
}

// ClampPageSize limits n to 1..MaxPageSize.
func ClampPageSize(n int) int {
	return min(max(n, 1), MaxPageSize)
}

func cacheKey(query string, limit int) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "off_search_" + hex.EncodeToString(sum[:8]) + "_" + strconv.Itoa(ClampPageSize(limit))
}

type searchResponse struct {
	Products []rawProduct `json:"products"`
}

// Search looks products up by free text. The configured country is tried
// first and the query is repeated without it when that yields nothing.
// Products without a code are skipped. Results are cached per normalised
// query and page size. Transport or decoding failures are reported as
// *common.ImportError.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	key := cacheKey(query, limit)
	if cached, ok := c.cache.get(key); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("search_terms", query)
	params.Set("search_simple", "1")
	params.Set("action", "process")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(ClampPageSize(limit)))
	params.Set("fields", searchFields)

	var (
		resp     searchResponse
		firstErr error
	)
	if c.country != "" {
		withCountry := url.Values{}
		for k, v := range params {
			withCountry[k] = v
		}
		withCountry.Set("countries_tags_en", c.country)
		if err := c.getJSON(ctx, "/cgi/search.pl?"+withCountry.Encode(), &resp); err != nil {
			c.log.Warn(ctx, "country search failed, retrying without filter", "error", err)
			firstErr = err
		}
	}
	if len(resp.Products) == 0 {
		resp = searchResponse{}
		if err := c.getJSON(ctx, "/cgi/search.pl?"+params.Encode(), &resp); err != nil {
			if firstErr != nil {
				err = errors.Join(firstErr, err)
			}
			return nil, &common.ImportError{Source: SourceName, Ref: query, Err: err}
		}
	}

	products := make([]Product, 0, len(resp.Products))
	for _, p := range resp.Products {
		code := codeString(p.Code)
		if code == "" {
			continue
		}
		products = append(products, p.normalise(code))
	}

	c.cache.put(key, products)
	return products, nil
}

type productResponse struct {
	Status  int        `json:"status"`
	Product rawProduct `json:"product"`
}

// Product fetches a single product by barcode. Unknown codes and transport
// failures are both returned as *common.ImportError.
func (c *Client) Product(ctx context.Context, code string) (*Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, common.NewValidationError("code", "must not be empty")
	}

	var resp productResponse
	if err := c.getJSON(ctx, "/api/v2/product/"+url.PathEscape(code)+".json", &resp); err != nil {
		return nil, &common.ImportError{Source: SourceName, Ref: code, Err: err}
	}
	if resp.Status != 1 {
		return nil, &common.ImportError{Source: SourceName, Ref: code, Err: ErrProductNotFound}
	}

	p := resp.Product.normalise(code)
	return &p, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrProductNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
