// Package candyscan fetches SCHEMA and CLAIM_DEF transactions from the
// candyscan ledger explorer. Responses arrive in several envelope shapes
// (plain JSON lists under different keys, or a Next.js HTML page with the
// payload embedded in a script tag); everything is normalized into one
// Transaction shape at this boundary.
package candyscan

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	gocache "github.com/patrickmn/go-cache"
	"github.com/tidwall/gjson"

	"github.com/krobinsonca/aries-oca-explorer/internal/utils"
	"github.com/krobinsonca/aries-oca-explorer/pkg/whttp"
)

type Network string

const (
	NetworkDev  Network = "CANDY_DEV"
	NetworkTest Network = "CANDY_TEST"
	NetworkProd Network = "CANDY_PROD"
)

// Networks returns all networks in their fixed reconciliation order.
func Networks() []Network {
	return []Network{NetworkDev, NetworkTest, NetworkProd}
}

type TxType string

const (
	TxSchema   TxType = "SCHEMA"
	TxClaimDef TxType = "CLAIM_DEF"
)

// Transaction is one normalized ledger transaction. TxTime is always epoch
// seconds; unit normalization happens at ingestion, never downstream.
type Transaction struct {
	SeqNo      int            `json:"seqNo"`
	TxType     TxType         `json:"txType"`
	TxTime     int64          `json:"txTime"`
	Identifier string         `json:"identifier"`
	Data       map[string]any `json:"data"`
	Network    Network        `json:"network"`
}

// Page is one fetched transaction page. HasMore is a heuristic: a full page
// suggests more are available.
type Page struct {
	Transactions []Transaction
	HasMore      bool
}

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

const DefaultBaseURL = "https://candyscan.idlab.org"

func DefaultConfig() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		Timeout:  10 * time.Second,
		CacheTTL: 5 * time.Minute,
	}
}

// PageCache holds fetched pages keyed by (network, page, pageSize).
type PageCache struct {
	c *gocache.Cache
}

func NewPageCache(ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PageCache{c: gocache.New(ttl, 2*ttl)}
}

func pageKey(network Network, page, pageSize int) string {
	return fmt.Sprintf("%s-%d-%d", network, page, pageSize)
}

// Client fetches transaction pages with an injected response cache.
type Client struct {
	http  *retryablehttp.Client
	cfg   Config
	cache *PageCache
}

func NewClient(httpClient *retryablehttp.Client, cfg Config, cache *PageCache) *Client {
	if httpClient == nil {
		httpClient = whttp.NewClient(cfg.Timeout)
	}
	if cache == nil {
		cache = NewPageCache(cfg.CacheTTL)
	}
	return &Client{http: httpClient, cfg: cfg, cache: cache}
}

// FetchTransactions retrieves one page of recent SCHEMA/CLAIM_DEF
// transactions for a network, newest first.
func (c *Client) FetchTransactions(ctx context.Context, network Network, page, pageSize int) (Page, error) {
	key := pageKey(network, page, pageSize)
	if v, ok := c.cache.c.Get(key); ok {
		if cached, ok := v.(Page); ok {
			utils.Log.Debugf("candyscan cache hit: %s", key)
			return cached, nil
		}
	}

	reqURL := fmt.Sprintf("%s/txs/%s/domain?page=%d&pageSize=%d&filterTxNames=%s&sortFromRecent=true",
		c.cfg.BaseURL, network, page, pageSize, url.QueryEscape(`["SCHEMA","CLAIM_DEF"]`))

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := whttp.SendHTTPRequest(ctx, &whttp.Request{
		URL:     reqURL,
		Headers: []whttp.Header{{Name: "Accept", Value: "application/json"}},
	}, c.http)
	if err != nil {
		return Page{}, fmt.Errorf("candyscan fetch %s: %w", network, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Page{}, fmt.Errorf("candyscan fetch %s: status %d", network, res.StatusCode)
	}

	transactions := decodeBody(res.BodyString, network)

	result := Page{
		Transactions: transactions,
		HasMore:      len(transactions) == pageSize,
	}
	c.cache.c.Set(key, result, gocache.DefaultExpiration)
	return result, nil
}

// decodeBody handles both response styles: the explorer's Next.js HTML page
// and plain JSON envelopes.
func decodeBody(body string, network Network) []Transaction {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "<") {
		return decodeNextData(body, network)
	}
	return decodeEnvelope(body, network)
}

// decodeNextData digs the indyscan transaction list out of the page's
// __NEXT_DATA__ script tag.
func decodeNextData(html string, network Network) []Transaction {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		utils.Log.Debugf("candyscan html parse failed: %v", err)
		return nil
	}

	payload := doc.Find("#__NEXT_DATA__").Text()
	if payload == "" {
		return nil
	}

	var transactions []Transaction
	gjson.Get(payload, "props.pageProps.indyscanTxs").ForEach(func(_, tx gjson.Result) bool {
		txn := tx.Get("idata.txn")
		meta := tx.Get("idata.txnMetadata")
		txnData := txn.Get("data")

		txType := txn.Get("typeName").String()
		if txType == "" {
			txType = txn.Get("type").String()
		}

		data := map[string]any{}
		if m, ok := txnData.Value().(map[string]any); ok {
			for k, v := range m {
				data[k] = v
			}
		}
		// indyscan CLAIM_DEF entries reference their schema indirectly.
		setIfPresent(data, "name", txnData.Get("refSchemaName"), txnData.Get("data.name"))
		setIfPresent(data, "version", txnData.Get("refSchemaVersion"), txnData.Get("data.version"))
		setIfPresent(data, "schemaId", txnData.Get("refSchemaId"))

		transactions = append(transactions, Transaction{
			SeqNo:      int(meta.Get("seqNo").Int()),
			TxType:     TxType(txType),
			TxTime:     parseTxTime(meta.Get("txnTime")),
			Identifier: meta.Get("txnId").String(),
			Data:       data,
			Network:    network,
		})
		return true
	})

	return transactions
}

func setIfPresent(data map[string]any, key string, candidates ...gjson.Result) {
	for _, c := range candidates {
		if c.Exists() && c.String() != "" {
			data[key] = c.String()
			return
		}
	}
}

// decodeEnvelope normalizes the JSON response shapes. The transaction list
// may live under "transactions", be the bare array, or live under "data" or
// "value" - checked in that priority order.
func decodeEnvelope(body string, network Network) []Transaction {
	parsed := gjson.Parse(body)

	var list gjson.Result
	switch {
	case parsed.Get("transactions").IsArray():
		list = parsed.Get("transactions")
	case parsed.IsArray():
		list = parsed
	case parsed.Get("data").IsArray():
		list = parsed.Get("data")
	case parsed.Get("value").IsArray():
		list = parsed.Get("value")
	default:
		return nil
	}

	var transactions []Transaction
	list.ForEach(func(_, tx gjson.Result) bool {
		transactions = append(transactions, normalizeTx(tx, network))
		return true
	})
	return transactions
}

// normalizeTx flattens one heterogeneous transaction envelope.
func normalizeTx(tx gjson.Result, network Network) Transaction {
	var identifier string
	var dataResult gjson.Result

	txType := firstString(tx, "txn.type", "type", "txType")

	switch {
	case tx.Get("txn.data").Exists():
		dataResult = tx.Get("txn.data")
		switch TxType(txType) {
		case TxSchema:
			identifier = firstString(tx, "txn.data.name", "txn.metadata.txnId")
		case TxClaimDef:
			identifier = firstString(tx, "txn.data.ref", "txn.metadata.txnId")
		default:
			identifier = firstString(tx, "txn.metadata.txnId")
		}
	case tx.Get("data").Exists():
		dataResult = tx.Get("data")
		identifier = firstString(tx, "identifier", "id", "txnId")
	default:
		dataResult = tx
		identifier = firstString(tx, "identifier", "id", "txnId")
	}

	data := map[string]any{}
	if m, ok := dataResult.Value().(map[string]any); ok {
		data = m
	}

	seqNo := firstInt(tx, "seqNo", "txn.seqNo", "txnMetadata.seqNo")

	txTime := parseTxTime(firstResult(tx, "txnTime", "txn.txnTime", "txnMetadata.txnTime"))
	if txTime == 0 {
		txTime = time.Now().Unix()
	}

	return Transaction{
		SeqNo:      int(seqNo),
		TxType:     TxType(txType),
		TxTime:     txTime,
		Identifier: identifier,
		Data:       data,
		Network:    network,
	}
}

func firstString(tx gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := tx.Get(p); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

func firstInt(tx gjson.Result, paths ...string) int64 {
	for _, p := range paths {
		if v := tx.Get(p); v.Exists() && v.Int() != 0 {
			return v.Int()
		}
	}
	return 0
}

func firstResult(tx gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := tx.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

// year-2000 expressed in epoch milliseconds; integer values at or above it
// cannot be epoch seconds.
const millisecondThreshold = 946684800000

// parseTxTime normalizes the many upstream time encodings to epoch seconds.
func parseTxTime(v gjson.Result) int64 {
	if !v.Exists() {
		return 0
	}

	if v.Type == gjson.String {
		if t, err := time.Parse(time.RFC3339, v.String()); err == nil {
			return t.Unix()
		}
		return 0
	}

	n := v.Int()
	if n >= millisecondThreshold {
		return n / 1000
	}
	return n
}
