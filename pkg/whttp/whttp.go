package whttp

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
)

type Header struct {
	Name  string
	Value string
}

type Request struct {
	URL     string
	Method  string
	Headers []Header
}

type Response struct {
	StatusCode     int
	ResponseLength int
	HTTPTitle      string
	BodyString     string
}

// NewClient builds the retryable HTTP client used by every fetcher.
// Retries are kept low: upstream absence is a normal outcome here and
// long retry loops would just stall catalog loading.
func NewClient(timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = log.New(io.Discard, "", 0)
	client.HTTPClient.Timeout = timeout
	// Default transport so the --proxy flag applies to every fetcher.
	client.HTTPClient.Transport = http.DefaultTransport
	return client
}

func SendHTTPRequest(ctx context.Context, wReq *Request, client *retryablehttp.Client) (*Response, error) {
	if client == nil {
		client = NewClient(10 * time.Second)
	}

	method := wReq.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, wReq.URL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", "aries-oca-explorer")
	req.Header.Set("Accept", "application/json, text/html, text/plain, */*")
	req.Header.Set("Accept-Language", "en")

	for _, h := range wReq.Headers {
		req.Header.Add(h.Name, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	wRes := &Response{
		StatusCode: resp.StatusCode,
		BodyString: string(bodyBytes),
	}

	if title, ok := getHTMLTitle(wRes.BodyString); ok {
		wRes.HTTPTitle = strings.ToValidUTF8(strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(title, "\n", ""), "\r", "")), "")
	}

	wRes.ResponseLength = utf8.RuneCountInString(wRes.BodyString)
	return wRes, nil
}

func isTitleElement(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "title"
}

func traverse(n *html.Node) (string, bool) {
	if isTitleElement(n) {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverse(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}

func getHTMLTitle(requestBody string) (string, bool) {
	if !strings.Contains(requestBody, "<") {
		return "", false
	}
	doc, err := html.Parse(strings.NewReader(requestBody))
	if err != nil {
		return "", false
	}
	return traverse(doc)
}
