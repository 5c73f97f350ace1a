package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxSnippetBytes = 512

// RequestError is returned when the server answers with a failure status.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

func (e *RequestError) Error() string {
	snippet := readBodySnippet(e.Header.Get("Content-Type"), e.Body)
	if snippet == "" {
		return fmt.Sprintf("%s %s: http response status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: http response status %d: %s", e.Method, e.URL, e.StatusCode, snippet)
}

// IsRequestError reports whether err carries a *RequestError.
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

func newRequestError(method, url string, code int, status string, header http.Header, body []byte) *RequestError {
	return &RequestError{
		Method:     method,
		URL:        url,
		StatusCode: code,
		Status:     status,
		Header:     header,
		Body:       body,
	}
}

// readBodySnippet trims the body for error messages. HTML error pages are
// reduced to their title, or their visible text when untitled.
func readBodySnippet(contentType string, body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		if text := htmlText(body); text != "" {
			body = []byte(text)
		}
	}
	if len(body) > maxSnippetBytes {
		body = truncateRunes(body, maxSnippetBytes)
	}
	return strings.TrimSpace(string(body))
}

// truncateRunes cuts body to at most n bytes without splitting a rune.
func truncateRunes(body []byte, n int) []byte {
	body = body[:n]
	for i := 0; i < utf8.UTFMax && len(body) > 0; i++ {
		if r, size := utf8.DecodeLastRune(body); r != utf8.RuneError || size != 1 {
			break
		}
		body = body[:len(body)-1]
	}
	return body
}

func htmlText(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.Join(strings.Fields(doc.Find("body").Text()), " ")
}
