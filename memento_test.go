package wayback

import (
	"net/http"
	"testing"
)

func TestParseMementoHeadersStripsOrigPrefix(t *testing.T) {
	raw := http.Header{
		"X-Archive-Orig-Content-Type": []string{"text/html; charset=iso-8859-1"},
		"X-Archive-Orig-Server":       []string{"Apache"},
		"Content-Type":                []string{"text/html; charset=utf-8"},
	}
	headers := parseMementoHeaders(raw, "https://web.archive.org/web/20200101000000id_/https://example.com/")

	if ct, ok := headers.Get("content-type"); !ok || ct != "text/html; charset=iso-8859-1" {
		t.Fatalf("content-type = %q, ok=%v, want archived value to win", ct, ok)
	}
	if srv, ok := headers.Get("server"); !ok || srv != "Apache" {
		t.Fatalf("server = %q, ok=%v", srv, ok)
	}
}

func TestParseMementoHeadersFallsBackToWrappingContentType(t *testing.T) {
	raw := http.Header{"Content-Type": []string{"text/html; charset=utf-8"}}
	headers := parseMementoHeaders(raw, "https://web.archive.org/web/20200101000000id_/https://example.com/")

	if ct, ok := headers.Get("content-type"); !ok || ct != "text/html; charset=utf-8" {
		t.Fatalf("content-type = %q, ok=%v", ct, ok)
	}
}

func TestEncodingFromHeadersPrefersArchivedCharset(t *testing.T) {
	archived := NewHeaders()
	archived.Set("content-type", "text/html; charset=iso-8859-1")
	wrapping := http.Header{"Content-Type": []string{"text/html; charset=utf-8"}}

	if got := encodingFromHeaders(archived, wrapping); got != "iso-8859-1" {
		t.Fatalf("encodingFromHeaders = %q, want iso-8859-1", got)
	}
}

func TestEncodingFromHeadersUnknownWhenNoCharset(t *testing.T) {
	archived := NewHeaders()
	archived.Set("content-type", "text/html")
	wrapping := http.Header{}

	if got := encodingFromHeaders(archived, wrapping); got != EncodingUnknown {
		t.Fatalf("encodingFromHeaders = %q, want EncodingUnknown", got)
	}
}

func TestMementoOKAndIsRedirect(t *testing.T) {
	ok := &Memento{StatusCode: 200}
	if !ok.OK() || ok.IsRedirect() {
		t.Fatalf("200: OK()=%v IsRedirect()=%v", ok.OK(), ok.IsRedirect())
	}

	redirect := &Memento{StatusCode: 302}
	if !redirect.OK() || !redirect.IsRedirect() {
		t.Fatalf("302: OK()=%v IsRedirect()=%v", redirect.OK(), redirect.IsRedirect())
	}

	notFound := &Memento{StatusCode: 404}
	if notFound.OK() || notFound.IsRedirect() {
		t.Fatalf("404: OK()=%v IsRedirect()=%v", notFound.OK(), notFound.IsRedirect())
	}
}

func TestMementoContentWithoutRawResponseIsEmpty(t *testing.T) {
	m := &Memento{}
	body, err := m.Content()
	if err != nil {
		t.Fatalf("Content: %v", err)
	}
	if len(body) != 0 {
		t.Fatalf("body = %v, want empty", body)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
